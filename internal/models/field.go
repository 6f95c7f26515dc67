package models

// Stored attribute names, shared by the JSON and DynamoDB representations.
const (
	AttrOrgID       = "orgId"
	AttrUserID      = "userId"
	AttrName        = "name"
	AttrDescription = "description"
	AttrEmail       = "email"
)

// Field is a single attribute assignment staged by a partial update.
type Field struct {
	Attr  string
	Value string
}
