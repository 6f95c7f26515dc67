package models

// User is a member of exactly one organization.
// OrgID is fixed at creation; Email is unique across all users, not per organization.
type User struct {
	UserID string `json:"userId" dynamodbav:"userId"`
	OrgID  string `json:"orgId" dynamodbav:"orgId"`
	Name   string `json:"name" dynamodbav:"name"`
	Email  string `json:"email" dynamodbav:"email"`
}

// UserUpdate holds the mutable user fields for a partial update.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Fields returns only the fields present in the update, in a stable order.
func (u UserUpdate) Fields() []Field {
	var fields []Field
	if u.Name != nil {
		fields = append(fields, Field{Attr: AttrName, Value: *u.Name})
	}
	if u.Email != nil {
		fields = append(fields, Field{Attr: AttrEmail, Value: *u.Email})
	}
	return fields
}

// IsEmpty reports whether the update carries no fields.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil
}

// Apply copies the present fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
}
