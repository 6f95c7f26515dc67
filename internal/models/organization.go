package models

// Organization represents a tenant in the directory.
// Name is unique across all organizations.
type Organization struct {
	OrgID       string `json:"orgId" dynamodbav:"orgId"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

// OrganizationUpdate holds the mutable organization fields for a partial update.
// A nil field is absent and is left untouched by the store.
type OrganizationUpdate struct {
	Name        *string
	Description *string
}

// Fields returns only the fields present in the update, in a stable order.
func (u OrganizationUpdate) Fields() []Field {
	var fields []Field
	if u.Name != nil {
		fields = append(fields, Field{Attr: AttrName, Value: *u.Name})
	}
	if u.Description != nil {
		fields = append(fields, Field{Attr: AttrDescription, Value: *u.Description})
	}
	return fields
}

// IsEmpty reports whether the update carries no fields.
func (u OrganizationUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil
}

// Apply copies the present fields onto org.
func (u OrganizationUpdate) Apply(org *Organization) {
	if u.Name != nil {
		org.Name = *u.Name
	}
	if u.Description != nil {
		org.Description = *u.Description
	}
}
