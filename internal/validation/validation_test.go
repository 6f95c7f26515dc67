package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOrganization(t *testing.T) {
	v := New()

	t.Run("trims and accepts valid input", func(t *testing.T) {
		in, err := v.CreateOrganization(map[string]any{
			"name":        "  Acme ",
			"description": "desc\n",
		})
		require.NoError(t, err)
		require.Equal(t, "Acme", in.Name)
		require.Equal(t, "desc", in.Description)
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		in, err := v.CreateOrganization(map[string]any{
			"name":        "Acme",
			"description": "desc",
			"orgId":       "client-chosen",
		})
		require.NoError(t, err)
		require.Equal(t, "Acme", in.Name)
	})

	tests := []struct {
		name    string
		raw     map[string]any
		message string
	}{
		{
			name:    "empty object reports every field",
			raw:     map[string]any{},
			message: "Name is required Description is required",
		},
		{
			name:    "nil object",
			raw:     nil,
			message: "Name is required Description is required",
		},
		{
			name:    "blank after trim",
			raw:     map[string]any{"name": "   ", "description": "desc"},
			message: "Name is required",
		},
		{
			name:    "wrong type",
			raw:     map[string]any{"name": 42.0, "description": "desc"},
			message: "Name must be a string",
		},
		{
			name:    "null value",
			raw:     map[string]any{"name": nil},
			message: "Name must be a string Description is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.CreateOrganization(tt.raw)
			require.Error(t, err)
			require.True(t, IsValidationError(err))
			require.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCreateUser(t *testing.T) {
	v := New()

	t.Run("valid input", func(t *testing.T) {
		in, err := v.CreateUser(map[string]any{
			"orgId": "org-1",
			"name":  "Bob",
			"email": " bob@x.com ",
		})
		require.NoError(t, err)
		require.Equal(t, "org-1", in.OrgID)
		require.Equal(t, "bob@x.com", in.Email)
	})

	tests := []struct {
		name    string
		raw     map[string]any
		message string
	}{
		{
			name:    "all missing",
			raw:     map[string]any{},
			message: "OrgId is required Name is required Email is required",
		},
		{
			name:    "invalid email",
			raw:     map[string]any{"orgId": "org-1", "name": "Bob", "email": "not-an-email"},
			message: "Invalid email",
		},
		{
			name:    "invalid email and missing name",
			raw:     map[string]any{"orgId": "org-1", "email": "bob@"},
			message: "Name is required Invalid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.CreateUser(tt.raw)
			require.Error(t, err)
			require.Equal(t, tt.message, err.Error())
		})
	}
}

func TestUpdateOrganization(t *testing.T) {
	v := New()

	t.Run("absent optional fields stay nil", func(t *testing.T) {
		in, err := v.UpdateOrganization(map[string]any{"orgId": "org-1"})
		require.NoError(t, err)
		require.Equal(t, "org-1", in.OrgID)
		require.Nil(t, in.Name)
		require.Nil(t, in.Description)
	})

	t.Run("present fields are trimmed", func(t *testing.T) {
		in, err := v.UpdateOrganization(map[string]any{"orgId": "org-1", "name": " New "})
		require.NoError(t, err)
		require.NotNil(t, in.Name)
		require.Equal(t, "New", *in.Name)
		require.Nil(t, in.Description)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := v.UpdateOrganization(map[string]any{"name": "New"})
		require.EqualError(t, err, "Organization Id is required")
	})

	t.Run("present but blank", func(t *testing.T) {
		_, err := v.UpdateOrganization(map[string]any{"orgId": "org-1", "name": " ", "description": ""})
		require.EqualError(t, err, "Name cannot be empty Description cannot be empty")
	})
}

func TestUpdateUser(t *testing.T) {
	v := New()

	t.Run("valid partial input", func(t *testing.T) {
		in, err := v.UpdateUser(map[string]any{"orgId": "org-1", "userId": "user-1", "email": "a@b.co"})
		require.NoError(t, err)
		require.Nil(t, in.Name)
		require.Equal(t, "a@b.co", *in.Email)
	})

	tests := []struct {
		name    string
		raw     map[string]any
		message string
	}{
		{
			name:    "missing ids",
			raw:     map[string]any{"name": "Bob"},
			message: "OrgId is required User ID is required",
		},
		{
			name:    "invalid email",
			raw:     map[string]any{"orgId": "org-1", "userId": "user-1", "email": "nope"},
			message: "Invalid email",
		},
		{
			name:    "blank email",
			raw:     map[string]any{"orgId": "org-1", "userId": "user-1", "email": "  "},
			message: "Email cannot be empty",
		},
		{
			name:    "wrong id type",
			raw:     map[string]any{"orgId": "org-1", "userId": true},
			message: "User ID must be a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.UpdateUser(tt.raw)
			require.Error(t, err)
			require.Equal(t, tt.message, err.Error())
		})
	}
}
