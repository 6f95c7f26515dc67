// Package validation checks raw directory inputs against per-operation field rules.
//
// Every violation in an input is reported, not just the first one. Inputs are decoded
// from a generic JSON object so that wrong types can be reported alongside rule failures.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors aggregates every field violation found in a single input.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, " ")
}

// IsValidationError reports whether err carries aggregated field violations.
func IsValidationError(err error) bool {
	var verrs Errors
	return errors.As(err, &verrs)
}

// CreateOrganization is a validated create-organization input.
type CreateOrganization struct {
	Name        string `json:"name" label:"Name" validate:"required"`
	Description string `json:"description" label:"Description" validate:"required"`
}

// CreateUser is a validated create-user input.
type CreateUser struct {
	OrgID string `json:"orgId" label:"OrgId" validate:"required"`
	Name  string `json:"name" label:"Name" validate:"required"`
	Email string `json:"email" label:"Email" validate:"required,email"`
}

// UpdateOrganization is a validated update-organization input. Nil fields were absent.
type UpdateOrganization struct {
	OrgID       string  `json:"orgId" label:"Organization Id" validate:"required"`
	Name        *string `json:"name" label:"Name" validate:"omitnil,min=1"`
	Description *string `json:"description" label:"Description" validate:"omitnil,min=1"`
}

// UpdateUser is a validated update-user input. Nil fields were absent.
type UpdateUser struct {
	OrgID  string  `json:"orgId" label:"OrgId" validate:"required"`
	UserID string  `json:"userId" label:"User ID" validate:"required"`
	Name   *string `json:"name" label:"Name" validate:"omitnil,min=1"`
	Email  *string `json:"email" label:"Email" validate:"omitnil,min=1,email"`
}

// Validator holds the compiled rule sets. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Validator{validate: v}
}

// CreateOrganization validates a create-organization input.
func (v *Validator) CreateOrganization(raw map[string]any) (*CreateOrganization, error) {
	var in CreateOrganization
	if err := v.check(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// CreateUser validates a create-user input.
func (v *Validator) CreateUser(raw map[string]any) (*CreateUser, error) {
	var in CreateUser
	if err := v.check(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// UpdateOrganization validates an update-organization input.
// It does not enforce that an optional field is present; that is decided after
// the update set has been staged.
func (v *Validator) UpdateOrganization(raw map[string]any) (*UpdateOrganization, error) {
	var in UpdateOrganization
	if err := v.check(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// UpdateUser validates an update-user input.
func (v *Validator) UpdateUser(raw map[string]any) (*UpdateUser, error) {
	var in UpdateUser
	if err := v.check(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// check decodes raw into dst (a pointer to one of the input structs) and runs the
// struct rules. Violations are reported in field declaration order, one per field.
func (v *Validator) check(raw map[string]any, dst any) error {
	typeErrs := decode(raw, dst)

	ruleErrs := make(map[string]validator.FieldError)
	if err := v.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate input: %w", err)
		}
		for _, fe := range fieldErrs {
			ruleErrs[fe.StructField()] = fe
		}
	}

	var errs Errors
	t := reflect.TypeOf(dst).Elem()
	for i := range t.NumField() {
		f := t.Field(i)
		label := f.Tag.Get("label")
		if msg, ok := typeErrs[f.Name]; ok {
			errs = append(errs, msg)
			continue
		}
		if fe, ok := ruleErrs[f.Name]; ok {
			errs = append(errs, message(label, fe.Tag()))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// decode copies the string fields of raw into dst, trimming them. Fields holding a
// non-string value are left unset and reported by struct field name.
func decode(raw map[string]any, dst any) map[string]string {
	typeErrs := make(map[string]string)

	val := reflect.ValueOf(dst).Elem()
	t := val.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("json"), ",")

		v, present := raw[key]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			typeErrs[f.Name] = fmt.Sprintf("%s must be a string", f.Tag.Get("label"))
			continue
		}
		s = strings.TrimSpace(s)

		switch f.Type.Kind() {
		case reflect.String:
			val.Field(i).SetString(s)
		case reflect.Pointer:
			val.Field(i).Set(reflect.ValueOf(&s))
		}
	}

	return typeErrs
}

func message(label, tag string) string {
	switch tag {
	case "required":
		return label + " is required"
	case "min":
		return label + " cannot be empty"
	case "email":
		return "Invalid email"
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, tag)
	}
}
