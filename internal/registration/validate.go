package registration

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/five82/queuecall/internal/vqueue"
)

// Messages shown to the visitor.
const (
	MsgMissingFields = "Por favor, completa todos los campos requeridos."
	MsgBlockedDomain = "No se permiten dominios como gmail, hotmail, yahoo. Por favor, usa un correo corporativo."
	MsgEnqueueFailed = "Error al enviar los datos. Por favor, intenta nuevamente."
)

// DefaultBlockedDomains lists consumer mail providers rejected by default.
var DefaultBlockedDomains = []string{"gmail.com", "hotmail.com", "yahoo.com", "outlook.com", "live.com"}

// Form is the raw visitor input.
type Form struct {
	FirstName  string `form:"firstName" validate:"required"`
	LastName   string `form:"lastName" validate:"required"`
	Phone      string `form:"phone" validate:"required"`
	Email      string `form:"email" validate:"required,corporate_email"`
	Identifier string `form:"dni"`
}

// Normalize returns f with surrounding whitespace removed from every field.
func (f Form) Normalize() Form {
	return Form{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		Phone:      strings.TrimSpace(f.Phone),
		Email:      strings.TrimSpace(f.Email),
		Identifier: strings.TrimSpace(f.Identifier),
	}
}

// Registration converts a validated form to the enqueue payload.
func (f Form) Registration() vqueue.Registration {
	return vqueue.Registration{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		Identifier: f.Identifier,
	}
}

// Reason classifies a validation failure.
type Reason string

const (
	ReasonMissingFields Reason = "missing_fields"
	ReasonBlockedDomain Reason = "blocked_domain"
)

// ValidationError reports a form that cannot be submitted.
type ValidationError struct {
	Reason Reason
	// Fields uses the form field names (firstName, email, dni, ...).
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid registration (%s): %s", e.Reason, strings.Join(e.Fields, ", "))
}

// Message is the text shown to the visitor for this failure.
func (e *ValidationError) Message() string {
	if e.Reason == ReasonBlockedDomain {
		return MsgBlockedDomain
	}
	return MsgMissingFields
}

// Validator checks forms against the required fields and the blocked domain list.
type Validator struct {
	validate          *validator.Validate
	blocked           map[string]struct{}
	requireIdentifier bool
}

// NewValidator builds a Validator. A nil blocked list uses DefaultBlockedDomains;
// an empty non-nil list blocks nothing.
func NewValidator(blocked []string, requireIdentifier bool) *Validator {
	if blocked == nil {
		blocked = DefaultBlockedDomains
	}
	v := &Validator{
		validate:          validator.New(),
		blocked:           make(map[string]struct{}, len(blocked)),
		requireIdentifier: requireIdentifier,
	}
	for _, d := range blocked {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			v.blocked[d] = struct{}{}
		}
	}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	// Registration cannot fail: the tag is new and the func is non-nil.
	_ = v.validate.RegisterValidation("corporate_email", func(fl validator.FieldLevel) bool {
		return !v.Blocked(fl.Field().String())
	})
	return v
}

// Blocked reports whether email belongs to a blocked domain. The domain is
// everything after the last "@", compared case-insensitively.
func (v *Validator) Blocked(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, ok := v.blocked[strings.ToLower(strings.TrimSpace(email[at+1:]))]
	return ok
}

// Validate checks an already normalised form. Missing fields take precedence
// over a blocked domain.
func (v *Validator) Validate(f Form) error {
	var missing []string
	blocked := false

	if err := v.validate.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate form: %w", err)
		}
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				missing = append(missing, fe.Field())
			case "corporate_email":
				blocked = true
			}
		}
	}
	if v.requireIdentifier && f.Identifier == "" {
		missing = append(missing, "dni")
	}

	switch {
	case len(missing) > 0:
		return &ValidationError{Reason: ReasonMissingFields, Fields: missing}
	case blocked:
		return &ValidationError{Reason: ReasonBlockedDomain, Fields: []string{"email"}}
	}
	return nil
}
