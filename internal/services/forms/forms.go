package forms

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

// ControlKind selects the input widget for a field type
type ControlKind string

const (
	ControlInput    ControlKind = "input"    // single-line text
	ControlEmail    ControlKind = "email"    // single-line with email validation
	ControlNumber   ControlKind = "number"   // numeric input
	ControlDate     ControlKind = "date"     // date picker
	ControlTextarea ControlKind = "textarea" // multi-line text
	ControlSelect   ControlKind = "select"   // choice control fed by Options
)

// Widget is one rendered form control
type Widget struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Control  ControlKind `json:"control"`
	Required bool        `json:"required"`
	System   bool        `json:"system"`
	Options  []string    `json:"options,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

// Form is the rendered form for one entity kind, widgets in merged order
type Form struct {
	EntityKind entities.EntityKind `json:"entity_kind"`
	Widgets    []Widget            `json:"widgets"`
}

// ValidationError aggregates every violation found in one Validate pass
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "form validation failed: " + strings.Join(e.Violations, "; ")
}

// controlFor maps a field type to its widget control
func controlFor(t entities.FieldType) ControlKind {
	switch t {
	case entities.FieldEmail:
		return ControlEmail
	case entities.FieldNumber:
		return ControlNumber
	case entities.FieldDate:
		return ControlDate
	case entities.FieldTextarea:
		return ControlTextarea
	case entities.FieldSelect:
		return ControlSelect
	default:
		return ControlInput
	}
}

// Render produces a form description from the merged schema, pre-filled from
// values. It has no side effects. A select field with zero options renders a
// choice control with zero options; the admin is expected to add options
// before the field is usable.
func Render(s *schema.EntitySchema, values entities.CustomValues) *Form {
	form := &Form{EntityKind: s.EntityKind}
	for _, f := range s.Merged() {
		w := Widget{
			Name:     f.Name,
			Label:    f.Label,
			Control:  controlFor(f.Type),
			Required: f.Required,
			System:   f.System,
		}
		if f.Type == entities.FieldSelect {
			w.Options = f.Options
			if w.Options == nil {
				w.Options = []string{}
			}
		}
		if values != nil {
			w.Value = values[f.Name]
		}
		form.Widgets = append(form.Widgets, w)
	}
	return form
}

// Validate checks values against the merged schema. Required fields must be
// present and non-empty; every value must match its field's declared type;
// keys without a field definition are rejected. All violations are reported
// in one pass.
func Validate(s *schema.EntitySchema, values entities.CustomValues) error {
	var violations []string

	for _, f := range s.Merged() {
		value, ok := values[f.Name]
		if !ok || isEmpty(value) {
			if f.Required {
				violations = append(violations, fmt.Sprintf("%s is required", f.Name))
			}
			continue
		}
		if msg := checkValue(f, value); msg != "" {
			violations = append(violations, msg)
		}
	}

	for name := range values {
		if s.Find(name) == nil {
			violations = append(violations, fmt.Sprintf("%s is not a field of %s", name, s.EntityKind))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// isEmpty treats nil and blank strings as absent
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// checkValue returns a violation message, or "" when the value matches the
// field's declared type
func checkValue(f *entities.FieldDefinition, value interface{}) string {
	switch f.Type {
	case entities.FieldText, entities.FieldTextarea:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("%s must be text", f.Name)
		}
	case entities.FieldNumber:
		if !isNumeric(value) {
			return fmt.Sprintf("%s must be a number", f.Name)
		}
	case entities.FieldDate:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", f.Name)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", f.Name)
		}
	case entities.FieldEmail:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be an email address", f.Name)
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Sprintf("%s must be an email address", f.Name)
		}
	case entities.FieldSelect:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be one of the configured options", f.Name)
		}
		// Zero configured options means nothing can validate yet
		for _, opt := range f.Options {
			if s == opt {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of the configured options", f.Name)
	}
	return ""
}

// isNumeric accepts JSON numbers in the shapes decoding produces
func isNumeric(v interface{}) bool {
	switch n := v.(type) {
	case float64, float32, int, int32, int64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	default:
		return false
	}
}
