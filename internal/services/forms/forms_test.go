package forms

import (
	"strings"
	"testing"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

func officerSchema(custom ...*entities.FieldDefinition) *schema.EntitySchema {
	return &schema.EntitySchema{
		EntityKind: entities.KindOfficer,
		System: []*entities.FieldDefinition{
			{ID: "sys-1", EntityKind: entities.KindOfficer, Name: "name", Label: "Name", Type: entities.FieldText, Required: true, System: true},
			{ID: "sys-2", EntityKind: entities.KindOfficer, Name: "rank", Label: "Rank", Type: entities.FieldText, System: true},
		},
		Custom: custom,
	}
}

func TestRender_RequiredTextField(t *testing.T) {
	form := Render(officerSchema(), nil)

	if form.EntityKind != entities.KindOfficer {
		t.Errorf("entity kind = %q, want officer", form.EntityKind)
	}
	if len(form.Widgets) != 2 {
		t.Fatalf("widget count = %d, want 2", len(form.Widgets))
	}
	w := form.Widgets[0]
	if w.Name != "name" || w.Label != "Name" {
		t.Errorf("first widget = %s/%s, want name/Name", w.Name, w.Label)
	}
	if w.Control != ControlInput {
		t.Errorf("control = %q, want input", w.Control)
	}
	if !w.Required {
		t.Error("name widget should be required")
	}
}

func TestRender_ControlPerFieldType(t *testing.T) {
	custom := []*entities.FieldDefinition{
		{Name: "age", Label: "Age", Type: entities.FieldNumber},
		{Name: "joined", Label: "Joined", Type: entities.FieldDate},
		{Name: "contact", Label: "Contact", Type: entities.FieldEmail},
		{Name: "notes", Label: "Notes", Type: entities.FieldTextarea},
		{Name: "unit", Label: "Unit", Type: entities.FieldSelect, Options: []string{"alpha", "bravo"}},
	}
	form := Render(officerSchema(custom...), nil)

	want := map[string]ControlKind{
		"age":     ControlNumber,
		"joined":  ControlDate,
		"contact": ControlEmail,
		"notes":   ControlTextarea,
		"unit":    ControlSelect,
	}
	for _, w := range form.Widgets {
		if expected, ok := want[w.Name]; ok && w.Control != expected {
			t.Errorf("%s control = %q, want %q", w.Name, w.Control, expected)
		}
	}
}

func TestRender_SelectWithZeroOptions(t *testing.T) {
	form := Render(officerSchema(&entities.FieldDefinition{
		Name: "unit", Label: "Unit", Type: entities.FieldSelect,
	}), nil)

	w := form.Widgets[len(form.Widgets)-1]
	if w.Control != ControlSelect {
		t.Fatalf("control = %q, want select", w.Control)
	}
	if w.Options == nil || len(w.Options) != 0 {
		t.Errorf("options = %v, want empty slice", w.Options)
	}
}

func TestRender_PrefillsValues(t *testing.T) {
	form := Render(officerSchema(), entities.CustomValues{"rank": "captain"})

	for _, w := range form.Widgets {
		if w.Name == "rank" && w.Value != "captain" {
			t.Errorf("rank value = %v, want captain", w.Value)
		}
	}
}

func TestValidate(t *testing.T) {
	s := officerSchema(
		&entities.FieldDefinition{Name: "age", Label: "Age", Type: entities.FieldNumber},
		&entities.FieldDefinition{Name: "joined", Label: "Joined", Type: entities.FieldDate},
		&entities.FieldDefinition{Name: "contact", Label: "Contact", Type: entities.FieldEmail},
		&entities.FieldDefinition{Name: "unit", Label: "Unit", Type: entities.FieldSelect, Options: []string{"alpha", "bravo"}},
	)

	tests := []struct {
		name    string
		values  entities.CustomValues
		wantErr string
	}{
		{
			name:   "valid full set",
			values: entities.CustomValues{"name": "Dana", "rank": "major", "age": float64(41), "joined": "2020-03-15", "contact": "dana@example.com", "unit": "alpha"},
		},
		{
			name:    "required missing",
			values:  entities.CustomValues{"rank": "major"},
			wantErr: "name is required",
		},
		{
			name:    "required blank",
			values:  entities.CustomValues{"name": "   "},
			wantErr: "name is required",
		},
		{
			name:    "number gets text",
			values:  entities.CustomValues{"name": "Dana", "age": "forty"},
			wantErr: "age must be a number",
		},
		{
			name:    "date malformed",
			values:  entities.CustomValues{"name": "Dana", "joined": "15/03/2020"},
			wantErr: "joined must be a date",
		},
		{
			name:    "email malformed",
			values:  entities.CustomValues{"name": "Dana", "contact": "not-an-address"},
			wantErr: "contact must be an email address",
		},
		{
			name:    "select outside options",
			values:  entities.CustomValues{"name": "Dana", "unit": "delta"},
			wantErr: "unit must be one of the configured options",
		},
		{
			name:    "unknown key rejected",
			values:  entities.CustomValues{"name": "Dana", "callsign": "viper"},
			wantErr: "callsign is not a field of officer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(s, tt.values)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	s := officerSchema(&entities.FieldDefinition{Name: "age", Label: "Age", Type: entities.FieldNumber})

	err := Validate(s, entities.CustomValues{"age": "old", "ghost": 1})
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Violations) != 3 {
		t.Errorf("violations = %v, want 3 entries", verr.Violations)
	}
}
