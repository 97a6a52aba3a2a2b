package entities

import "testing"

func TestCase_Validate(t *testing.T) {
	valid := Case{
		CaseNumber: "C-2024-001",
		Title:      "Missing equipment",
		Status:     CaseOpen,
		Priority:   CaseMedium,
	}

	tests := []struct {
		name    string
		mutate  func(c *Case)
		wantErr bool
	}{
		{"valid case", func(c *Case) {}, false},
		{"missing case number", func(c *Case) { c.CaseNumber = "" }, true},
		{"missing title", func(c *Case) { c.Title = "" }, true},
		{"unknown status", func(c *Case) { c.Status = "pending" }, true},
		{"unknown priority", func(c *Case) { c.Priority = "urgent" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Case.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOfficer_Validate(t *testing.T) {
	tests := []struct {
		name    string
		officer Officer
		wantErr bool
	}{
		{"valid officer", Officer{Name: "J. Mercer", Status: OfficerActive}, false},
		{"on leave", Officer{Name: "J. Mercer", Status: OfficerOnLeave}, false},
		{"missing name", Officer{Status: OfficerActive}, true},
		{"unknown status", Officer{Name: "J. Mercer", Status: "retired"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.officer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Officer.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
