package entities

import (
	"fmt"
	"time"
)

// CustomValues maps a custom field's machine name to its value.
// Values are validated against the merged schema before a record is written.
type CustomValues map[string]interface{}

// OfficerStatus is the service status of an officer
type OfficerStatus string

const (
	OfficerActive   OfficerStatus = "active"
	OfficerInactive OfficerStatus = "inactive"
	OfficerOnLeave  OfficerStatus = "leave"
)

// Officer is a personnel record of kind officer
type Officer struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Rank      string        `json:"rank"`
	Division  string        `json:"division"`
	Status    OfficerStatus `json:"status"`
	JoinDate  time.Time     `json:"join_date"`
	Custom    CustomValues  `json:"custom,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate checks if the officer record is well-formed
func (o *Officer) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("officer name is required")
	}
	switch o.Status {
	case OfficerActive, OfficerInactive, OfficerOnLeave:
	default:
		return fmt.Errorf("unknown officer status: %q", o.Status)
	}
	return nil
}

// Soldier is a personnel record of kind soldier
type Soldier struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Rank      string       `json:"rank"`
	Unit      string       `json:"unit"`
	Status    string       `json:"status"`
	Custom    CustomValues `json:"custom,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Validate checks if the soldier record is well-formed
func (s *Soldier) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("soldier name is required")
	}
	return nil
}

// CaseStatus is the lifecycle state of a case
type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseClosed     CaseStatus = "closed"
)

// CasePriority is the urgency tier of a case
type CasePriority string

const (
	CaseLow    CasePriority = "low"
	CaseMedium CasePriority = "medium"
	CaseHigh   CasePriority = "high"
)

// Case is an investigation or incident record
type Case struct {
	ID          string       `json:"id"`
	CaseNumber  string       `json:"case_number"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      CaseStatus   `json:"status"`
	Priority    CasePriority `json:"priority"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	CreatedBy   string       `json:"created_by,omitempty"`
	Custom      CustomValues `json:"custom,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks if the case record is well-formed
func (c *Case) Validate() error {
	if c.CaseNumber == "" {
		return fmt.Errorf("case number is required")
	}
	if c.Title == "" {
		return fmt.Errorf("case title is required")
	}
	switch c.Status {
	case CaseOpen, CaseInProgress, CaseClosed:
	default:
		return fmt.Errorf("unknown case status: %q", c.Status)
	}
	switch c.Priority {
	case CaseLow, CaseMedium, CaseHigh:
	default:
		return fmt.Errorf("unknown case priority: %q", c.Priority)
	}
	return nil
}

// Announcement is a broadcast message shown on the dashboard.
// Announcements carry no custom fields.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Priority  string    `json:"priority,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the announcement is well-formed
func (a *Announcement) Validate() error {
	if a.Title == "" {
		return fmt.Errorf("announcement title is required")
	}
	if a.Content == "" {
		return fmt.Errorf("announcement content is required")
	}
	return nil
}
