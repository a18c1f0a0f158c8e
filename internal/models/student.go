package models

import "time"

// StudentType distinguishes the two student subtypes.
type StudentType string

const (
	StudentTypePrimary   StudentType = "Primary"
	StudentTypeSecondary StudentType = "Secondary"
)

// Valid returns true when the type is a supported value.
func (t StudentType) Valid() bool {
	return t == StudentTypePrimary || t == StudentTypeSecondary
}

// Student represents a learner registered at the center.
type Student struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	IC        string      `db:"ic" json:"ic"`
	Address   *string     `db:"address" json:"address,omitempty"`
	Email     *string     `db:"email" json:"email,omitempty"`
	Phone     *string     `db:"phone" json:"phone,omitempty"`
	Type      StudentType `db:"type" json:"type"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student with its subtype row. Exactly one of the
// Primary or Secondary field groups is populated, matching Type.
type StudentDetail struct {
	Student
	Year   *string `db:"year" json:"year,omitempty"`
	Form   *int    `db:"form" json:"form,omitempty"`
	Stream *string `db:"stream" json:"stream,omitempty"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search   string
	Type     StudentType
	Page     int
	PageSize int
}
