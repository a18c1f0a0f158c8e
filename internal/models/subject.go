package models

import "time"

// Subject belongs to exactly one package.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PackageID string    `db:"package_id" json:"package_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail enriches a subject with its package name.
type SubjectDetail struct {
	Subject
	PackageName *string `db:"package_name" json:"package_name,omitempty"`
}
