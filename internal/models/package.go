package models

import (
	"strings"
	"time"
)

// AdvancedPrefix marks packages that require prior F4/F5 enrollments.
const AdvancedPrefix = "Advanced"

// Package is a bundle of subjects a student enrolls into.
type Package struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Fee       float64   `db:"fee" json:"fee"`
	Duration  string    `db:"duration" json:"duration"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdvanced reports whether the package name carries the advanced prefix.
func (p Package) IsAdvanced() bool {
	return strings.HasPrefix(p.Name, AdvancedPrefix)
}

// AdvancedSubject returns the subject implied by an advanced package name,
// e.g. "Advanced Biology" -> "Biology". Empty for non-advanced packages.
func (p Package) AdvancedSubject() string {
	if !p.IsAdvanced() {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(p.Name, AdvancedPrefix))
}
