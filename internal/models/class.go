package models

import "time"

// Class is a scheduled session for one subject taught by one teacher.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Day       string    `db:"day" json:"day"`
	Time      string    `db:"time" json:"time"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassWithPrereq is the joined listing row with an aggregated,
// comma-delimited prerequisite list.
type ClassWithPrereq struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Day           string  `db:"day" json:"day"`
	Time          string  `db:"time" json:"time"`
	SubjectName   string  `db:"subject_name" json:"subject_name"`
	PackageName   string  `db:"package_name" json:"package_name"`
	TeacherName   string  `db:"teacher_name" json:"teacher_name"`
	Prerequisites *string `db:"prerequisites" json:"prerequisites,omitempty"`
}

// ClassPrerequisite is a directed "requires" edge between two classes.
type ClassPrerequisite struct {
	ID                  string `db:"id" json:"id"`
	ClassID             string `db:"class_id" json:"class_id"`
	PrerequisiteClassID string `db:"prerequisite_class_id" json:"prerequisite_class_id"`
}

// PrerequisiteDetail names the prerequisite class for a given class.
type PrerequisiteDetail struct {
	EdgeID    string `db:"edge_id" json:"edge_id"`
	ClassID   string `db:"class_id" json:"class_id"`
	ClassName string `db:"class_name" json:"class_name"`
}

// ScheduleRow is a class schedule entry ordered by day and time.
type ScheduleRow struct {
	ClassID     string `db:"class_id" json:"class_id"`
	ClassName   string `db:"class_name" json:"class_name"`
	Day         string `db:"day" json:"day"`
	Time        string `db:"time" json:"time"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
