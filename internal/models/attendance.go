package models

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLate    AttendanceStatus = "Late"
	AttendanceStatusExcused AttendanceStatus = "Excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is a per (student, class, date) record.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	Date      Date             `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
}

// AttendanceRecord extends the row with student and class names.
type AttendanceRecord struct {
	Attendance
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	ClassID string
	Date    *Date
}

// ClassRosterEntry identifies a student eligible for marking in a class.
type ClassRosterEntry struct {
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
}
