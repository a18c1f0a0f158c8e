package models

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "Active"
	EnrollmentStatusCompleted EnrollmentStatus = "Completed"
	EnrollmentStatusCancelled EnrollmentStatus = "Cancelled"
)

// Enrollment binds a student to a package. PaymentID is nil until a payment
// is attached; a nil PaymentID means the enrollment is unpaid.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	PackageID  string           `db:"package_id" json:"package_id"`
	EnrollDate Date             `db:"enroll_date" json:"enroll_date"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	PaymentID  *string          `db:"payment_id" json:"payment_id,omitempty"`
}

// EnrollmentDetail is the fully joined listing row.
type EnrollmentDetail struct {
	Enrollment
	StudentName   string  `db:"student_name" json:"student_name"`
	PackageName   *string `db:"package_name" json:"package_name,omitempty"`
	SubjectName   *string `db:"subject_name" json:"subject_name,omitempty"`
	ClassID       *string `db:"class_id" json:"class_id,omitempty"`
	ClassName     *string `db:"class_name" json:"class_name,omitempty"`
	ClassDay      *string `db:"class_day" json:"class_day,omitempty"`
	ClassTime     *string `db:"class_time" json:"class_time,omitempty"`
	TeacherName   *string `db:"teacher_name" json:"teacher_name,omitempty"`
	TotalFeesPaid float64 `db:"total_fees_paid" json:"total_fees_paid"`
}
