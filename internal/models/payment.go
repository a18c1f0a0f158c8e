package models

// Payment records money received for exactly one enrollment.
type Payment struct {
	ID          string  `db:"id" json:"id"`
	PaymentDate Date    `db:"payment_date" json:"payment_date"`
	TotalFees   float64 `db:"total_fees" json:"total_fees"`
}

// StudentPackageGroup summarises a student's enrollments per package, used
// by the payment screen to pick an unpaid enrollment.
type StudentPackageGroup struct {
	PackageID             string  `db:"package_id" json:"package_id"`
	PackageName           string  `db:"package_name" json:"package_name"`
	PackageFee            float64 `db:"package_fee" json:"package_fee"`
	EnrollmentCount       int     `db:"enrollment_count" json:"enrollment_count"`
	UnpaidCount           int     `db:"unpaid_count" json:"unpaid_count"`
	PaidCount             int     `db:"paid_count" json:"paid_count"`
	EnrollmentIDs         *string `db:"enrollment_ids" json:"enrollment_ids,omitempty"`
	PaidEnrollmentIDs     *string `db:"paid_enrollment_ids" json:"paid_enrollment_ids,omitempty"`
	FirstUnpaidEnrollment *string `db:"first_unpaid_enrollment_id" json:"first_unpaid_enrollment_id,omitempty"`
	FirstPaidEnrollment   *string `db:"first_paid_enrollment_id" json:"first_paid_enrollment_id,omitempty"`
}

// PaymentSummary aggregates all payments made by a student.
type PaymentSummary struct {
	StudentName string  `db:"student_name" json:"student_name"`
	TotalPaid   float64 `db:"total_paid" json:"total_paid"`
}

// OutstandingBalance is the sum of unpaid package fees for a student.
type OutstandingBalance struct {
	OutstandingFees float64 `db:"outstanding_fees" json:"outstanding_fees"`
}

// Receipt captures the full payment context for one paid enrollment.
type Receipt struct {
	StudentName string  `db:"student_name" json:"student_name"`
	StudentIC   string  `db:"student_ic" json:"student_ic"`
	EnrollID    string  `db:"enroll_id" json:"enroll_id"`
	EnrollDate  Date    `db:"enroll_date" json:"enroll_date"`
	PackageName string  `db:"package_name" json:"package_name"`
	PackageFee  float64 `db:"package_fee" json:"package_fee"`
	PaymentID   string  `db:"payment_id" json:"payment_id"`
	PaymentDate Date    `db:"payment_date" json:"payment_date"`
	TotalFees   float64 `db:"total_fees" json:"total_fees"`
}
