package models

// AttendanceDirection selects which side of the threshold a report returns.
type AttendanceDirection string

const (
	// AttendanceBelow returns rows strictly under the threshold.
	AttendanceBelow AttendanceDirection = "below"
	// AttendanceAtOrAbove returns rows at or over the threshold.
	AttendanceAtOrAbove AttendanceDirection = "atOrAbove"
)

// AttendanceReportRow aggregates attendance per (student, class) for a month.
type AttendanceReportRow struct {
	StudentName          string  `db:"student_name" json:"student_name"`
	ClassName            string  `db:"class_name" json:"class_name"`
	TotalClasses         int     `db:"total_classes" json:"total_classes"`
	PresentCount         int     `db:"present_count" json:"present_count"`
	AbsentCount          int     `db:"absent_count" json:"absent_count"`
	AttendancePercentage float64 `db:"attendance_percentage" json:"attendance_percentage"`
}

// FinancialReportRow details one enrollment created in the report month.
// Outstanding may be negative when an enrollment is overpaid.
type FinancialReportRow struct {
	StudentName string  `db:"student_name" json:"student_name"`
	PackageName string  `db:"package_name" json:"package_name"`
	TotalFee    float64 `db:"total_fee" json:"total_fee"`
	AmountPaid  float64 `db:"amount_paid" json:"amount_paid"`
	Outstanding float64 `db:"outstanding" json:"outstanding"`
}

// FinancialSummary totals the filtered enrollment set.
type FinancialSummary struct {
	TotalRevenue    float64 `db:"total_revenue" json:"total_revenue"`
	TotalCollected  float64 `db:"total_collected" json:"total_collected"`
	OutstandingFees float64 `db:"outstanding_fees" json:"outstanding_fees"`
	TotalEnrollment int     `db:"total_enrollment" json:"total_enrollment"`
}

// FinancialReport bundles the detail rows with their summary.
type FinancialReport struct {
	Summary  FinancialSummary     `json:"summary"`
	Payments []FinancialReportRow `json:"payments"`
}
