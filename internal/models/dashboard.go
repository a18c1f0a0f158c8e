package models

// StudentBreakdown splits the student count by subtype.
type StudentBreakdown struct {
	Total     int `db:"total" json:"total"`
	Primary   int `db:"primary" json:"primary"`
	Secondary int `db:"secondary" json:"secondary"`
}

// FinancialSnapshot summarises enrollment payment completion.
type FinancialSnapshot struct {
	TotalEnrollments      int     `db:"total_enrollments" json:"total_enrollments"`
	UnpaidEnrollments     int     `db:"unpaid_enrollments" json:"unpaid_enrollments"`
	PaymentCompletionRate float64 `db:"payment_completion_rate" json:"payment_completion_rate"`
}

// DashboardStats is the KPI snapshot shown on the admin landing page.
type DashboardStats struct {
	Students              StudentBreakdown  `json:"students"`
	Classes               int               `json:"classes"`
	AvgAttendance         float64           `json:"avg_attendance"`
	LowAttendanceStudents int               `json:"low_attendance_students"`
	Financial             FinancialSnapshot `json:"financial"`
}
