package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/middleware"
	"github.com/altius-edu/tuition-admin-api/internal/service"
)

// Handlers groups every handler registered on the router.
type Handlers struct {
	Auth       *AuthHandler
	Student    *StudentHandler
	Staff      *StaffHandler
	Teacher    *TeacherHandler
	Package    *PackageHandler
	Subject    *SubjectHandler
	Class      *ClassHandler
	Enrollment *EnrollmentHandler
	Payment    *PaymentHandler
	Attendance *AttendanceHandler
	Report     *ReportHandler
	Dashboard  *DashboardHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts every endpoint under the configured prefix. All
// admin routes require a valid access token; login, health and metrics
// stay open.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	root := r.Group(prefix)

	root.GET("/health", h.Metrics.Health)
	root.GET("/ready", h.Metrics.Ready)
	root.GET("/metrics", h.Metrics.Prometheus)
	root.POST("/auth/login", h.Auth.Login)

	secured := root.Group("", middleware.JWT(auth))

	students := secured.Group("/students")
	students.GET("", h.Student.List)
	students.POST("", h.Student.Create)
	students.GET("/:id", h.Student.Get)
	students.PUT("/:id", h.Student.Update)
	students.DELETE("/:id", h.Student.Delete)

	staff := secured.Group("/staff")
	staff.POST("", h.Staff.Create)
	staff.GET("/:id", h.Staff.Get)
	staff.PUT("/:id", h.Staff.Update)

	teachers := secured.Group("/teachers")
	teachers.GET("", h.Teacher.List)
	teachers.POST("", h.Teacher.Create)
	teachers.GET("/:id", h.Teacher.Get)
	teachers.PUT("/:id", h.Teacher.Update)
	teachers.DELETE("/:id", h.Teacher.Delete)

	packages := secured.Group("/packages")
	packages.GET("", h.Package.List)
	packages.POST("", h.Package.Create)
	packages.GET("/:id", h.Package.Get)
	packages.GET("/:id/subjects", h.Package.Subjects)
	packages.PUT("/:id", h.Package.Update)
	packages.DELETE("/:id", h.Package.Delete)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.Subject.List)
	subjects.POST("", h.Subject.Create)
	subjects.GET("/:id", h.Subject.Get)
	subjects.PUT("/:id", h.Subject.Update)
	subjects.DELETE("/:id", h.Subject.Delete)

	classes := secured.Group("/classes")
	classes.GET("", h.Class.List)
	classes.GET("/with-prereq", h.Class.ListWithPrereq)
	classes.GET("/schedule", h.Class.Schedule)
	classes.POST("", h.Class.Create)
	classes.DELETE("/prerequisites/:edgeId", h.Class.DeletePrerequisite)
	classes.GET("/:id", h.Class.Get)
	classes.PUT("/:id", h.Class.Update)
	classes.DELETE("/:id", h.Class.Delete)
	classes.GET("/:id/prerequisites", h.Class.ListPrerequisites)
	classes.POST("/:id/prerequisites", h.Class.AddPrerequisite)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", h.Enrollment.List)
	enrollments.POST("", h.Enrollment.Create)
	enrollments.GET("/:id", h.Enrollment.Get)
	enrollments.PUT("/:id", h.Enrollment.Update)
	enrollments.DELETE("/:id", h.Enrollment.Delete)

	payments := secured.Group("/payments")
	payments.POST("", h.Payment.Create)
	payments.GET("/students/:studentId/groups", h.Payment.StudentGroups)
	payments.GET("/students/:studentId/summary", h.Payment.Summary)
	payments.GET("/students/:studentId/outstanding", h.Payment.Outstanding)
	payments.GET("/enrollments/:enrollmentId/receipt", h.Payment.Receipt)
	payments.GET("/enrollments/:enrollmentId/receipt.pdf", h.Payment.ReceiptPDF)

	attendance := secured.Group("/attendance")
	attendance.GET("", h.Attendance.List)
	attendance.POST("", h.Attendance.Create)
	attendance.POST("/bulk", h.Attendance.BulkCreate)
	attendance.GET("/classes/:classId/roster", h.Attendance.Roster)
	attendance.GET("/:id", h.Attendance.Get)
	attendance.PUT("/:id", h.Attendance.Update)
	attendance.DELETE("/:id", h.Attendance.Delete)

	reports := secured.Group("/reports")
	reports.GET("/attendance", h.Report.Attendance)
	reports.GET("/financial", h.Report.Financial)
	reports.GET("/financial.csv", h.Report.FinancialCSV)

	secured.GET("/dashboard", h.Dashboard.Stats)
}
