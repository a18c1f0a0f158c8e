package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/altius-edu/tuition-admin-api/internal/handler"
	"github.com/altius-edu/tuition-admin-api/internal/middleware"
	"github.com/altius-edu/tuition-admin-api/internal/repository"
	"github.com/altius-edu/tuition-admin-api/internal/service"
	"github.com/altius-edu/tuition-admin-api/pkg/cache"
	"github.com/altius-edu/tuition-admin-api/pkg/config"
	"github.com/altius-edu/tuition-admin-api/pkg/database"
	"github.com/altius-edu/tuition-admin-api/pkg/export"
	"github.com/altius-edu/tuition-admin-api/pkg/logger"
	corsmiddleware "github.com/altius-edu/tuition-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/altius-edu/tuition-admin-api/pkg/middleware/requestid"
)

// @title Tuition Admin API
// @version 1.0.0
// @description Administration backend for a tuition center
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	var cachePinger handler.Pinger
	if redisClient != nil {
		cachePinger = cacheRepo
	}

	studentRepo := repository.NewStudentRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	authSvc := service.NewAuthService(staffRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	packageSvc := service.NewPackageService(packageRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, packageRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, packageRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, export.NewReceiptPDF("Altius Tuition Center"), validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, export.NewCSVExporter(), service.ReportConfig{
		LowAttendanceThreshold: cfg.Reports.LowAttendanceThreshold,
	}, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, service.DashboardServiceConfig{
		CacheTTL:               cfg.Dashboard.CacheTTL,
		LowAttendanceThreshold: cfg.Reports.LowAttendanceThreshold,
	}, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Student:    handler.NewStudentHandler(studentSvc),
		Staff:      handler.NewStaffHandler(staffSvc),
		Teacher:    handler.NewTeacherHandler(teacherSvc),
		Package:    handler.NewPackageHandler(packageSvc, subjectSvc),
		Subject:    handler.NewSubjectHandler(subjectSvc),
		Class:      handler.NewClassHandler(classSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc, dashboardSvc),
		Payment:    handler.NewPaymentHandler(paymentSvc, dashboardSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, dashboardSvc),
		Report:     handler.NewReportHandler(reportSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Metrics:    handler.NewMetricsHandler(metrics, db, cachePinger),
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
