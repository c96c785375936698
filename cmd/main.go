package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"gurukul/internal/caching"
	"gurukul/internal/handlers"
	"gurukul/internal/jobs/background"
	"gurukul/internal/middleware"
	"gurukul/internal/models"
	"gurukul/internal/reporting"
	"gurukul/internal/repositories"
	"gurukul/internal/services"
	"gurukul/pkg/database"
)

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}
	tokenTTL := envInt("ACCESS_TOKEN_TTL_SECONDS", 3600)
	refreshTTL := envInt("REFRESH_TOKEN_TTL_SECONDS", 7*24*3600)

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := envInt("REDIS_DB", 0)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// School identity for admission numbers
	cityCode := os.Getenv("SCHOOL_CITY_CODE")
	if cityCode == "" {
		cityCode = "HYD"
	}

	// Attachment storage
	attachmentSvc, err := services.NewAttachmentService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize attachment service: %v", err)
	}
	if err := attachmentSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("Failed to ensure receipt bucket: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool)
	billRepo := repositories.NewBillRepo(pool)
	classPaymentRepo := repositories.NewClassPaymentRepo(pool)
	templateRepo := repositories.NewBillingTemplateRepo(pool)
	studentRepo := repositories.NewStudentRepo(pool)
	jobRepo := repositories.NewScheduledJobRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, tokenTTL, refreshTTL)
	approvalSvc := services.NewApprovalService(ledgerRepo, studentRepo, cacheSvc)
	billGenSvc := services.NewBillGenService(billRepo, studentRepo, classPaymentRepo, templateRepo)
	rollNumberSvc := services.NewRollNumberService(studentRepo, jobRepo)
	studentSvc := services.NewStudentService(studentRepo, cityCode)
	templateSvc := services.NewTemplateService(templateRepo)
	reportingSvc := reporting.NewService(ledgerRepo, cacheSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(userRepo, authSvc)
	ledgerHandlers := handlers.NewLedgerHandlers(approvalSvc, attachmentSvc)
	financeHandlers := handlers.NewFinanceHandlers(reportingSvc)
	billHandlers := handlers.NewBillHandlers(billGenSvc)
	templateHandlers := handlers.NewBillingTemplateHandlers(templateSvc)
	classPaymentHandlers := handlers.NewClassPaymentHandlers(classPaymentRepo)
	studentHandlers := handlers.NewStudentHandlers(studentSvc, rollNumberSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// JWT middleware configuration
	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.JWTCustomClaims)
		},
		SuccessHandler: middleware.AttachClaims,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for login/refresh)
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))

	chairmanOnly := middleware.RequireRole(models.RoleChairman)
	staffOnly := middleware.RequireRole(models.RoleChairman, models.RoleAdmin)

	// Staff accounts are provisioned by the chairman
	protected.POST("/auth/register", authHandlers.Register, chairmanOnly)

	// Finance request routes
	protected.POST("/finance-requests", ledgerHandlers.CreateEntry)
	protected.GET("/finance-requests", ledgerHandlers.ListEntries)
	protected.GET("/finance-requests/:id", ledgerHandlers.GetEntry)
	protected.PUT("/finance-requests/:id", ledgerHandlers.UpdateEntry)
	protected.DELETE("/finance-requests/:id", ledgerHandlers.DeleteEntry)
	protected.POST("/finance-requests/:id/receipts", ledgerHandlers.UploadReceipt)
	protected.GET("/finance-requests/:id/receipts/url", ledgerHandlers.GetReceiptURL)

	// Approval routes (chairman decides)
	protected.POST("/finance-requests/:id/approve", ledgerHandlers.ApproveEntry, chairmanOnly)
	protected.POST("/finance-requests/:id/decline", ledgerHandlers.DeclineEntry, chairmanOnly)
	protected.POST("/finance-requests/bulk-approve", ledgerHandlers.BulkApprove, chairmanOnly)
	protected.POST("/finance-requests/bulk-decline", ledgerHandlers.BulkDecline, chairmanOnly)

	// Finance reports
	protected.GET("/finance/summary", financeHandlers.GetSummary)
	protected.GET("/finance/revenue-expense", financeHandlers.GetRevenueExpense)
	protected.GET("/finance/revenue-breakdown", financeHandlers.GetRevenueBreakdown)
	protected.GET("/finance/expense-breakdown", financeHandlers.GetExpenseBreakdown)

	// Bill routes
	protected.POST("/bills/generate", billHandlers.GenerateBills, staffOnly)
	protected.GET("/bills", billHandlers.ListBills)
	protected.GET("/bills/:id", billHandlers.GetBill)
	protected.POST("/bills/:id/pay", billHandlers.PayBill)
	protected.POST("/bills/:id/reject", billHandlers.RejectBill, staffOnly)

	// Billing template routes
	protected.GET("/billing-templates", templateHandlers.ListTemplates)
	protected.GET("/billing-templates/:id", templateHandlers.GetTemplate)
	protected.POST("/billing-templates", templateHandlers.CreateTemplate, staffOnly)
	protected.PUT("/billing-templates/:id", templateHandlers.UpdateTemplate, staffOnly)
	protected.DELETE("/billing-templates/:id", templateHandlers.DeleteTemplate, staffOnly)

	// Class payment config routes
	protected.GET("/class-payments", classPaymentHandlers.ListClassPayments)
	protected.GET("/class-payments/:class", classPaymentHandlers.GetClassPayment)
	protected.PUT("/class-payments", classPaymentHandlers.UpsertClassPayment, staffOnly)
	protected.DELETE("/class-payments/:class", classPaymentHandlers.DeleteClassPayment, staffOnly)

	// Student routes
	protected.POST("/students", studentHandlers.AdmitStudent, staffOnly)
	protected.GET("/students", studentHandlers.ListStudents)
	protected.GET("/students/:id", studentHandlers.GetStudent)
	protected.GET("/students/:id/bills", billHandlers.ListStudentBills)
	protected.GET("/students/by-unique-id/:uniqueID", studentHandlers.GetStudentByUniqueID)

	// Roll number routes (chairman decides)
	protected.POST("/roll-numbers/assign", studentHandlers.AssignRollNumbers, chairmanOnly)
	protected.POST("/roll-numbers/schedule", studentHandlers.ScheduleRollNumbers, chairmanOnly)
	protected.GET("/roll-numbers/schedule", studentHandlers.GetRollNumberSchedule)
	protected.DELETE("/roll-numbers/schedule", studentHandlers.CancelRollNumberSchedule, chairmanOnly)

	// Background jobs
	jobScheduler := background.NewJobScheduler(rollNumberSvc, billGenSvc, reportingSvc)
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer jobScheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
