package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"payroll-cloud/internal/audit"
	"payroll-cloud/internal/auth"
	employeesapp "payroll-cloud/internal/employees/application"
	employeesrepo "payroll-cloud/internal/employees/infrastructure/postgres"
	employeeshttp "payroll-cloud/internal/employees/interfaces/http"
	holidaysapp "payroll-cloud/internal/holidays/application"
	holidaysrepo "payroll-cloud/internal/holidays/infrastructure/postgres"
	holidayshttp "payroll-cloud/internal/holidays/interfaces/http"
	invoicesapp "payroll-cloud/internal/invoices/application"
	invoicesrepo "payroll-cloud/internal/invoices/infrastructure/postgres"
	invoiceshttp "payroll-cloud/internal/invoices/interfaces/http"
	notificationsapp "payroll-cloud/internal/notifications/application"
	notificationsrepo "payroll-cloud/internal/notifications/infrastructure/postgres"
	notificationshttp "payroll-cloud/internal/notifications/interfaces/http"
	"payroll-cloud/internal/observability/metrics"
	payrollapp "payroll-cloud/internal/payroll/application"
	payrollrepo "payroll-cloud/internal/payroll/infrastructure/postgres"
	payrollhttp "payroll-cloud/internal/payroll/interfaces/http"
	workrecordsapp "payroll-cloud/internal/workrecords/application"
	workrecordsrepo "payroll-cloud/internal/workrecords/infrastructure/postgres"
	workrecordshttp "payroll-cloud/internal/workrecords/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	employeeRepo := employeesrepo.NewEmployeeRepository(db)
	employeeService, err := employeesapp.NewService(employeeRepo)
	if err != nil {
		logger.Fatalf("employee service error: %v", err)
	}
	employeeHandler, err := employeeshttp.NewHandler(employeeService, auditRepo)
	if err != nil {
		logger.Fatalf("employee handler error: %v", err)
	}

	recordRepo := workrecordsrepo.NewRecordRepository(db)
	recordService, err := workrecordsapp.NewService(recordRepo)
	if err != nil {
		logger.Fatalf("work record service error: %v", err)
	}
	recordHandler, err := workrecordshttp.NewHandler(recordService, auditRepo)
	if err != nil {
		logger.Fatalf("work record handler error: %v", err)
	}

	notificationRepo := notificationsrepo.NewNotificationRepository(db)
	notificationService, err := notificationsapp.NewService(notificationRepo)
	if err != nil {
		logger.Fatalf("notification service error: %v", err)
	}
	notificationHandler, err := notificationshttp.NewHandler(notificationService)
	if err != nil {
		logger.Fatalf("notification handler error: %v", err)
	}

	holidayRepo := holidaysrepo.NewHolidayRepository(db)
	holidayService, err := holidaysapp.NewService(holidayRepo, notificationService)
	if err != nil {
		logger.Fatalf("holiday service error: %v", err)
	}
	holidayHandler, err := holidayshttp.NewHandler(holidayService, auditRepo)
	if err != nil {
		logger.Fatalf("holiday handler error: %v", err)
	}

	invoiceRepo := invoicesrepo.NewInvoiceRepository(db)
	invoiceService, err := invoicesapp.NewService(invoiceRepo)
	if err != nil {
		logger.Fatalf("invoice service error: %v", err)
	}
	invoiceHandler, err := invoiceshttp.NewHandler(invoiceService, auditRepo)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}

	debtor, err := payrollapp.LoadDebtorProfile(cfg.CompanyProfilePath)
	if err != nil {
		logger.Fatalf("debtor profile error: %v", err)
	}
	paymentRepo := payrollrepo.NewPaymentRepository(db)
	payrollService, err := payrollapp.NewService(
		recordRepo,
		employeeRepo,
		paymentRepo,
		debtor,
		payrollapp.WithDefaultRate(decimal.NewFromFloat(cfg.DefaultHourlyRate)),
	)
	if err != nil {
		logger.Fatalf("payroll service error: %v", err)
	}
	payrollHandler, err := payrollhttp.NewHandler(payrollService, auditRepo)
	if err != nil {
		logger.Fatalf("payroll handler error: %v", err)
	}
	paymentsHandler, err := payrollhttp.NewPaymentsHandler(payrollService, auditRepo)
	if err != nil {
		logger.Fatalf("payments handler error: %v", err)
	}
	paymentsCSVHandler, err := payrollhttp.NewPaymentsCSVHandler(payrollService)
	if err != nil {
		logger.Fatalf("payments csv handler error: %v", err)
	}

	loginHandler, err := auth.NewLoginHandler(employeeRepo, []byte(cfg.JWTSecret), logger)
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/auth/login"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/login", loginHandler)
	mux.Handle("/api/v1/employees", employeeHandler)
	mux.Handle("/api/v1/employees/", employeeHandler)
	mux.Handle("/api/v1/work-records", recordHandler)
	mux.Handle("/api/v1/work-records/", recordHandler)
	mux.Handle("/api/v1/holidays", holidayHandler)
	mux.Handle("/api/v1/holidays/", holidayHandler)
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/notifications", notificationHandler)
	mux.Handle("/api/v1/notifications/", notificationHandler)
	mux.Handle("/api/v1/payroll", payrollHandler)
	mux.Handle("/api/v1/payroll/", payrollHandler)
	mux.Handle("/api/v1/payments", paymentsHandler)
	mux.Handle("/api/v1/payments/", paymentsHandler)
	mux.Handle("/api/v1/exports/payments.csv", paymentsCSVHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL        string
	HTTPAddr           string
	JWTSecret          string
	CompanyProfilePath string
	DefaultHourlyRate  float64
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CompanyProfilePath: getenvDefault("COMPANY_PROFILE", ""),
		DefaultHourlyRate:  getenvFloatDefault("DEFAULT_HOURLY_RATE", 15),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		duration := time.Since(start)
		metrics.ObserveHTTP(r.Method, strconv.Itoa(resp.status/100)+"xx", duration)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
