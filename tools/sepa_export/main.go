package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	employeesrepo "payroll-cloud/internal/employees/infrastructure/postgres"
	payrollapp "payroll-cloud/internal/payroll/application"
	payrollrepo "payroll-cloud/internal/payroll/infrastructure/postgres"
	workrecordsrepo "payroll-cloud/internal/workrecords/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

type config struct {
	dbURL       string
	month       string
	profilePath string
	outDir      string
	execDate    string
}

func main() {
	_ = godotenv.Load()
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create out dir:", err)
		os.Exit(2)
	}

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db open:", err)
		os.Exit(2)
	}
	defer db.Close()

	debtor, err := payrollapp.LoadDebtorProfile(cfg.profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "debtor profile:", err)
		os.Exit(2)
	}

	service, err := payrollapp.NewService(
		workrecordsrepo.NewRecordRepository(db),
		employeesrepo.NewEmployeeRepository(db),
		payrollrepo.NewPaymentRepository(db),
		debtor,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "payroll service:", err)
		os.Exit(2)
	}

	var execDate time.Time
	if cfg.execDate != "" {
		execDate, err = time.Parse("2006-01-02", cfg.execDate)
		if err != nil {
			fmt.Fprintln(os.Stderr, "execution date must be YYYY-MM-DD")
			os.Exit(2)
		}
	}

	result, err := service.BuildExport(context.Background(), cfg.month, execDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build export:", err)
		os.Exit(1)
	}

	path := filepath.Join(cfg.outDir, result.Filename)
	if err := os.WriteFile(path, result.XML, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write file:", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (message id %s)\n", path, result.MessageID)
	for _, excluded := range result.Excluded {
		fmt.Printf("Excluded %s (%s): %s\n", excluded.EmployeeID, excluded.EmployeeName, excluded.Reason)
	}
}

func parseFlags() (config, error) {
	var cfg config
	flag.StringVar(&cfg.dbURL, "db", getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")), "Postgres DSN")
	flag.StringVar(&cfg.month, "month", "", "payroll month in YYYY-MM")
	flag.StringVar(&cfg.profilePath, "profile", getenvDefault("COMPANY_PROFILE", ""), "company profile YAML path")
	flag.StringVar(&cfg.outDir, "out", "./out", "output directory")
	flag.StringVar(&cfg.execDate, "date", "", "requested execution date YYYY-MM-DD (optional)")
	flag.Parse()

	if cfg.dbURL == "" {
		return cfg, errors.New("missing --db or DATABASE_URL/PG_DSN")
	}
	if cfg.month == "" {
		return cfg, errors.New("missing --month (YYYY-MM)")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
