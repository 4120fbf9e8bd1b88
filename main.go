package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"ctacte-backend/internal/audit"
	"ctacte-backend/internal/observability/metrics"
	"ctacte-backend/internal/statement/application"
	statement "ctacte-backend/internal/statement/domain"
	"ctacte-backend/internal/statement/infrastructure/postgres"
	"ctacte-backend/internal/statement/interfaces"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := loadConfig()
	reportCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, database-backed endpoints disabled")
	}

	metrics.Init(db, logger)
	clock := statement.SystemClock{}

	batch, err := application.NewBatchService(interfaces.PDFRenderer{}, reportCfg.OutputDir, clock, logger)
	if err != nil {
		logger.Fatalf("batch service error: %v", err)
	}

	var history interfaces.MovementHistory
	var auditLogger audit.Logger
	if db != nil {
		history = postgres.NewMovementQuery(db)
		auditLogger = audit.NewRepository(db)
	}

	statementHandler, err := interfaces.NewStatementHandler(batch, history, clock, reportCfg, auditLogger, logger)
	if err != nil {
		logger.Fatalf("statement handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/statements/upload", statementHandler)
	mux.Handle("/api/v1/statements/generate", statementHandler)
	mux.Handle("/api/v1/statements/json", statementHandler)
	if db != nil {
		customersHandler, err := interfaces.NewCustomersHandler(postgres.NewCustomerQuery(db), logger)
		if err != nil {
			logger.Fatalf("customers handler error: %v", err)
		}
		mux.Handle("/api/v1/customers/today", customersHandler)
		mux.Handle("/api/v1/exports/movements.xlsx", interfaces.NewExportMovementsHandler(history, clock, reportCfg.LookbackDays, logger))
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: corsMiddleware(loggingMiddleware(mux, logger))}
	logger.Infof("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":5001"),
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
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

func loggingMiddleware(next http.Handler, logger *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  resp.status,
			"latency": time.Since(start).String(),
		}).Info("http request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
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
