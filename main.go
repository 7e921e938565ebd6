package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"home-energy/internal/audit"
	"home-energy/internal/auth"
	"home-energy/internal/config"
	energyapp "home-energy/internal/energy/application"
	energyhttp "home-energy/internal/energy/interfaces/http"
	meteringapp "home-energy/internal/metering/application"
	metering "home-energy/internal/metering/domain"
	meteringmemory "home-energy/internal/metering/infrastructure/memory"
	meteringpostgres "home-energy/internal/metering/infrastructure/postgres"
	meteringhttp "home-energy/internal/metering/interfaces/http"
	"home-energy/internal/observability/metrics"
	readingapp "home-energy/internal/readings/application"
	readings "home-energy/internal/readings/domain"
	readingmemory "home-energy/internal/readings/infrastructure/memory"
	readingpostgres "home-energy/internal/readings/infrastructure/postgres"
	readinghttp "home-energy/internal/readings/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadServerConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	policyCfg, err := config.LoadPolicy()
	if err != nil {
		logger.Fatalf("policy config error: %v", err)
	}

	var db *sql.DB
	var readingRepo readings.Repository
	var deviceRepo metering.DeviceRepository
	var providerRepo metering.ProviderRepository
	var auditLogger audit.Logger = audit.Nop{}

	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		readingRepo = readingpostgres.NewReadingRepository(db)
		deviceRepo = meteringpostgres.NewDeviceRepository(db)
		providerRepo = meteringpostgres.NewProviderRepository(db)
		auditLogger = audit.NewRepository(db)
	} else {
		logger.Printf("no DATABASE_URL set, using in-memory storage")
		readingRepo = readingmemory.NewReadingRepository()
		deviceRepo = meteringmemory.NewDeviceRepository()
		providerRepo = meteringmemory.NewProviderRepository()
	}

	metrics.Init(db, logger)

	validator := readings.NewValidator(policyCfg.ValidatorThresholds())
	readingService, err := readingapp.NewReadingService(readingRepo, validator, auditLogger, logger)
	if err != nil {
		logger.Fatalf("reading service error: %v", err)
	}
	masterDataService, err := meteringapp.NewMasterDataService(deviceRepo, providerRepo, auditLogger, logger)
	if err != nil {
		logger.Fatalf("master data service error: %v", err)
	}
	energyService, err := energyapp.NewService(readingRepo, deviceRepo, providerRepo, policyCfg.SavingsPolicy(), logger)
	if err != nil {
		logger.Fatalf("energy service error: %v", err)
	}

	readingHandler, err := readinghttp.NewReadingHandler(readingService)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	masterDataHandler, err := meteringhttp.NewMasterDataHandler(masterDataService)
	if err != nil {
		logger.Fatalf("master data handler error: %v", err)
	}
	summaryHandler, err := energyhttp.NewSummaryHandler(energyService, policyCfg.Currency)
	if err != nil {
		logger.Fatalf("summary handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/readings", readingHandler)
	mux.Handle("/api/v1/readings/", readingHandler)
	mux.Handle("/api/v1/readings/report", summaryHandler)
	mux.Handle("/api/v1/summary", summaryHandler)
	mux.Handle("/api/v1/reports/daily-costs", summaryHandler)
	mux.Handle("/api/v1/reports/daily-costs.xlsx", summaryHandler)
	mux.Handle("/api/v1/reports/daily-costs.pdf", summaryHandler)
	mux.Handle("/api/v1/devices", masterDataHandler)
	mux.Handle("/api/v1/devices/", masterDataHandler)
	mux.Handle("/api/v1/providers", masterDataHandler)
	mux.Handle("/api/v1/providers/", masterDataHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type serverConfig struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadServerConfig() serverConfig {
	cfg := serverConfig{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
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

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
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
