package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/cashbin"
	"github.com/swjeon2/ATM-controller/internal/config"
	"github.com/swjeon2/ATM-controller/internal/handler"
	"github.com/swjeon2/ATM-controller/internal/integrations/rates"
	"github.com/swjeon2/ATM-controller/internal/middleware"
	"github.com/swjeon2/ATM-controller/internal/repository"
	"github.com/swjeon2/ATM-controller/internal/scheduler"
	"github.com/swjeon2/ATM-controller/internal/service"
	"github.com/swjeon2/ATM-controller/internal/store"
	"github.com/swjeon2/ATM-controller/internal/utils/email"
)

func main() {
	// Load .env if present; real env wins
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage: Postgres when DB_CONN is set, in-memory
	// otherwise.
	var (
		accounts  store.AccountStore
		directory store.CardDirectory
	)
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		encKey, err := cfg.EncryptionKeyBytes()
		if err != nil {
			logger.Fatalf("Invalid encryption key: %v", err)
		}
		repo := repository.NewRepository(db, cfg.HMACSecret, encKey)
		accounts, directory = repo, repo
		logger.Info("Using Postgres store")
	} else {
		mem := store.NewMemory()
		accounts, directory = mem, mem
		logger.Info("Using in-memory store")
	}

	// Initialize layers
	svc := service.NewService(directory, accounts, logger)
	bin := cashbin.NewBin(cfg.CashStock)
	h := handler.NewHandler(svc, bin, cfg)
	ratesClient := rates.NewClient(cfg, logger)

	sender := email.NewSender(cfg, logger)
	if cfg.ReceiptEmail != "" {
		svc.EnableReceipts(sender, cfg.ReceiptEmail)
		logger.Infof("Transaction receipts enabled for %s", cfg.ReceiptEmail)
	}

	// Start the cash audit scheduler
	auditor := scheduler.NewAuditor(bin, sender, cfg, logger)
	if err := auditor.Start(); err != nil {
		logger.Fatalf("Failed to start cash audit: %v", err)
	}
	defer auditor.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/accounts/{id}/transactions", h.Transactions).Methods("GET")
	authRouter.HandleFunc("/cards", h.EnrollCard).Methods("POST")
	authRouter.HandleFunc("/cards/{number}/accounts", h.LinkAccount).Methods("POST")
	authRouter.HandleFunc("/cashbin", h.CashBinStatus).Methods("GET")
	authRouter.HandleFunc("/cashbin/load", h.CashBinLoad).Methods("POST")
	// Key rate endpoint
	r.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := ratesClient.GetKeyRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
