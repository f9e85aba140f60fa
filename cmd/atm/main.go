package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/atm"
	"github.com/swjeon2/ATM-controller/internal/cashbin"
	"github.com/swjeon2/ATM-controller/internal/config"
	"github.com/swjeon2/ATM-controller/internal/service"
	"github.com/swjeon2/ATM-controller/internal/store"
	"github.com/swjeon2/ATM-controller/internal/ui"
)

// seedAccount pairs an account with the card that reaches it.
type seedAccount struct {
	card    string
	pin     string
	account string
	balance int64
}

var seeds = []seedAccount{
	{"0000-0000-0000-0000", "0000", "00000-00000", 0},
	{"1111-1111-1111-1111", "1111", "11111-11111", 1000},
	{"2222-2222-2222-2222", "2222", "22222-22222", 2000},
	{"3333-3333-3333-3333", "3333", "33333-33333", 3000},
	{"4444-4444-4444-4444", "4444", "44444-44444", 4000},
	{"5555-5555-5555-5555", "5555", "55555-55555", 5000},
}

func main() {
	// Load .env if present; real env wins
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.WarnLevel // keep the console quiet by default
	}
	logger.SetLevel(logLevel)
	logger.SetOutput(os.Stderr)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize layers: in-memory store with demo data, cash bin,
	// bank service, session controller.
	mem := store.NewMemory()
	svc := service.NewService(mem, mem, logger)
	if err := seed(svc); err != nil {
		logger.Fatalf("Failed to seed demo data: %v", err)
	}

	bin := cashbin.NewBin(cfg.CashStock)
	controller := atm.NewController(svc, bin, logger)

	console := ui.NewConsole(controller, os.Stdin, os.Stdout)
	console.Run()
}

// seed enrolls the demo cards and accounts, including one joint
// account reachable from two different cards.
func seed(svc *service.Service) error {
	for _, s := range seeds {
		if _, err := svc.CreateAccount(s.account, s.balance); err != nil {
			return err
		}
		if err := svc.EnrollCard(s.card, s.pin, []string{s.account}); err != nil {
			return err
		}
	}

	// Joint account shared by the first two cards.
	if _, err := svc.CreateAccount("99999-99999", 99999); err != nil {
		return err
	}
	if err := svc.LinkAccount(seeds[0].card, "99999-99999"); err != nil {
		return err
	}
	return svc.LinkAccount(seeds[1].card, "99999-99999")
}
