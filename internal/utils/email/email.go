package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendLowCashAlert notifies the operator that the terminal's cash bin
// fell below the configured threshold.
func (s *Sender) SendLowCashAlert(to string, stock, threshold int64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "ATM Low Cash Alert"

	body := fmt.Sprintf(
		"The terminal cash bin is running low.\n\n"+
			"Current stock: %d\n"+
			"Alert threshold: %d\n"+
			"Checked at: %s\n\n"+
			"Please schedule a refill.\n",
		stock, threshold, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send low cash alert to %s: %v", to, err)
		return fmt.Errorf("failed to send low cash alert: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendTransactionReceipt sends a receipt for a completed deposit or
// withdrawal.
func (s *Sender) SendTransactionReceipt(to, accountID string, amount int64, transactionType string, balance int64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%s Receipt", transactionType)

	body := fmt.Sprintf(
		"Account: %s\n"+
			"%s amount: %d\n"+
			"Transaction time: %s\n"+
			"Current balance: %d\n",
		accountID, transactionType, amount,
		time.Now().Format("2006-01-02 15:04:05"), balance,
	)
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send %s receipt to %s: %v", transactionType, to, err)
		return fmt.Errorf("failed to send %s receipt: %w", transactionType, err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if s.cfg.SMTPUsername == "" {
		return e.Send(addr, nil)
	}
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}
