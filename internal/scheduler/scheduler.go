// Package scheduler runs the periodic cash audit: it logs the bin
// stock on a cron schedule and emails the operator when the stock drops
// below the configured threshold.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/swjeon2/ATM-controller/internal/cashbin"
	"github.com/swjeon2/ATM-controller/internal/config"
	"github.com/swjeon2/ATM-controller/internal/utils/email"
)

// Auditor schedules recurring cash bin checks.
type Auditor struct {
	bin    *cashbin.Bin
	sender *email.Sender
	cfg    *config.Config
	log    *logrus.Logger
	cron   *cron.Cron
}

// NewAuditor creates an auditor; Start schedules it.
func NewAuditor(bin *cashbin.Bin, sender *email.Sender, cfg *config.Config, log *logrus.Logger) *Auditor {
	return &Auditor{bin: bin, sender: sender, cfg: cfg, log: log, cron: cron.New()}
}

// Start registers the audit job on the configured schedule and starts
// the cron runner in its own goroutine.
func (a *Auditor) Start() error {
	if _, err := a.cron.AddFunc(a.cfg.AuditSchedule, a.audit); err != nil {
		return err
	}
	a.cron.Start()
	a.log.Infof("Cash audit scheduled: %s", a.cfg.AuditSchedule)
	return nil
}

// Stop halts the cron runner, waiting for a running job to finish.
func (a *Auditor) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

func (a *Auditor) audit() {
	stock := a.bin.Stock()
	a.log.Infof("Cash audit: stock %d", stock)
	if stock >= a.cfg.LowCashThreshold {
		return
	}
	a.log.Warnf("Cash stock %d below threshold %d", stock, a.cfg.LowCashThreshold)
	if a.cfg.OperatorEmail == "" {
		return
	}
	if err := a.sender.SendLowCashAlert(a.cfg.OperatorEmail, stock, a.cfg.LowCashThreshold); err != nil {
		a.log.Errorf("Low cash alert failed: %v", err)
	}
}
