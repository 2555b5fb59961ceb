// Package alert delivers operational alerts to the on-call mailbox.
package alert

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"planpay/internal/shared/biztime"
	sharedConfig "planpay/internal/shared/config"
	"planpay/internal/shared/logger"
)

// SMTPAlerter emails the ops address when a sweep aborts. Gateway credential
// failures stop the whole day's billing, so this path must be loud.
type SMTPAlerter struct {
	config sharedConfig.AlertConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

func NewSMTPAlerter(config sharedConfig.AlertConfig, log logger.Interface) *SMTPAlerter {
	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)

	return &SMTPAlerter{
		config: config,
		dialer: dialer,
		logger: log,
	}
}

func (a *SMTPAlerter) SweepAborted(ctx context.Context, sweepID string, reason error) {
	subject := fmt.Sprintf("[planpay] billing sweep %s aborted", sweepID)

	plainBody := fmt.Sprintf(`Billing sweep %s aborted at %s.

Reason: %v

No further charges were attempted for the day. Schedules already charged are
unaffected; the remainder will be picked up once the sweep is re-run.

Check the gateway credentials before re-running.
`, sweepID, biztime.NowUTC().Format("2006-01-02 15:04:05 MST"), reason)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Billing sweep aborted</h2>
			<p>Sweep <b>%s</b> aborted.</p>
			<p>Reason: %v</p>
			<p>No further charges were attempted for the day. Schedules already charged are unaffected; the remainder will be picked up once the sweep is re-run.</p>
			<p>Check the gateway credentials before re-running.</p>
		</body>
		</html>
	`, sweepID, reason)

	m := gomail.NewMessage()
	m.SetHeader("From", a.config.FromAddress)
	m.SetHeader("To", a.config.OpsAddress)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := a.dialer.DialAndSend(m); err != nil {
		// The alert is best-effort; the abort is already in the run record.
		a.logger.Errorw("failed to send sweep abort alert",
			"sweep_id", sweepID,
			"error", err,
		)
		return
	}

	a.logger.Infow("sweep abort alert sent",
		"sweep_id", sweepID,
		"to", a.config.OpsAddress,
	)
}

// NoopAlerter is used when no SMTP settings are configured.
type NoopAlerter struct {
	logger logger.Interface
}

func NewNoopAlerter(log logger.Interface) *NoopAlerter {
	return &NoopAlerter{logger: log}
}

func (a *NoopAlerter) SweepAborted(ctx context.Context, sweepID string, reason error) {
	a.logger.Warnw("sweep aborted, alerting not configured",
		"sweep_id", sweepID,
		"reason", reason,
	)
}
