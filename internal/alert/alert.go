// Package alert notifies operators about runs that went badly.
package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"eduparser/internal/runner"
	"eduparser/internal/scraper"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("eduparser/alert")

// MaxListedFailures bounds the failures listed in one message.
const MaxListedFailures = 20

// Notifier is told about every finished run and decides itself whether it is
// worth a message.
type Notifier interface {
	Notify(ctx context.Context, summary runner.Summary, results []scraper.TaskResult) error
}

type EmailConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
	// On is the mildest verdict that triggers a message, "unhealthy" (the
	// default) or "warning".
	On runner.HealthStatus `json:"on"`
}

// Enabled reports whether enough is configured to send anything.
func (c EmailConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != "" && len(c.To) > 0
}

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func sendMail(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type Email struct {
	config EmailConfig
	send   sendFunc
}

func NewEmail(config EmailConfig) Email {
	if config.On == "" {
		config.On = runner.Unhealthy
	}
	return Email{config: config, send: sendMail}
}

// ShouldNotify reports whether a run with the given verdict is alerted on.
func (e Email) ShouldNotify(status runner.HealthStatus) bool {
	switch status {
	case runner.Unhealthy:
		return true
	case runner.Warning:
		return e.config.On == runner.Warning
	}
	return false
}

func (e Email) Notify(ctx context.Context, summary runner.Summary, results []scraper.TaskResult) error {
	if !e.ShouldNotify(summary.Status) {
		return nil
	}

	ctx, span := tracer.Start(ctx, "alert:Notify")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", summary.RunID))

	mail := e.Message(summary, results)
	addr := fmt.Sprintf("%s:%d", e.config.Server, e.config.Port)
	err := e.send(mail, addr, smtp.PlainAuth("", e.config.EmailAddress, e.config.Password, e.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = e.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}

// Message renders the alert for a run.
func (e Email) Message(summary runner.Summary, results []scraper.TaskResult) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("eduparser <%s>", e.config.EmailAddress)
	mail.To = e.config.To
	mail.Subject = fmt.Sprintf(
		"eduparser: %s run, %d/%d tasks succeeded",
		summary.Status, summary.Succeeded, summary.Total,
	)

	var body strings.Builder
	fmt.Fprintf(&body, "Run %s started at %s finished as %s.\n\n",
		summary.RunID, summary.StartedAt.Format("2006-01-02 15:04:05 MST"), summary.Status)
	fmt.Fprintf(&body, "Success rate: %.0f%% (healthy from %.0f%%, unhealthy below %.0f%%)\n",
		summary.SuccessRate*100, summary.Threshold*100, summary.ThresholdUnhealthy*100)
	fmt.Fprintf(&body, "Applicants counted: %d\n\n", summary.TotalApplicants)

	failures := table.NewWriter()
	failures.AppendHeader(table.Row{"Task", "Error"})
	listed := 0
	for _, res := range results {
		if res.Status != scraper.StatusError {
			continue
		}
		if listed == MaxListedFailures {
			failures.AppendFooter(table.Row{"", fmt.Sprintf("and %d more", summary.Failed-listed)})
			break
		}
		failures.AppendRow(table.Row{res.TaskID, res.Error})
		listed++
	}
	if listed > 0 {
		body.WriteString("Failed tasks:\n")
		body.WriteString(failures.Render())
		body.WriteString("\n")
	}

	mail.Text = []byte(body.String())
	return mail
}
