package email

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// RunReport summarizes one import run for the report email.
type RunReport struct {
	Kind       string // "account" or "tokenized_echeck"
	RunID      string
	File       string
	Successes  int
	Failures   int
	FailureLog string
	SuccessLog string
	Finished   time.Time
}

var reportTemplate = template.Must(template.New("report").Parse(
	`The {{.Kind}} import of {{.File}} finished at {{.Finished.Format "2006-01-02 15:04:05 MST"}}.

Run ID:     {{.RunID}}
Succeeded:  {{.Successes}}
Failed:     {{.Failures}}

Failure log: {{.FailureLog}}
Success log: {{.SuccessLog}}
{{if .Failures}}
The failure log is attached.
{{end}}`))

// NewReportEmail builds the report email for a finished run. The failure log
// is attached when any row failed.
func NewReportEmail(r RunReport, to []string) (*Email, error) {
	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, r); err != nil {
		return nil, ErrReportTemplate(err)
	}

	status := "completed"
	if r.Failures > 0 {
		status = fmt.Sprintf("completed with %d failed rows", r.Failures)
	}

	msg := &Email{
		To:       to,
		Subject:  fmt.Sprintf("%s import %s", strings.ReplaceAll(r.Kind, "_", " "), status),
		TextBody: body.String(),
		Headers:  map[string]string{"X-Import-Run-ID": r.RunID},
	}

	if r.Failures > 0 && r.FailureLog != "" {
		content, err := os.ReadFile(r.FailureLog)
		if err != nil {
			return nil, fmt.Errorf("failed to read failure log: %w", err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    filepath.Base(r.FailureLog),
			ContentType: "text/plain",
			Content:     content,
		})
	}

	return msg, nil
}
