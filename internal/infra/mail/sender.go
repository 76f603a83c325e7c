package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leaddialer/internal/infra/queue"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`<p>Call with <strong>{{.LeadName}}</strong> (lead {{.LeadID}})</p>
<ul>
  <li>Ended: {{.EndedAt}}</li>
  <li>Phone: {{.Phone}}</li>
  {{- if .Email}}
  <li>Email: {{.Email}}</li>
  {{- end}}
  <li>Call SID: {{.CallSID}}</li>
  <li>Duration: {{.Duration}}s</li>
</ul>
<p>Notes:</p>
<blockquote>{{if .Notes}}{{.Notes}}{{else}}(none){{end}}</blockquote>
`))

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// SendCallSummary mails the notes of a finished call to the configured recipient.
func (s *EmailSender) SendCallSummary(event queue.CallEvent) error {
	data := CallSummaryData{
		LeadName: event.LeadName,
		LeadID:   event.LeadID,
		Phone:    event.Phone,
		Email:    event.Email,
		CallSID:  event.CallSID,
		Notes:    event.Notes,
		Duration: event.Duration,
		EndedAt:  event.OccurredAt.UTC().Format(time.RFC3339),
	}

	var body bytes.Buffer
	if err := summaryTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render call summary: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Call summary: %s", event.LeadName))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send call summary: %w", err)
	}
	return nil
}
