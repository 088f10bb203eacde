package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// LeadNotifier emails the agency inbox whenever a lead is stored.
type LeadNotifier struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

// NewLeadNotifier returns nil when there is no sender or recipient, which
// callers treat as notifications disabled.
func NewLeadNotifier(sender EmailSender, to string, logger *logging.Logger) *LeadNotifier {
	if sender == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{sender: sender, to: to, logger: logger}
}

// NotifyNewLead sends a summary of rec.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, rec leads.Record) error {
	if n == nil {
		return nil
	}
	msg := EmailMessage{
		To:          n.to,
		ReplyTo:     rec.Email,
		ReplyToName: rec.Name,
		Subject:     fmt.Sprintf("New insurance lead: %s (%s)", rec.Name, rec.InsuranceType),
		Body:        leadText(rec),
		HTML:        leadHTML(rec),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: new lead: %w", err)
	}
	return nil
}

func leadFields(rec leads.Record) [][2]string {
	return [][2]string{
		{"Name", rec.Name},
		{"Email", rec.Email},
		{"Phone", formatPhone(rec.Phone)},
		{"State", rec.State},
		{"Insurance Type", rec.InsuranceType},
		{"Submitted", rec.Timestamp},
		{"Source", rec.Source},
	}
}

func leadText(rec leads.Record) string {
	var b strings.Builder
	b.WriteString("A new lead requested a free coverage analysis.\n\n")
	for _, f := range leadFields(rec) {
		fmt.Fprintf(&b, "%s: %s\n", f[0], f[1])
	}
	b.WriteString("\nPlease follow up within 24-48 hours.\n")
	return b.String()
}

func leadHTML(rec leads.Record) string {
	var b strings.Builder
	b.WriteString("<p>A new lead requested a free coverage analysis.</p><table>")
	for _, f := range leadFields(rec) {
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(f[0]), html.EscapeString(f[1]))
	}
	b.WriteString("</table><p>Please follow up within 24-48 hours.</p>")
	return b.String()
}

// formatPhone renders ten digits as (555) 123-4567.
func formatPhone(digits string) string {
	if len(digits) != 10 {
		return digits
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}
