package mail_tools

import (
	"fmt"
	"strings"

	"github.com/teemow/fastmail-mcp/internal/jmap"
)

const (
	previewRunes = 150
	bodyRunes    = 2000
)

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// senderDisplay renders the first sender as "Name <addr>", falling back
// to the bare address, or "unknown" when the from list is empty.
func senderDisplay(from []jmap.EmailAddress) string {
	if len(from) == 0 {
		return "unknown"
	}
	if from[0].Name != "" {
		return fmt.Sprintf("%s <%s>", from[0].Name, from[0].Email)
	}
	return from[0].Email
}

// formatAddressList renders an address list as a comma-separated string,
// or "none" when empty.
func formatAddressList(addrs []jmap.EmailAddress) string {
	if len(addrs) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.Name, a.Email))
		} else {
			parts = append(parts, a.Email)
		}
	}
	return strings.Join(parts, ", ")
}

// receivedDate extracts the YYYY-MM-DD prefix of a JMAP date.
func receivedDate(receivedAt string) string {
	if len(receivedAt) > 10 {
		return receivedAt[:10]
	}
	return receivedAt
}

// appendEmailSummary appends the summary block used by list_emails and
// search_emails for a single email.
func appendEmailSummary(lines []string, e jmap.Email) []string {
	lines = append(lines, fmt.Sprintf("\n**%s**", e.Subject))
	lines = append(lines, fmt.Sprintf("  From: %s", senderDisplay(e.From)))
	lines = append(lines, fmt.Sprintf("  Date: %s", receivedDate(e.ReceivedAt)))
	lines = append(lines, fmt.Sprintf("  %s", truncateRunes(e.Preview, previewRunes)))
	lines = append(lines, fmt.Sprintf("  [id:%s] [thread:%s]", e.ID, e.ThreadID))
	return lines
}

// bodyFromParts concatenates the body values referenced by the given
// parts, in order.
func bodyFromParts(parts []jmap.BodyPart, values map[string]jmap.BodyValue) string {
	var b strings.Builder
	for _, part := range parts {
		if v, ok := values[part.PartID]; ok {
			b.WriteString(v.Value)
		}
	}
	return b.String()
}

// textBody returns the plain-text body of an email, falling back to the
// HTML body when no text part is present.
func textBody(e jmap.Email) string {
	if body := bodyFromParts(e.TextBody, e.BodyValues); body != "" {
		return body
	}
	return bodyFromParts(e.HTMLBody, e.BodyValues)
}
