package mailer

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// VerificationLink builds the link a user follows to confirm their address.
func VerificationLink(frontendURL, rawToken string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-email?token=" + url.QueryEscape(rawToken)
}

// VerificationMessage is the e-mail sent after signup and on resend.
func VerificationMessage(frontendURL, to, username, rawToken string) Message {
	link := VerificationLink(frontendURL, rawToken)
	return Message{
		To:      to,
		Subject: "Confirm your e-mail address",
		HTML: fmt.Sprintf(`<h1>Welcome, %s</h1><p>Please confirm your e-mail address by following <a href="%s">this link</a>.</p>`,
			html.EscapeString(username), html.EscapeString(link)),
		Text: fmt.Sprintf("Welcome, %s\n\nPlease confirm your e-mail address by visiting:\n%s\n", username, link),
	}
}
