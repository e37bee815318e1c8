// Package queue defines message payloads exchanged over the message broker
// and the worker that consumes them.
package queue

import (
    "context"
    "errors"
    "strings"

    "github.com/iliyamo/blog-api/internal/mailer"
)

// UserRegisteredQueue carries verification requests from the API to the
// mail worker.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published when an account needs an e-mail
// verification link: right after signup and whenever the user asks for a
// new link.  Token is the raw one-time token; only its hash is stored in
// the database, so the event is the only place the link can be rebuilt
// from.
type UserRegisteredEvent struct {
    UserID      uint64 `json:"user_id"`
    Username    string `json:"username"`
    Email       string `json:"email"`
    Token       string `json:"token"`
    RequestedAt string `json:"requested_at"`
}

func (ev UserRegisteredEvent) validate() error {
    if ev.UserID == 0 || strings.TrimSpace(ev.Email) == "" || ev.Token == "" {
        return errors.New("incomplete user.registered event")
    }
    return nil
}

// Deliver sends the verification e-mail described by ev.
func Deliver(ctx context.Context, s mailer.Sender, frontendURL string, ev UserRegisteredEvent) error {
    if err := ev.validate(); err != nil {
        return err
    }
    return s.Send(ctx, mailer.VerificationMessage(frontendURL, ev.Email, ev.Username, ev.Token))
}
