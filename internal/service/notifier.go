// Package service holds the verification notifiers: the hand-off between
// an HTTP request that needs a verification e-mail and whatever delivers it.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/blog-api/internal/config"
    "github.com/iliyamo/blog-api/internal/mailer"
    q "github.com/iliyamo/blog-api/internal/queue"
)

// Notifier accepts a verification request.  Implementations must not
// block the caller for long; failures are returned so callers can log them,
// but a failed notification never undoes the signup.
type Notifier interface {
    NotifyRegistered(ctx context.Context, ev q.UserRegisteredEvent) error
}

// NewNotifier picks the notifier for cfg.Driver ("amqp" or "direct").
func NewNotifier(cfg config.NotifyConfig, sender mailer.Sender, frontendURL string) (Notifier, error) {
    switch cfg.Driver {
    case "amqp":
        return &AMQPNotifier{URL: cfg.RabbitMQURL}, nil
    case "", "direct":
        return &DirectNotifier{Sender: sender, FrontendURL: frontendURL}, nil
    default:
        return nil, fmt.Errorf("unsupported NOTIFY_DRIVER: %q", cfg.Driver)
    }
}

// AMQPNotifier publishes a UserRegisteredEvent to the "user.registered"
// queue.  The function attempts to be robust and to never panic; any
// error is logged and returned so the caller can choose to ignore it.
// Messages are marked as persistent.
type AMQPNotifier struct {
    URL string
}

func (n *AMQPNotifier) NotifyRegistered(ctx context.Context, ev q.UserRegisteredEvent) error {
    if ev.RequestedAt == "" {
        ev.RequestedAt = time.Now().UTC().Format(time.RFC3339)
    }
    conn, err := amqp.Dial(n.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.UserRegisteredQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                    // default exchange
        q.UserRegisteredQueue, // routing key = queue name
        false,                 // mandatory
        false,                 // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// DirectNotifier sends the e-mail in-process.  Used when no broker is
// deployed.
type DirectNotifier struct {
    Sender      mailer.Sender
    FrontendURL string
}

func (n *DirectNotifier) NotifyRegistered(ctx context.Context, ev q.UserRegisteredEvent) error {
    return q.Deliver(ctx, n.Sender, n.FrontendURL, ev)
}
