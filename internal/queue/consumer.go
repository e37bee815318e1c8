package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/blog-api/internal/mailer"
)

// VerificationConsumer drains the user.registered queue and mails each
// verification link.
type VerificationConsumer struct {
    URL         string
    Sender      mailer.Sender
    FrontendURL string
    SendTimeout time.Duration
    RetryDelay  time.Duration // pause before a failed send goes back on the queue
}

// ErrBadMessage marks a delivery that can never succeed: it does not parse
// or lacks the fields needed to build the link.
var ErrBadMessage = errors.New("bad user.registered message")

// Run connects to RabbitMQ, declares the user.registered queue (durable),
// and consumes messages until ctx is cancelled.  Broker failures are
// retried with exponential backoff; a message that cannot be handled is
// logged and rejected without requeue so one bad payload cannot stall the
// queue.
func (c *VerificationConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Printf("mail-worker: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("mail-worker: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *VerificationConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        log.Printf("mail-worker: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if !c.process(ctx, d) {
                return ctx.Err()
            }
        }
    }
}

// process handles one delivery and settles it.  Bad messages are dropped;
// send failures are requeued after RetryDelay so a mail outage does not
// lose verification links.  It reports false when ctx ended while waiting.
func (c *VerificationConsumer) process(ctx context.Context, d amqp.Delivery) bool {
    err := c.handleMessage(ctx, d.Body)
    switch {
    case err == nil:
        _ = d.Ack(false)
        return true
    case errors.Is(err, ErrBadMessage):
        log.Printf("mail-worker: dropping message: %v", err)
        _ = d.Nack(false, false)
        return true
    }

    delay := c.RetryDelay
    if delay <= 0 {
        delay = 5 * time.Second
    }
    log.Printf("mail-worker: %v; requeueing in %s", err, delay)
    ok := sleep(ctx, delay)
    _ = d.Nack(false, true)
    return ok
}

func (c *VerificationConsumer) handleMessage(ctx context.Context, body []byte) error {
    var ev UserRegisteredEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("%w: %v", ErrBadMessage, err)
    }
    if err := ev.validate(); err != nil {
        return fmt.Errorf("%w: %v", ErrBadMessage, err)
    }
    timeout := c.SendTimeout
    if timeout <= 0 {
        timeout = 15 * time.Second
    }
    sctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()
    if err := Deliver(sctx, c.Sender, c.FrontendURL, ev); err != nil {
        return fmt.Errorf("deliver to user %d: %w", ev.UserID, err)
    }
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
