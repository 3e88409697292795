package service

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/skillswap/internal/queue"
)

// RabbitPublisher publishes swap events to the durable swap.events queue.
// It dials per publish; swap traffic is low and this keeps the publisher
// free of reconnect state.
type RabbitPublisher struct {
    URL         string
    DialTimeout time.Duration
}

func NewRabbitPublisher(url string) *RabbitPublisher {
    return &RabbitPublisher{URL: url, DialTimeout: 2 * time.Second}
}

// PublishSwapEvent never panics; any error is logged and returned so the
// caller can choose to ignore it. Messages are marked as persistent.
func (p *RabbitPublisher) PublishSwapEvent(ctx context.Context, event queue.SwapEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
    if err != nil {
        slog.Warn("rabbitmq: dial failed", "err", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        slog.Warn("rabbitmq: channel open failed", "err", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue.SwapEventsQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        slog.Warn("rabbitmq: queue declare failed", "err", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                    // default exchange
        queue.SwapEventsQueue, // routing key = queue name
        false,                 // mandatory
        false,                 // immediate
        pub,
    ); err != nil {
        slog.Warn("rabbitmq: publish failed", "err", err)
        return err
    }
    return nil
}
