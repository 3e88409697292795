// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
    "fmt"
    "time"
)

// SwapEventsQueue is the durable queue carrying SwapEvent messages.
const SwapEventsQueue = "swap.events"

// Event types published for swap requests.
const (
    SwapCreated       = "swap.created"
    SwapStatusChanged = "swap.status_changed"
)

// SwapEvent is published when a swap request is created or its status
// changes. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type SwapEvent struct {
    Type        string    `json:"type"`
    SwapID      string    `json:"swap_id"`
    RequesterID string    `json:"requester_id"`
    ReceiverID  string    `json:"receiver_id"`
    Status      string    `json:"status"`
    OccurredAt  time.Time `json:"occurred_at"`
}

// LogLine renders ev as the single line written to the swaps log.
func (ev SwapEvent) LogLine() string {
    return fmt.Sprintf("[%s] %s | swap_id=%s | requester_id=%s | receiver_id=%s | status=%s\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.SwapID, ev.RequesterID, ev.ReceiverID, ev.Status)
}
