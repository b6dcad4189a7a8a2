// Package events publishes ledger mutations for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"budget/models"
)

// Type names a mutation. It doubles as the AMQP routing key.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	BalanceSet         Type = "balance.set"
	BalanceUpdated     Type = "balance.updated"
	BalanceRecomputed  Type = "balance.recalculated"
	CategoryCreated    Type = "category.created"
	CategoryUpdated    Type = "category.updated"
	CategoryDeleted    Type = "category.deleted"
)

// Event is the message body. It carries identifiers only; consumers read the
// current state back through the API.
type Event struct {
	Type      Type         `json:"type"`
	UserID    uint         `json:"userId"`
	Month     models.Month `json:"month,omitempty"`
	EntityID  string       `json:"entityId,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func New(t Type, owner uint, month models.Month, entityID string) Event {
	return Event{Type: t, UserID: owner, Month: month, EntityID: entityID, Timestamp: time.Now().UTC()}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
