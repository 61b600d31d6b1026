package websocket

import (
	"encoding/json"
	"time"
)

// Entity names the kind of record an event describes
type Entity string

const (
	EntityTransaction Entity = "transaction"
	EntityBudget      Entity = "budget"
)

// Action names what happened to the record
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionUpserted Action = "upserted"
	ActionAlert    Action = "alert"
)

// Event is the message pushed to a user's connections, serialized as
// {"type":"budget.alert","entity":"budget","payload":{...},"timestamp":"..."}
type Event struct {
	Type      string    `json:"type"`
	Entity    Entity    `json:"entity"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// DeletedPayload identifies a removed record
type DeletedPayload struct {
	ID int64 `json:"id"`
}

// NewEvent stamps an event for entity and action
func NewEvent(entity Entity, action Action, payload any) Event {
	return Event{
		Type:      string(entity) + "." + string(action),
		Entity:    entity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Encode returns the wire form of the event
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionCreated(tx any) Event {
	return NewEvent(EntityTransaction, ActionCreated, tx)
}

func TransactionUpdated(tx any) Event {
	return NewEvent(EntityTransaction, ActionUpdated, tx)
}

func TransactionDeleted(id int64) Event {
	return NewEvent(EntityTransaction, ActionDeleted, DeletedPayload{ID: id})
}

func BudgetUpserted(budget any) Event {
	return NewEvent(EntityBudget, ActionUpserted, budget)
}

func BudgetDeleted(id int64) Event {
	return NewEvent(EntityBudget, ActionDeleted, DeletedPayload{ID: id})
}

// BudgetAlert reports a budget that reached its alert threshold
func BudgetAlert(alert any) Event {
	return NewEvent(EntityBudget, ActionAlert, alert)
}
