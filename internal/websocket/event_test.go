package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_StampsTypeAndTime(t *testing.T) {
	before := time.Now().UTC()
	evt := NewEvent(EntityTransaction, ActionCreated, DeletedPayload{ID: 1})

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTransaction, evt.Entity)
	assert.Equal(t, DeletedPayload{ID: 1}, evt.Payload)
	assert.False(t, evt.Timestamp.Before(before))
	assert.Equal(t, time.UTC, evt.Timestamp.Location())
}

func TestEvent_Encode(t *testing.T) {
	data, err := BudgetUpserted(map[string]string{"amount": "100.00"}).Encode()
	require.NoError(t, err)

	var decoded struct {
		Type      string            `json:"type"`
		Entity    string            `json:"entity"`
		Payload   map[string]string `json:"payload"`
		Timestamp time.Time         `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "budget.upserted", decoded.Type)
	assert.Equal(t, "budget", decoded.Entity)
	assert.Equal(t, "100.00", decoded.Payload["amount"])
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		event  Event
		want   string
		entity Entity
	}{
		{TransactionCreated(nil), "transaction.created", EntityTransaction},
		{TransactionUpdated(nil), "transaction.updated", EntityTransaction},
		{TransactionDeleted(1), "transaction.deleted", EntityTransaction},
		{BudgetUpserted(nil), "budget.upserted", EntityBudget},
		{BudgetDeleted(1), "budget.deleted", EntityBudget},
		{BudgetAlert(nil), "budget.alert", EntityBudget},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Type)
			assert.Equal(t, tt.entity, tt.event.Entity)
		})
	}
}

func TestDeletedEvents_CarryOnlyID(t *testing.T) {
	data, err := TransactionDeleted(9).Encode()
	require.NoError(t, err)

	var decoded struct {
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"id": float64(9)}, decoded.Payload)
}
