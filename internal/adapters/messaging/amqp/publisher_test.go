package amqp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReminder(t *testing.T) {
	body, err := encodeReminder(domain.Reminder{
		Event:       domain.ReminderEventDueSoon,
		UserID:      "user-1",
		RecurringID: "rec-1",
		Name:        "Rent",
		Kind:        domain.KindExpense,
		Amount:      decimal.RequireFromString("1000.50"),
		DueDate:     time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		Month:       3,
		Year:        2025,
		DaysBefore:  3,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "recurring.occurrence.due_soon", decoded["event"])
	assert.Equal(t, "2025-03-15", decoded["dueDate"])
	assert.Equal(t, "1000.5", decoded["amount"])
	assert.Equal(t, "1000.50", decoded["amountText"])
	assert.Equal(t, "EXPENSE", decoded["kind"])
	assert.EqualValues(t, 3, decoded["daysBefore"])
}
