// Package amqp publishes reminder events to RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/middleware"
	"github.com/SscSPs/mma_recurring/internal/utils"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// ReminderPublisher sends due-soon reminders to a durable direct exchange.
type ReminderPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	routingKey   string

	// amqp091 channels must not be used for concurrent publishes.
	mu sync.Mutex
}

var _ portsrepo.ReminderPublisher = (*ReminderPublisher)(nil)

// NewReminderPublisher dials url and declares the exchange.
func NewReminderPublisher(url, exchangeName, routingKey string) (*ReminderPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &ReminderPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		routingKey:   routingKey,
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return p, nil
}

// reminderMessage is the wire form consumed by the notifier.
type reminderMessage struct {
	Event       string          `json:"event"`
	UserID      string          `json:"userID"`
	RecurringID string          `json:"recurringID"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	AmountText  string          `json:"amountText"` // fixed two decimals
	DueDate     string          `json:"dueDate"`    // YYYY-MM-DD
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	DaysBefore  int             `json:"daysBefore"`
}

func encodeReminder(r domain.Reminder) ([]byte, error) {
	return json.Marshal(reminderMessage{
		Event:       r.Event,
		UserID:      r.UserID,
		RecurringID: r.RecurringID,
		Name:        r.Name,
		Kind:        string(r.Kind),
		Amount:      r.Amount,
		AmountText:  utils.FormatMoney(r.Amount),
		DueDate:     r.DueDate.Format(time.DateOnly),
		Month:       r.Month,
		Year:        r.Year,
		DaysBefore:  r.DaysBefore,
	})
}

// PublishReminder publishes one persistent JSON message per reminder.
func (p *ReminderPublisher) PublishReminder(ctx context.Context, reminder domain.Reminder) error {
	body, err := encodeReminder(reminder)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Type:         reminder.Event,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Published reminder",
		slog.String("recurring_id", reminder.RecurringID),
		slog.String("exchange", p.exchangeName),
		slog.String("routing_key", p.routingKey))
	return nil
}

// Close gracefully closes the channel and connection.
func (p *ReminderPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
