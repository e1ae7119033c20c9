package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeProjectActivated MessageType = "project.activated"
	MessageTypeTaskCreated      MessageType = "task.created"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// ProjectActivatedPayload — payload события об активации заказа.
type ProjectActivatedPayload struct {
	ProjectID    uuid.UUID `json:"project_id"`
	TasksCreated int       `json:"tasks_created"`
}

// TaskCreatedPayload — payload события о созданной задаче.
type TaskCreatedPayload struct {
	TaskID           uuid.UUID `json:"task_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	RecipeSnapshotID uuid.UUID `json:"recipe_snapshot_id"`
	StepID           string    `json:"step_id"`
	DeviceTypeID     uuid.UUID `json:"device_type_id"`
	ExecutionNumber  int       `json:"execution_number"`
	TotalExecutions  int       `json:"total_executions"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishProjectActivated публикует событие об активации заказа.
// Потребители: внешние интеграции (MES, отчётность).
func (p *Publisher) PublishProjectActivated(ctx context.Context, projectID uuid.UUID, tasksCreated int) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeProjectActivated,
		Payload:   ProjectActivatedPayload{ProjectID: projectID, TasksCreated: tasksCreated},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeProjects, RoutingKeyActivated, msg)
}

// PublishTaskCreated публикует событие о созданной задаче.
// Потребитель: диспетчер станков.
func (p *Publisher) PublishTaskCreated(ctx context.Context, payload TaskCreatedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeTaskCreated,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeTasks, RoutingKeyCreated, msg)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}
