package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PipelineTask is the message handed to the pipeline worker.
type PipelineTask struct {
	DocumentID string `json:"document_id"`
}

// TaskPublisher schedules document processing on the broker-backed task
// queue. It satisfies the app.PipelineScheduler contract.
type TaskPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewTaskPublisher(conn *amqp.Connection, queueName string) *TaskPublisher {
	return &TaskPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *TaskPublisher) Schedule(ctx context.Context, documentID string) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(PipelineTask{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("marshal pipeline task failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish pipeline task failed: %w", err)
	}
	return nil
}
