package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"learning-yogi/internal/platform/rabbitmq"
)

// PipelineRunner executes the processing pipeline for one document.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, documentID string) error
}

// RetryPolicy decides what happens to a task whose pipeline run errored.
// The pipeline already recorded the failure on the document, so retrying
// is about transient infrastructure faults, not business outcomes.
type RetryPolicy interface {
	ShouldRetry(redelivered bool, err error) bool
}

// NoRetryPolicy logs and drops: a failed document stays failed until a
// user resubmits it.
type NoRetryPolicy struct{}

func (NoRetryPolicy) ShouldRetry(bool, error) bool { return false }

// RequeueOncePolicy retries a task exactly once via broker redelivery.
type RequeueOncePolicy struct{}

func (RequeueOncePolicy) ShouldRetry(redelivered bool, _ error) bool { return !redelivered }

// PipelineWorker consumes document-process tasks and runs the pipeline
// for each. One worker goroutine; per-document ordering comes from the
// pipeline being the single writer for its document.
type PipelineWorker struct {
	conn      *amqp.Connection
	runner    PipelineRunner
	queueName string
	retry     RetryPolicy

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPipelineWorker(conn *amqp.Connection, runner PipelineRunner, queueName string, retry RetryPolicy) *PipelineWorker {
	if retry == nil {
		retry = NoRetryPolicy{}
	}
	return &PipelineWorker{
		conn:      conn,
		runner:    runner,
		queueName: queueName,
		retry:     retry,
	}
}

func (w *PipelineWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *PipelineWorker) handle(ctx context.Context, d amqp.Delivery) {
	var task rabbitmq.PipelineTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Printf("worker decode pipeline task failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.runner.RunPipeline(ctx, task.DocumentID); err != nil {
		if w.retry.ShouldRetry(d.Redelivered, err) {
			log.Printf("worker pipeline for document %s errored, requeueing: %v", task.DocumentID, err)
			_ = d.Nack(false, true)
			return
		}
		log.Printf("worker pipeline for document %s errored, dropping: %v", task.DocumentID, err)
	}
	_ = d.Ack(false)
}

func (w *PipelineWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
