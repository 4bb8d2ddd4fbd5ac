// Package queue runs proof generation as a RabbitMQ worker: proof requests
// are consumed from a queue and their results published to an exchange.
package queue

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Status is the outcome of a proof request.
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Request asks for a proof of Email. An empty BlueprintSlug selects the
// worker's default blueprint.
type Request struct {
	RequestID     uuid.UUID `json:"request_id"`
	BlueprintSlug string    `json:"blueprint_slug,omitempty"`
	Email         string    `json:"email"`
}

// Result is published for every consumed request.
type Result struct {
	RequestID  uuid.UUID       `json:"request_id"`
	ProofID    string          `json:"proof_id,omitempty"`
	Status     Status          `json:"status"`
	ProofData  json.RawMessage `json:"proof_data,omitempty"`
	PublicData json.RawMessage `json:"public_data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Serialize encodes the result as JSON.
func (r Result) Serialize() ([]byte, error) {
	return json.Marshal(r)
}

// Dial connects to the broker, retrying with exponential backoff.
func Dial(ctx context.Context, url string, retries int, logger zerolog.Logger) (*amqp.Connection, error) {
	if retries < 1 {
		retries = 1
	}
	wait := time.Second
	var err error
	for i := 0; i < retries; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if i == retries-1 {
			break
		}
		logger.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).
			Msg("connecting to broker failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = time.Duration(math.Pow(2, float64(i+1))) * time.Second
	}
	return nil, errors.Wrapf(err, "connecting to broker after %d attempts", retries)
}

// Consume declares queue as durable and starts consuming it with manual
// acknowledgements, one unacknowledged delivery at a time.
func Consume(ch *amqp.Channel, queue, consumerTag string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "declaring queue %s", queue)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, errors.Wrap(err, "setting prefetch")
	}
	deliveries, err := ch.Consume(
		queue,       // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, errors.Wrapf(err, "consuming %s", queue)
	}
	return deliveries, nil
}
