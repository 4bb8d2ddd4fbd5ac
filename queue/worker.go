package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/dimidumo/zkresidency"
	"github.com/dimidumo/zkresidency/sdk"
)

// ProveFunc generates a proof of eml with the blueprint identified by slug.
type ProveFunc func(ctx context.Context, slug string, eml []byte) (*zkresidency.GeneratedProof, error)

// SDKProver returns a ProveFunc backed by the registry.
func SDKProver(s *sdk.SDK) ProveFunc {
	return func(ctx context.Context, slug string, eml []byte) (*zkresidency.GeneratedProof, error) {
		return zkresidency.Prove(ctx, s, slug, eml)
	}
}

// Publisher is the subset of *amqp.Channel used to publish results.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string,
		mandatory, immediate bool, msg amqp.Publishing) error
}

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	Exchange    string
	RoutingKey  string
	DefaultSlug string
	// Timeout bounds the generation of a single proof. Zero means no bound.
	Timeout time.Duration
}

// Worker turns proof requests into results.
type Worker struct {
	prove     ProveFunc
	publisher Publisher
	cfg       WorkerConfig
	logger    zerolog.Logger
}

// NewWorker returns a Worker.
func NewWorker(prove ProveFunc, publisher Publisher, cfg WorkerConfig, logger zerolog.Logger) *Worker {
	return &Worker{
		prove:     prove,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run handles deliveries until ctx ends, returning its error, or the
// deliveries channel is closed, returning nil. A delivery is acknowledged
// once its result is published, and requeued if publishing fails.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info().Msg("waiting for proof requests")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Info().Msg("deliveries channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	res := w.process(ctx, d.Body)
	log := w.logger.With().Stringer("request_id", res.RequestID).Logger()

	if err := w.publish(ctx, res, d.CorrelationId); err != nil {
		log.Error().Err(err).Msg("publishing result failed, requeueing request")
		if err := d.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("nack failed")
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Error().Err(err).Msg("ack failed")
	}
}

func (w *Worker) process(ctx context.Context, body []byte) Result {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		w.logger.Warn().Err(err).Msg("discarding malformed request")
		return Result{Status: StatusFailed, Error: "decoding request: " + err.Error()}
	}
	res := Result{RequestID: req.RequestID}
	slug := req.BlueprintSlug
	if slug == "" {
		slug = w.cfg.DefaultSlug
	}

	log := w.logger.With().
		Stringer("request_id", req.RequestID).
		Str("blueprint", slug).
		Logger()
	log.Info().Msg("generating proof")

	proveCtx := ctx
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		proveCtx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	gp, err := w.prove(proveCtx, slug, []byte(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("proof generation failed")
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}

	log.Info().Stringer("proof_id", gp.ProofID).Msg("proof generated")
	res.Status = StatusDone
	res.ProofID = gp.ProofID.String()
	res.ProofData = gp.ProofData
	res.PublicData = gp.PublicData
	return res
}

func (w *Worker) publish(ctx context.Context, res Result, correlationID string) error {
	body, err := res.Serialize()
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	return w.publisher.PublishWithContext(ctx,
		w.cfg.Exchange,
		w.cfg.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			Timestamp:     time.Now(),
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			MessageId:     res.RequestID.String(),
		},
	)
}
