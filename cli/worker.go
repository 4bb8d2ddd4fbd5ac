package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency/queue"
)

func (a *app) workerCmd() *cobra.Command {
	var consumerTag string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume proof requests from RabbitMQ and publish their results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := queue.Dial(ctx, a.cfg.AMQPURL, a.cfg.WorkerConnectRetries, a.logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			consumeCh, err := conn.Channel()
			if err != nil {
				return err
			}
			defer consumeCh.Close()
			publishCh, err := conn.Channel()
			if err != nil {
				return err
			}
			defer publishCh.Close()

			deliveries, err := queue.Consume(consumeCh, a.cfg.RequestQueue, consumerTag)
			if err != nil {
				return err
			}

			w := queue.NewWorker(queue.SDKProver(a.newSDK()), publishCh, queue.WorkerConfig{
				Exchange:    a.cfg.ResultExchange,
				RoutingKey:  a.cfg.ResultRoutingKey,
				DefaultSlug: a.cfg.BlueprintSlug,
				Timeout:     a.cfg.Timeout,
			}, a.logger.With().Str("queue", a.cfg.RequestQueue).Logger())

			err = w.Run(ctx, deliveries)
			if errors.Is(err, context.Canceled) {
				a.logger.Info().Msg("worker stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&consumerTag, "consumer-tag", "zkresidency-worker", "AMQP consumer tag")
	return cmd
}
