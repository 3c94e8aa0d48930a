package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/internal/config"
	"github.com/jmehdipour/email-dispatch/internal/kafka"
	"github.com/jmehdipour/email-dispatch/internal/sqs"
)

type publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

var publishFlags eventFlags

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish one email delivery event to the configured queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ev, err := publishFlags.event()
		if err != nil {
			return err
		}
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		pub, err := newPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer pub.Close()

		if err := pub.Publish(ctx, ev.To, body); err != nil {
			return fmt.Errorf("publish: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> published to %s: %s\n", cfg.Queue.Driver, body)
		return nil
	},
}

func init() {
	publishFlags.register(publishCmd)
}

func newPublisher(ctx context.Context, cfg config.Config) (publisher, error) {
	switch strings.ToLower(cfg.Queue.Driver) {
	case "", "kafka":
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case "sqs":
		if cfg.SQS.QueueURL == "" {
			return nil, fmt.Errorf("sqs.queue_url is required")
		}
		client, err := sqs.NewClient(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return sqs.NewPublisher(client, cfg.SQS.QueueURL), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}
