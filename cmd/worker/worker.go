package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmehdipour/email-dispatch/internal/config"
	httpserver "github.com/jmehdipour/email-dispatch/internal/http"
	"github.com/jmehdipour/email-dispatch/internal/kafka"
	"github.com/jmehdipour/email-dispatch/internal/logger"
	"github.com/jmehdipour/email-dispatch/internal/sqs"
	"github.com/jmehdipour/email-dispatch/internal/worker"
)

// NewWorkerCmd returns the "worker" command.
func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the email dispatch worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
			return runWorker(cfgPath)
		},
	}
}

func runWorker(cfgPath string) error {
	// 1) config + logger
	boot, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(boot.Log.Level)
	defer func() { _ = log.Sync() }()

	w, err := config.NewWatcher(cfgPath, log)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	cfg := w.Current()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2) handler
	rt, err := Build(ctx, w, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	// 3) queue source
	src, err := NewSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	wk := worker.New(src, rt.Handler, log, cfg.Worker.Threads)
	srv := httpserver.NewServer(log, rt.Registry, rt.Checks)

	log.Info("worker started",
		zap.String("queue", cfg.Queue.Driver),
		zap.Int("threads", wk.Threads),
		zap.String("http", cfg.HTTP.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wk.Run(gctx) })
	g.Go(func() error {
		if err := srv.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	err = g.Wait()
	log.Info("worker stopped")
	return err
}

// NewSource opens the consumer selected by queue.driver.
func NewSource(ctx context.Context, cfg config.Config) (worker.Source, error) {
	switch strings.ToLower(cfg.Queue.Driver) {
	case "", "kafka":
		return worker.FromKafka(kafka.NewConsumerFromConfig(kafka.Config{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.Topic,
			GroupID:        cfg.Kafka.GroupID,
			MinBytes:       cfg.Kafka.MinBytes,
			MaxBytes:       cfg.Kafka.MaxBytes,
			CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
		})), nil
	case "sqs":
		if cfg.SQS.QueueURL == "" {
			return nil, fmt.Errorf("sqs.queue_url is required")
		}
		client, err := sqs.NewClient(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return worker.FromSQS(sqs.NewConsumer(client, cfg.SQS)), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}
