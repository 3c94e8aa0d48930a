package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/cmd/worker"
	"github.com/jmehdipour/email-dispatch/internal/config"
	"github.com/jmehdipour/email-dispatch/internal/logger"
)

var sendFlags eventFlags

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run one event through the dispatch handler without a queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := sendFlags.event()
		if err != nil {
			return err
		}

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

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		rt, err := worker.Build(ctx, w, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Handler.Handle(ctx, ev); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ">> handled")
		return nil
	},
}

func init() {
	sendFlags.register(sendCmd)
}
