package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/cmd/worker"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:           "emaild",
		Short:         "Email dispatch worker CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(blacklistCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
