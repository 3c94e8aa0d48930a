package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/internal/address"
	"github.com/jmehdipour/email-dispatch/internal/config"
	"github.com/jmehdipour/email-dispatch/internal/db"
	"github.com/jmehdipour/email-dispatch/internal/repository"
	"github.com/jmehdipour/email-dispatch/internal/util"
)

var (
	blacklistReason string
	blacklistLimit  int
	blacklistOffset int
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the recipient deny-list",
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add an address to the deny-list",
	Args:  cobra.ExactArgs(1),
	RunE: withBlacklist(func(ctx context.Context, cmd *cobra.Command, repo repository.BlacklistRepository, args []string) error {
		addr := util.NormalizeAddress(args[0])
		if err := validator.New().Var(addr, "required,email"); err != nil {
			return fmt.Errorf("invalid email %q", args[0])
		}
		if err := repo.Add(ctx, addr, blacklistReason); err != nil {
			return fmt.Errorf("add %s: %w", addr, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), ">> %s blacklisted\n", addr)
		return nil
	}),
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <email>",
	Short: "Remove an address from the deny-list",
	Args:  cobra.ExactArgs(1),
	RunE: withBlacklist(func(ctx context.Context, cmd *cobra.Command, repo repository.BlacklistRepository, args []string) error {
		addr := util.NormalizeAddress(args[0])
		removed, err := repo.Remove(ctx, addr)
		if err != nil {
			return fmt.Errorf("remove %s: %w", addr, err)
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), ">> %s was not blacklisted\n", addr)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), ">> %s removed\n", addr)
		return nil
	}),
}

var blacklistCheckCmd = &cobra.Command{
	Use:   "check <email>",
	Short: "Report whether an address is blacklisted",
	Args:  cobra.ExactArgs(1),
	RunE: withBlacklist(func(ctx context.Context, cmd *cobra.Command, repo repository.BlacklistRepository, args []string) error {
		addr := util.NormalizeAddress(args[0])
		hit, err := repo.Exists(ctx, addr)
		if err != nil {
			return fmt.Errorf("check %s: %w", addr, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s blacklisted=%t\n", addr, hit)
		return nil
	}),
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted addresses, newest first",
	Args:  cobra.NoArgs,
	RunE: withBlacklist(func(ctx context.Context, cmd *cobra.Command, repo repository.BlacklistRepository, _ []string) error {
		entries, err := repo.List(ctx, blacklistLimit, blacklistOffset)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EMAIL\tREASON\tCREATED_AT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Email, e.Reason, e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return tw.Flush()
	}),
}

func init() {
	blacklistAddCmd.Flags().StringVar(&blacklistReason, "reason", "", "why the address is denied")
	blacklistListCmd.Flags().IntVar(&blacklistLimit, "limit", 100, "max rows")
	blacklistListCmd.Flags().IntVar(&blacklistOffset, "offset", 0, "rows to skip")

	blacklistCmd.AddCommand(blacklistAddCmd, blacklistRemoveCmd, blacklistCheckCmd, blacklistListCmd)
}

type blacklistFunc func(ctx context.Context, cmd *cobra.Command, repo repository.BlacklistRepository, args []string) error

// withBlacklist opens MySQL (and Redis, when configured) for the duration of
// one subcommand. Writes evict the lookup cache so the worker sees them at once.
func withBlacklist(fn blacklistFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		sqlDB, err := db.NewMySQLConnection(ctx, cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		var repo repository.BlacklistRepository = repository.NewBlacklistRepository(sqlDB)
		if cfg.Redis.Addr != "" {
			rdb, err := db.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer rdb.Close()
			repo = evictingBlacklist{BlacklistRepository: repo, cache: rdb}
		}

		return fn(ctx, cmd, repo, args)
	}
}

// evictingBlacklist drops the cached verdict after every successful write.
type evictingBlacklist struct {
	repository.BlacklistRepository
	cache address.Evictor
}

func (r evictingBlacklist) Add(ctx context.Context, email, reason string) error {
	if err := r.BlacklistRepository.Add(ctx, email, reason); err != nil {
		return err
	}
	return r.evict(ctx, email)
}

func (r evictingBlacklist) Remove(ctx context.Context, email string) (bool, error) {
	removed, err := r.BlacklistRepository.Remove(ctx, email)
	if err != nil {
		return false, err
	}
	return removed, r.evict(ctx, email)
}

func (r evictingBlacklist) evict(ctx context.Context, email string) error {
	if err := address.InvalidateBlacklisted(ctx, r.cache, email); err != nil {
		return fmt.Errorf("evict cached verdict for %s: %w", email, err)
	}
	return nil
}
