package worker

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/jmehdipour/email-dispatch/internal/address"
	"github.com/jmehdipour/email-dispatch/internal/allowlist"
	"github.com/jmehdipour/email-dispatch/internal/channel/mailer"
	"github.com/jmehdipour/email-dispatch/internal/channel/sendgrid"
	"github.com/jmehdipour/email-dispatch/internal/config"
	"github.com/jmehdipour/email-dispatch/internal/db"
	"github.com/jmehdipour/email-dispatch/internal/dispatcher"
	httpserver "github.com/jmehdipour/email-dispatch/internal/http"
	"github.com/jmehdipour/email-dispatch/internal/metrics"
	"github.com/jmehdipour/email-dispatch/internal/repository"
	"github.com/jmehdipour/email-dispatch/internal/sender"
)

// Runtime is everything the dispatch handler needs, built from config.
type Runtime struct {
	Handler  *dispatcher.Handler
	Registry *prometheus.Registry
	Checks   map[string]httpserver.Check

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Build wires the handler. The allow-list follows w for the Runtime's lifetime.
func Build(ctx context.Context, w *config.Watcher, log *zap.Logger) (*Runtime, error) {
	cfg := w.Current()
	rt := &Runtime{Registry: prometheus.NewRegistry(), Checks: map[string]httpserver.Check{}}
	ready := false
	defer func() {
		if !ready {
			rt.Close()
		}
	}()

	rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	m.MustRegister(rt.Registry)

	// 1) blacklist store (MySQL) + lookup cache (Redis), both optional
	var blacklist address.Blacklist
	if cfg.MySQL.DSN != "" {
		dbx, err := db.NewMySQLConnection(ctx, cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = dbx.Close() })
		rt.Checks["mysql"] = dbx.PingContext
		blacklist = address.NewStoreBlacklist(repository.NewBlacklistRepository(dbx))
	} else {
		log.Warn("mysql.dsn is empty, blacklist checks are disabled")
	}

	var resolver address.MXResolver
	if cfg.Validation.MXCheck {
		resolver = net.DefaultResolver
	}
	var classifier address.Classifier = address.NewDomainClassifier(cfg.Validation.ShadyDomains, resolver, cfg.Validation.LookupTimeout)

	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = rdb.Close() })
		rt.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		classifier = address.NewCachedClassifier(classifier, rdb, cfg.Validation.CacheTTL, log)
		if blacklist != nil {
			blacklist = address.NewCachedBlacklist(blacklist, rdb, cfg.Validation.CacheTTL, log)
		}
	}

	// 2) channels
	internal, err := mailer.New(ctx, cfg.Mailer)
	if err != nil {
		return nil, fmt.Errorf("internal transport: %w", err)
	}

	thirdParty := dispatcher.NoThirdParty()
	if cfg.SendGrid.Enabled() {
		thirdParty = dispatcher.UseThirdParty(sendgrid.New(cfg.SendGrid.APIKey))
	} else {
		log.Info("sendgrid.api_key is empty, all email goes through the internal transport")
	}

	// 3) allow-list, hot-reloaded
	allow := allowlist.New(cfg.SendGrid.EmailTypesCSV)
	sub := allow.Follow(w)
	rt.closers = append(rt.closers, sub.Close)

	h, err := dispatcher.New(dispatcher.Deps{
		Log:        log,
		Validator:  address.NewValidator(classifier, blacklist),
		Internal:   internal,
		AllowList:  allow,
		Metrics:    m,
		Senders:    sender.NewDirectory(cfg.Senders.NoReplyAddress, cfg.Senders.InfoAddress),
		ThirdParty: thirdParty,
	})
	if err != nil {
		return nil, err
	}
	rt.Handler = h

	log.Info("dispatch handler ready",
		zap.String("mailer", cfg.Mailer.Driver),
		zap.Bool("sendgrid", thirdParty.Enabled()),
		zap.Int("sendgrid_email_types", allow.Len()),
		zap.Bool("blacklist", blacklist != nil),
		zap.Bool("mx_check", cfg.Validation.MXCheck),
	)

	ready = true
	return rt, nil
}
