package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stallpos/internal/client"
	"github.com/angelmondragon/stallpos/internal/display"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/internal/poll"
	"github.com/angelmondragon/stallpos/pkg/config"
	"github.com/angelmondragon/stallpos/pkg/enums"
	"github.com/angelmondragon/stallpos/pkg/instance"
	"github.com/angelmondragon/stallpos/pkg/logger"
	"github.com/angelmondragon/stallpos/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "display"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.LoadDisplay()
	if err != nil {
		logg.Error(context.Background(), "failed to load display config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "display-" + cfg.Kind.String(),
		Instance:    instance.GetID(),
		Level:       logger.ParseLevel(cfg.LogLevel),
	})

	api, err := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create api client", err)
		os.Exit(1)
	}

	poller, err := poll.New(poll.Params{
		Source:   api,
		Logger:   logg,
		Metrics:  metrics.NewPollMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.PollInterval,
		Name:     cfg.Kind.String(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithDisplay(ctx, cfg.Kind.String())
	ctx = logg.WithField(ctx, "api", cfg.APIBaseURL)

	listener, err := listenerFor(ctx, cfg, logg, api)
	if err != nil {
		logg.Error(ctx, "failed to create display listener", err)
		os.Exit(1)
	}
	poller.Subscribe(listener)

	if err := api.Ping(ctx); err != nil {
		logg.Warn(ctx, "api not reachable yet, polling anyway")
	}
	logg.Info(ctx, "starting display poller")

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "display poller stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "display poller shutting down gracefully")
}

// listenerFor renders each changed snapshot the way the configured screen
// would. The call screen also announces and acknowledges new ready orders.
func listenerFor(ctx context.Context, cfg *config.DisplayConfig, logg *logger.Logger, api *client.Client) (poll.Listener, error) {
	switch cfg.Kind {
	case enums.DisplayKindKDS:
		flow := display.NewServerFlow(api, orders.FlowFor(cfg.OrderFlow), logg)
		return func(s poll.Snapshot) {
			board := display.BuildBoard(flow.Flow(ctx), s.Orders, orders.Filter{})
			fields := map[string]any{"pause": s.Pause, "total": board.Count()}
			for _, col := range board.Columns {
				fields[col.Status.String()] = len(col.Orders)
			}
			logg.Info(logg.WithFields(ctx, fields), "kds.board")
		}, nil
	case enums.DisplayKindCall:
		announcer, err := display.NewAnnouncer(api, logg, func(ctx context.Context, o orders.Order) {
			logg.Info(logg.WithOrderID(ctx, o.ID), "call.number "+o.Number)
		})
		if err != nil {
			return nil, err
		}
		limits := display.Limits{Ready: cfg.ReadyLimit, Recent: cfg.HistoryLimit}
		return func(s poll.Snapshot) {
			view := display.BuildCallView(s.Orders, limits)
			if _, err := announcer.Announce(ctx, view); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "call.acknowledge_failed")
			}
			logg.Info(logg.WithFields(ctx, map[string]any{
				"ready":  len(view.Ready),
				"recent": len(view.Recent),
			}), "call.view")
		}, nil
	default:
		return func(s poll.Snapshot) {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"pause":  s.Pause,
				"orders": len(s.Orders),
			}), "pos.state")
		}, nil
	}
}
