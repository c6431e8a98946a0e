package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/QuantumGPT/config"
	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/debug"
	"github.com/dyike/QuantumGPT/internal/hub"
	"github.com/dyike/QuantumGPT/internal/scheduler"
	"github.com/dyike/QuantumGPT/internal/server"
	"github.com/dyike/QuantumGPT/models"
	"github.com/dyike/QuantumGPT/pkg/app"
)

const version = "v1.0.0"

type rootFlags struct {
	configPath string
	clientID   string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "quantumgpt",
		Short: "QuantumGPT - AI crypto strategy and screener",
		Long: `QuantumGPT suggests trading strategies for a cryptocurrency and screens the
market against natural-language criteria, grounded on live or mock market data.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cmd.Context(), flags)
		},
	}

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newStrategyCmd(flags))
	rootCmd.AddCommand(newScreenCmd(flags))
	rootCmd.AddCommand(newMarketCmd(flags))
	rootCmd.AddCommand(newWatchlistCmd(flags))
	rootCmd.AddCommand(newAlertsCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.clientID, "client", consts.DefaultClientID, "Client id owning watchlist and alerts")

	return rootCmd
}

func newManager(flags *rootFlags) (*config.Manager, error) {
	var opts []config.ManagerOption
	if flags.configPath != "" {
		opts = append(opts, config.WithConfigPath(flags.configPath))
	}
	return config.NewManager(opts...)
}

// openRuntime builds a runtime for a one-shot command.
func openRuntime(ctx context.Context, flags *rootFlags) (*app.Runtime, error) {
	mgr, err := newManager(flags)
	if err != nil {
		return nil, err
	}
	return app.NewRuntime(ctx, mgr, app.WithoutWatch())
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket push and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to listen_addr)")
	return cmd
}

func runServe(ctx context.Context, flags *rootFlags, addr string) error {
	mgr, err := newManager(flags)
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	// graphs compile inside NewRuntime, so the debug plugin goes first
	dbg := debug.NewEinoDebugger(cfg)
	if err := dbg.Initialize(ctx); err != nil {
		return err
	}

	h := hub.New()
	go h.Run(ctx)

	rt, err := app.NewRuntime(ctx, mgr, app.WithNotifier(h.Publish))
	if err != nil {
		return err
	}
	defer rt.Close()

	sched := scheduler.NewScheduler(ctx, rt, rt.Alerts(), rt.Lookup(), h)
	if err := sched.RegisterAll(cfg.OverviewSchedule, cfg.AlertSchedule); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if addr == "" {
		addr = cfg.ListenAddr
	}
	srv := server.New(rt, http.HandlerFunc(h.ServeWS))
	return srv.Run(ctx, addr)
}

func newStrategyCmd(flags *rootFlags) *cobra.Command {
	var risk, sentiment string
	cmd := &cobra.Command{
		Use:   "strategy SYMBOL",
		Short: "Suggest a trading strategy for a cryptocurrency",
		Long: `Suggest a trading strategy for a cryptocurrency.
Example: quantumgpt strategy BTC --risk medium --sentiment bullish`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.StrategyRequest{
				Cryptocurrency: args[0],
				RiskTolerance:  models.RiskTolerance(risk),
				Sentiment:      models.Sentiment(sentiment),
			}
			return runStrategy(cmd.Context(), flags, req)
		},
	}
	cmd.Flags().StringVar(&risk, "risk", string(models.RiskMedium), "Risk tolerance: low, medium or high")
	cmd.Flags().StringVar(&sentiment, "sentiment", "", "Market sentiment: bullish or bearish")
	return cmd
}

func runStrategy(ctx context.Context, flags *rootFlags, req models.StrategyRequest) error {
	rt, err := openRuntime(ctx, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	req = req.Normalize()
	res, err := rt.Suggest(ctx, req)
	if err != nil {
		return err
	}
	fmt.Print(RenderStrategy(req.Cryptocurrency, res))
	return nil
}

func newScreenCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "screen CRITERIA",
		Short: "Screen cryptocurrencies against natural-language criteria",
		Long: `Screen cryptocurrencies against natural-language criteria.
Example: quantumgpt screen "low cap AI tokens with rising volume"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context(), flags, args[0])
		},
	}
}

func runScreen(ctx context.Context, flags *rootFlags, criteria string) error {
	rt, err := openRuntime(ctx, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Screen(ctx, models.ScreenerRequest{Criteria: criteria})
	if err != nil {
		return err
	}
	fmt.Print(RenderScreener(res))
	return nil
}

func newMarketCmd(flags *rootFlags) *cobra.Command {
	var trending bool
	cmd := &cobra.Command{
		Use:   "market [SYMBOL]",
		Short: "Show the market overview, one snapshot or trending coins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			board := rt.Board()
			switch {
			case trending:
				coins, err := board.Trending(ctx)
				if err != nil {
					return err
				}
				fmt.Print(RenderTrending(coins))
			case len(args) == 1:
				snap, err := board.Snapshot(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Print(RenderSnapshot(snap))
			default:
				fmt.Print(RenderOverview(board.Overview(ctx)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trending, "trending", false, "Show trending coins")
	return cmd
}

func newWatchlistCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage the chart watchlist",
	}

	withWatchlist := func(fn func(ctx context.Context, rt *app.Runtime) ([]string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags)
			if err != nil {
				return err
			}
			defer rt.Close()
			list, err := fn(ctx, rt)
			if err != nil {
				return err
			}
			fmt.Print(RenderWatchlist(list))
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched symbols",
		RunE: withWatchlist(func(ctx context.Context, rt *app.Runtime) ([]string, error) {
			return rt.Watchlist().List(ctx, flags.clientID)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add EXCHANGE:PAIR",
		Short: "Add a symbol, e.g. BINANCE:SOLUSDT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWatchlist(func(ctx context.Context, rt *app.Runtime) ([]string, error) {
				return rt.Watchlist().Add(ctx, flags.clientID, args[0])
			})(cmd, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove EXCHANGE:PAIR",
		Short: "Remove a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWatchlist(func(ctx context.Context, rt *app.Runtime) ([]string, error) {
				return rt.Watchlist().Remove(ctx, flags.clientID, args[0])
			})(cmd, args)
		},
	})
	return cmd
}

func newAlertsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage price alerts",
	}

	withAlerts := func(fn func(ctx context.Context, rt *app.Runtime, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, flags)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := fn(ctx, rt, args); err != nil {
				return err
			}
			list, err := rt.Alerts().List(ctx, flags.clientID)
			if err != nil {
				return err
			}
			fmt.Print(RenderAlerts(list))
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List price alerts",
		RunE: withAlerts(func(ctx context.Context, rt *app.Runtime, args []string) error {
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add SYMBOL above|below PRICE",
		Short: "Create a price alert",
		Args:  cobra.ExactArgs(3),
		RunE: withAlerts(func(ctx context.Context, rt *app.Runtime, args []string) error {
			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[2], err)
			}
			_, err = rt.Alerts().Create(ctx, flags.clientID, models.AlertInput{
				Symbol:      args[0],
				Condition:   models.AlertCondition(args[1]),
				TargetPrice: price,
			})
			return err
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle ID",
		Short: "Pause or resume an alert",
		Args:  cobra.ExactArgs(1),
		RunE: withAlerts(func(ctx context.Context, rt *app.Runtime, args []string) error {
			_, err := rt.Alerts().Toggle(ctx, flags.clientID, args[0])
			return err
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove ID",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: withAlerts(func(ctx context.Context, rt *app.Runtime, args []string) error {
			return rt.Alerts().Remove(ctx, flags.clientID, args[0])
		}),
	})
	return cmd
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(flags)
			if err != nil {
				return err
			}
			fmt.Print(RenderConfig(mgr.Get(), mgr.Path()))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Update a configuration value",
		Long: `Update a configuration value. A running server picks the change up
without restarting. Example: quantumgpt config set market_provider mock`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(flags)
			if err != nil {
				return err
			}
			if err := mgr.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("%s updated in %s", args[0], mgr.Path())))
			return nil
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("QuantumGPT " + version)
			fmt.Println("AI crypto strategy and screener")
		},
	}
}

// withTimeout bounds interactive requests so a stuck provider does not hang
// the prompt loop.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 3*time.Minute)
}
