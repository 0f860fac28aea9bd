// folio - a unified command line and HTTP front end over brokerage accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"folio/internal/broker"
	"folio/internal/config"
	"folio/internal/domain"
	"folio/internal/httpapi"
	"folio/internal/util"
)

const version = "0.1.0"

const orderTimeout = 60 * time.Second

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "folio",
		Short:         "Unified brokerage account tool",
		Long:          "folio talks to an Alpaca, Robinhood, or Webull account through one interface:\nquery holdings and cash, place market orders, or serve the same over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultCfg := "config/folio.yaml"
	if p := os.Getenv("FOLIO_CONFIG"); p != "" {
		defaultCfg = p
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "Path to the YAML configuration file")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(allocationCmd())
	rootCmd.AddCommand(cashCmd())
	rootCmd.AddCommand(buyCmd())
	rootCmd.AddCommand(sellCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, installs the logger, and constructs the
// configured broker. Every subcommand except version goes through here.
func setup(ctx context.Context) (*config.Config, broker.Broker, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config %s: %w", cfgPath, err)
	}

	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)

	b, err := broker.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, b, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("folio %s\n", version)
		},
	}
}

func allocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allocation",
		Short: "Show the current portfolio allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), orderTimeout)
			defer cancel()

			_, b, err := setup(ctx)
			if err != nil {
				return err
			}

			allocs, err := b.GetCurrentAllocation(ctx)
			if err != nil {
				return fmt.Errorf("getting allocation from %s: %w", b.Name(), err)
			}
			printAllocations(allocs)
			return nil
		},
	}
}

func cashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cash",
		Short: "Show available account cash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), orderTimeout)
			defer cancel()

			_, b, err := setup(ctx)
			if err != nil {
				return err
			}

			cash, err := b.GetAccountCash(ctx)
			if err != nil {
				return fmt.Errorf("getting cash from %s: %w", b.Name(), err)
			}
			fmt.Printf("%s\n", cash.StringFixed(2))
			return nil
		},
	}
}

func buyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy SYMBOL AMOUNT",
		Short: "Buy a symbol with a dollar amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[1], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), orderTimeout)
			defer cancel()

			_, b, err := setup(ctx)
			if err != nil {
				return err
			}

			if err := b.Buy(ctx, symbol, amount); err != nil {
				if errors.Is(err, broker.ErrAmountTooSmall) {
					return fmt.Errorf("$%s does not cover one share of %s", amount.StringFixed(2), symbol)
				}
				return fmt.Errorf("buying %s: %w", symbol, err)
			}
			fmt.Printf("buy order for %s ($%s) submitted to %s\n", symbol, amount.StringFixed(2), b.Name())
			return nil
		},
	}
}

func sellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sell SYMBOL QUANTITY",
		Short: "Sell a number of shares of a symbol",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]
			qty, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("parsing quantity %q: %w", args[1], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), orderTimeout)
			defer cancel()

			_, b, err := setup(ctx)
			if err != nil {
				return err
			}

			if err := b.Sell(ctx, symbol, qty); err != nil {
				return fmt.Errorf("selling %s: %w", symbol, err)
			}
			fmt.Printf("sell order for %s shares of %s submitted to %s\n", qty.Floor(), symbol, b.Name())
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the brokerage HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, b, err := setup(ctx)
			if err != nil {
				return err
			}

			host := cfg.Server.Host
			port := cfg.Server.Port
			if port == 0 {
				port = 8080
			}
			addr := fmt.Sprintf("%s:%d", host, port)

			api := httpapi.NewServer(b, util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))
			srv := &http.Server{
				Addr:         addr,
				Handler:      api.Handler(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Printf("folio serving %s broker on %s\n", b.Name(), addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func printAllocations(allocs []domain.Allocation) {
	total := domain.TotalMarketValue(allocs)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tQTY\tPRICE\tVALUE\tWEIGHT")
	for _, a := range allocs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n",
			a.Symbol,
			a.Quantity.String(),
			a.CurrentPrice.StringFixed(2),
			a.MarketValue.StringFixed(2),
			a.Weight(total).Mul(decimal.NewFromInt(100)).StringFixed(2),
		)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t\n", total.StringFixed(2))
	w.Flush()
}
