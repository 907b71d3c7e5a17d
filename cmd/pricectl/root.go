package main

import (
	"fmt"
	"time"

	"github.com/erp/pricesync/internal/infrastructure/config"
	"github.com/erp/pricesync/internal/infrastructure/logger"
	"github.com/erp/pricesync/internal/infrastructure/pricelookup"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalOptions struct {
	baseURL string
	timeout time.Duration
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "pricectl",
		Short: "Product price lookup client",
		Long: `pricectl talks to the price service the way the product form does.

Defaults come from the [lookup] section of config.toml and the
PRICESYNC_LOOKUP_* environment variables; flags override them.

Examples:
  pricectl lookup 3                          # Print the price of product 3
  pricectl lookup 3 --base-url http://erp:8080
  pricectl sync 3 5 8                        # Select 3, 5, 8 in turn on a form
  pricectl sync 3 5 --cancel-superseded      # Only the last selection may win`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "",
		"Price service base URL (default: lookup.base_url)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0,
		"Per-request timeout, 0 for none (default: lookup.timeout)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"Enable debug logging to stderr")

	root.AddCommand(newLookupCmd(opts), newSyncCmd(opts))
	return root
}

// client builds a lookup client from configuration, with flags taking
// precedence over configured values.
func (o *globalOptions) client(cmd *cobra.Command) (*pricelookup.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	lookupCfg := pricelookup.Config{
		BaseURL:   cfg.Lookup.BaseURL,
		Timeout:   cfg.Lookup.Timeout,
		UserAgent: cfg.Lookup.UserAgent,
	}
	if cmd.Flags().Changed("base-url") {
		lookupCfg.BaseURL = o.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		lookupCfg.Timeout = o.timeout
	}
	return pricelookup.NewClient(lookupCfg)
}

func (o *globalOptions) logger() *zap.Logger {
	if !o.debug {
		return zap.NewNop()
	}
	log, err := logger.New(logger.Config{Level: "debug", Format: "console", Output: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return log
}
