// Command seoaudit audits web pages from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/logging"
)

const appVersion = "1.0.0"

// errAuditsFailed makes the process exit non-zero after the output was written.
var errAuditsFailed = errors.New("one or more audits failed")

type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
	insights   bool
	timeout    time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errAuditsFailed) {
			fmt.Fprintln(os.Stderr, red("Error:"), err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "seoaudit",
		Short: "Rule based SEO audits for single web pages",
		Long: `seoaudit fetches a page, scores its technical SEO, content, mobile readiness,
speed and accessibility, and prints prioritized recommendations.

Examples:
  seoaudit audit https://example.com
  seoaudit audit --format xlsx --output report.xlsx https://example.com
  seoaudit batch --concurrency 8 --format csv urls.txt`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $AUDIT_CONFIG)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&opts.noColor, "no-color", "n", false, "Disable colorized output")
	flags.BoolVar(&opts.insights, "insights", false, "Request AI insights (needs OPENAI_API_KEY)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "Fetch timeout, overrides the configured value")

	root.AddCommand(newAuditCmd(opts), newBatchCmd(opts))
	return root
}

// newAuditor loads the configuration and builds an Auditor for a CLI run.
func newAuditor(opts *globalOptions) (*analyzer.Auditor, error) {
	config.LoadEnv()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging)
	return analyzer.NewFromConfig(cfg, logger), nil
}

func applyOverrides(cfg *config.Config, opts *globalOptions) error {
	if opts.timeout < 0 {
		return fmt.Errorf("--timeout must be positive (got %s)", opts.timeout)
	}
	if opts.timeout > 0 {
		cfg.Fetch.Timeout = config.DurationOf(opts.timeout)
	}

	if opts.insights && !cfg.Insight.Enabled {
		return errors.New("--insights needs an API key, set OPENAI_API_KEY or insight.api_key")
	}
	cfg.Insight.Enabled = opts.insights

	// Logs go to stderr and stay quiet unless asked for.
	if opts.verbose {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}
	return nil
}
