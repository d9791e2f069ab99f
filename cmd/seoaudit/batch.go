package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seo-optimizer/auditor/analyzer"
)

// Auditor runs a single page audit.
type Auditor interface {
	Audit(ctx context.Context, url string) (*analyzer.AuditReport, error)
}

func newBatchCmd(global *globalOptions) *cobra.Command {
	out := &outputOptions{}
	var (
		concurrency int
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [flags] FILE",
		Short: "Audit every URL listed in a file, one per line",
		Long: `Audit every URL listed in FILE. Blank lines and lines starting with # are
skipped. Each URL is audited on its own; links are not followed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(out.format))
			if err := validateFormat(format); err != nil {
				return err
			}
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1 (got %d)", concurrency)
			}

			fh, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open URL list: %w", err)
			}
			urls, err := readURLs(fh)
			fh.Close()
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs found in %s", args[0])
			}

			auditor, err := newAuditor(global)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if !noProgress {
				bar = newProgressBar(cmd.ErrOrStderr(), len(urls))
			}

			reports, failures := runBatch(cmd.Context(), auditor, urls, concurrency, bar)
			if bar != nil {
				bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}

			if err := writeReports(cmd.OutOrStdout(), format, out.output, reports); err != nil {
				return err
			}
			printFailures(cmd.ErrOrStderr(), failures)
			if len(failures) > 0 {
				return errAuditsFailed
			}
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Maximum number of concurrent audits")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar")
	return cmd
}

// readURLs returns one URL per non-blank line, skipping # comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Auditing pages[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// runBatch audits urls with at most concurrency audits in flight. Reports
// and failures keep the order of urls.
func runBatch(ctx context.Context, auditor Auditor, urls []string, concurrency int, bar *progressbar.ProgressBar) ([]*analyzer.AuditReport, []failure) {
	results := make([]*analyzer.AuditReport, len(urls))
	errs := make([]error, len(urls))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			// Failures are collected, not returned, so one bad URL does not
			// cancel the rest of the batch.
			results[i], errs[i] = auditor.Audit(ctx, url)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	var (
		reports  []*analyzer.AuditReport
		failures []failure
	)
	for i, url := range urls {
		if errs[i] != nil {
			failures = append(failures, newFailure(url, errs[i]))
			continue
		}
		reports = append(reports, results[i])
	}
	return reports, failures
}
