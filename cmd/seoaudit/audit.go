package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/auditor/analyzer"
)

type outputOptions struct {
	format string
	output string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", formatText, "Output format (text, json, csv, xlsx)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write output to this file instead of stdout")
}

func newAuditCmd(global *globalOptions) *cobra.Command {
	out := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "audit [flags] URL",
		Short: "Audit a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(out.format))
			if err := validateFormat(format); err != nil {
				return err
			}

			auditor, err := newAuditor(global)
			if err != nil {
				return err
			}

			rep, err := auditor.Audit(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				printFailures(cmd.ErrOrStderr(), []failure{newFailure(args[0], err)})
				return errAuditsFailed
			}

			return writeReports(cmd.OutOrStdout(), format, out.output, []*analyzer.AuditReport{rep})
		},
	}

	out.register(cmd)
	return cmd
}
