package analyzer

import (
	"log/slog"

	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/fetcher"
	"github.com/seo-optimizer/auditor/insight"
)

// NewFromConfig builds an Auditor with a fetcher configured from cfg.Fetch
// and, when cfg.Insight.Enabled is set, an OpenAI insight provider.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Auditor {
	opts := Options{
		Fetcher: fetcher.New(fetcher.Options{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      cfg.Fetch.Timeout.Duration,
			MaxRedirects: cfg.Fetch.MaxRedirects,
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		}),
		Logger:             logger,
		InsightSampleChars: cfg.Insight.SampleChars,
	}

	if cfg.Insight.Enabled {
		// A nil *OpenAIProvider must not end up in the interface.
		if p := insight.NewOpenAIProvider(insight.OpenAIOptions{
			APIKey:  cfg.Insight.APIKey,
			BaseURL: cfg.Insight.BaseURL,
			Model:   cfg.Insight.Model,
			Timeout: cfg.Insight.Timeout.Duration,
		}); p != nil {
			opts.Insight = p
		}
	}

	return New(opts)
}
