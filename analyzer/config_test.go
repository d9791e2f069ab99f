package analyzer

import (
	"testing"

	"github.com/seo-optimizer/auditor/config"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()

	a := NewFromConfig(&cfg, nil)
	if a.insight != nil {
		t.Error("insight provider should be unset when insight is disabled")
	}
	if a.sampleChars != cfg.Insight.SampleChars {
		t.Errorf("sampleChars = %d, want %d", a.sampleChars, cfg.Insight.SampleChars)
	}

	cfg.Insight.Enabled = true
	cfg.Insight.APIKey = "sk-test"
	if a := NewFromConfig(&cfg, nil); a.insight == nil {
		t.Error("insight provider should be set when enabled with a key")
	}

	cfg.Insight.APIKey = "  "
	if a := NewFromConfig(&cfg, nil); a.insight != nil {
		t.Error("a blank key must not produce a provider")
	}
}
