// Package insight produces optional natural-language commentary for an audit.
package insight

import "context"

// Request is the page summary handed to a provider.
type Request struct {
	URL             string
	BodySample      string
	Title           string
	MetaDescription string
}

// Result is a provider reply. Data is only meaningful when Success is true.
type Result struct {
	Success bool
	Data    map[string]any
}

// Provider generates insights for a page.
type Provider interface {
	AnalyzeSEO(ctx context.Context, req Request) (Result, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, req Request) (Result, error)

func (f ProviderFunc) AnalyzeSEO(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
