// Package fetcher retrieves the raw markup of a single page for auditing.
package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
	DefaultMaxBodyBytes = 10 * 1024 * 1024
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Options controls HTTP fetching behaviour. Zero values fall back to the defaults above.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// Result is the markup of a fetched page and how long it took to receive.
type Result struct {
	HTML        string
	LoadTimeMs  int64
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetcher issues a single browser-like GET per page.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxRedirects int
	maxBodyBytes int64
}

// New constructs a Fetcher using the provided options.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return &Fetcher{
		client:       client,
		userAgent:    opts.UserAgent,
		timeout:      opts.Timeout,
		maxRedirects: opts.MaxRedirects,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// ValidateURL checks that rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, invalidURLError(rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalidURLError(rawURL, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, invalidURLError(rawURL, errors.New("missing host"))
	}
	return u, nil
}

// Fetch downloads rawURL. Any status below 400 counts as success; every failure
// is returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, invalidURLError(rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(err, f.timeout, f.maxRedirects)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, statusError(resp.StatusCode)
	}

	body, err := f.readBody(resp)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, transportError(err, f.timeout, f.maxRedirects)
	}
	loadTime := time.Since(start)

	contentType := resp.Header.Get("Content-Type")
	html := decodeCharset(body, contentType)
	if strings.TrimSpace(html) == "" {
		return nil, &FetchError{
			Kind:       KindOther,
			StatusCode: resp.StatusCode,
			Message:    "The page returned no content. It may be inaccessible or empty.",
			Err:        errEmptyBody,
		}
	}

	finalURL := target.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		HTML:        html,
		LoadTimeMs:  loadTime.Milliseconds(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FinalURL:    finalURL,
	}, nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	var closers []io.Closer

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, &FetchError{
			Kind:       KindOther,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("The page is too large to audit (over %d bytes).", f.maxBodyBytes),
			Err:        fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes),
		}
	}
	return body, nil
}

// decodeCharset converts the body to UTF-8 using the Content-Type header or
// the document's own charset declaration. Valid UTF-8 without a charset in
// the header is kept as is: sniffing only sees the first 1024 bytes and
// reports windows-1252 for an ASCII prefix. Undecodable bodies are returned as is.
func decodeCharset(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}
	if !hasCharsetParam(contentType) && utf8.Valid(body) {
		return string(body)
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func hasCharsetParam(contentType string) bool {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.TrimSpace(params["charset"]) != ""
}
