// Package fetcher retrieves the raw employee payload from its sources:
// the remote table API or a spreadsheet export of it.
package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/session"
)

type HTTPFetcher struct {
	conf   core.FetchConfig
	client *http.Client
	retry  RetryConfig
	logger core.Logger
}

var _ session.Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(conf core.FetchConfig, logger core.Logger) *HTTPFetcher {
	retry := DefaultRetryConfig()
	if conf.MaxAttempts > 0 {
		retry.MaxAttempts = conf.MaxAttempts
	}
	if conf.RetryBackoff > 0 {
		retry.BaseDelay = conf.RetryBackoff
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPFetcher{
		conf:   conf,
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
	}
}

// Fetch posts the source credentials and returns the payload found at the configured path.
// A response without that path yields nil, which normalizes to no records.
func (f *HTTPFetcher) Fetch(ctx context.Context) (interface{}, error) {
	creds, err := json.Marshal(map[string]string{"username": f.conf.Username, "password": f.conf.Password})
	if err != nil {
		return nil, errors.Wrap(err, "encoding credentials")
	}

	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.conf.URL, bytes.NewReader(creds))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip, br")
		return req, nil
	}
	onRetry := func(attempt int, err error) {
		f.logger.Warn(fmt.Sprintf("fetch: retrying %s (attempt %d)", f.conf.URL, attempt), err)
	}

	_, body, err := doWithRetry(ctx, f.client, buildReq, f.retry, onRetry)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", f.conf.URL)
	}

	doc, err := employee.DecodeJSON(body)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding payload: %s", snippet(body, 300))
	}
	if f.conf.PayloadPath == "" {
		return doc, nil
	}
	payload, ok := employee.Lookup(doc, f.conf.PayloadPath)
	if !ok {
		f.logger.Warn(fmt.Sprintf("fetch: no payload at %q", f.conf.PayloadPath))
		return nil, nil
	}
	return payload, nil
}

func decodedBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "reading gzip body")
		}
		return zr, nil
	}
	return resp.Body, nil
}
