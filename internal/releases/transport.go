// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TransportOptions configures the HTTP client shared by the lister and the
// downloader during one run.
type TransportOptions struct {
	// UseProxy enables HTTPProxy/HTTPSProxy. When false, no proxy is used,
	// not even one from the environment.
	UseProxy   bool
	HTTPProxy  string
	HTTPSProxy string
	// HeaderTimeout bounds the wait for response headers after the request
	// is sent. Reading the body is never cut off, so a slow but progressing
	// archive download always completes. Zero means no limit.
	HeaderTimeout time.Duration
}

// NewHTTPClient builds the *http.Client for a run. Proxies are chosen per
// request by URL scheme.
func NewHTTPClient(opts TransportOptions) (*http.Client, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("default transport is %T, not *http.Transport", http.DefaultTransport)
	}
	tr := base.Clone()
	tr.Proxy = nil
	tr.ResponseHeaderTimeout = opts.HeaderTimeout

	if opts.UseProxy {
		httpProxy, err := parseProxyURL(opts.HTTPProxy)
		if err != nil {
			return nil, fmt.Errorf("http proxy: %w", err)
		}
		httpsProxy, err := parseProxyURL(opts.HTTPSProxy)
		if err != nil {
			return nil, fmt.Errorf("https proxy: %w", err)
		}
		tr.Proxy = schemeProxy(httpProxy, httpsProxy)
	}

	return &http.Client{Transport: tr}, nil
}

// schemeProxy selects httpsProxy for https requests and httpProxy otherwise.
// A nil URL means a direct connection.
func schemeProxy(httpProxy, httpsProxy *url.URL) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" {
			return httpsProxy, nil
		}
		return httpProxy, nil
	}
}

func parseProxyURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing %q: proxy URL needs a scheme and host", raw)
	}
	return u, nil
}
