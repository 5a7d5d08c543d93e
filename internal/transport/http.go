package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPRequester is the production Requester. All requests share one client
// with a hardened TLS configuration.
type HTTPRequester struct {
	client *http.Client
}

func NewHTTPRequester() *HTTPRequester {
	return &HTTPRequester{client: newSecureHTTPClient()}
}

// newSecureHTTPClient returns an http.Client with a custom TLS configuration.
// Callers reuse this instead of re-defining the TLS settings everywhere.
func newSecureHTTPClient() *http.Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS13,

		// CipherSuites applies only to TLS 1.0–1.2
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		},
	}

	transport := &http.Transport{
		TLSClientConfig:   tlsConfig,
		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
	}
}

// SendRequest starts fetching url in the background and returns immediately.
// The request fails when the timeout expires before the body is read.
func (r *HTTPRequester) SendRequest(url string, timeout time.Duration) Request {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	req := &httpRequest{url: url, cancel: cancel}
	go req.run(ctx, r.client)
	return req
}

type httpRequest struct {
	url    string
	cancel context.CancelFunc

	mu   sync.Mutex
	done bool
	body []byte
	err  error
}

func (q *httpRequest) run(ctx context.Context, client *http.Client) {
	body, err := fetch(ctx, client, q.url)
	q.mu.Lock()
	q.body = body
	q.err = err
	q.done = true
	q.mu.Unlock()
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (q *httpRequest) IsDone() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.done
}

func (q *httpRequest) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

func (q *httpRequest) Bytes() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.body
}

func (q *httpRequest) Text() string {
	return string(q.Bytes())
}

func (q *httpRequest) Close() {
	q.cancel()
}
