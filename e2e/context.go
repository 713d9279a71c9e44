package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"checkout/internal/audit"
	checkoutHandler "checkout/internal/checkout/handler"
	checkoutMetrics "checkout/internal/checkout/metrics"
	checkoutService "checkout/internal/checkout/service"
	"checkout/internal/checkout/store"
	"checkout/internal/platform/metrics"
)

// TestContext drives the checkout API for one scenario. It talks to
// E2E_BASE_URL when set and to an in-process server otherwise.
type TestContext struct {
	baseURL   string
	server    *httptest.Server
	client    *http.Client
	status    int
	body      []byte
	sessionID string
	Audit     *audit.InMemoryStore
}

// NewTestContext prepares a context; call Close when the scenario ends.
func NewTestContext() *TestContext {
	tc := &TestContext{client: &http.Client{}}
	if url := os.Getenv("E2E_BASE_URL"); url != "" {
		tc.baseURL = strings.TrimRight(url, "/")
		return tc
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	tc.Audit = audit.NewInMemoryStore()
	svc := checkoutService.New(store.NewInMemoryStore(),
		checkoutService.WithLogger(logger),
		checkoutService.WithMetrics(checkoutMetrics.New(reg)),
		checkoutService.WithAuditPublisher(audit.NewPublisher(tc.Audit)),
	)
	r := chi.NewRouter()
	checkoutHandler.New(svc, logger, metrics.New(reg), 0).Register(r)

	tc.server = httptest.NewServer(r)
	tc.baseURL = tc.server.URL
	return tc
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

func (tc *TestContext) Do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) StatusCode() int {
	return tc.status
}

func (tc *TestContext) SessionID() string {
	return tc.sessionID
}

func (tc *TestContext) SetSessionID(id string) {
	tc.sessionID = id
}

// ResponseField walks a dotted path through the last JSON response.
func (tc *TestContext) ResponseField(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.body, &doc); err != nil {
		return nil, fmt.Errorf("response is not json: %w", err)
	}
	cur := doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not an object", path, key)
		}
		if cur, ok = obj[key]; !ok {
			return nil, fmt.Errorf("%s: missing %q in %s", path, key, tc.body)
		}
	}
	return cur, nil
}
