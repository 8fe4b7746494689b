package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/breaker"
)

// DefaultTimeout bounds every outbound call.
const DefaultTimeout = 2 * time.Second

// response carries the raw downstream answer. Only transport errors and 5xx
// statuses are absorbed by the breaker; any other status flows through here.
type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// baseClient issues HTTP requests to one downstream through its circuit
// breaker and logs every exchange.
type baseClient struct {
	name     string // breaker key and display name, e.g. "Flight Service"
	baseURL  string
	http     *http.Client
	breakers *breaker.Registry
	logger   *log.Entry
}

func newBaseClient(name, baseURL string, timeout time.Duration, breakers *breaker.Registry, logger *log.Entry) *baseClient {
	if logger == nil {
		logger = log.New().WithField("component", "client")
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &baseClient{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		breakers: breakers,
		logger:   logger.WithField("service", name),
	}
}

// request builds and sends one call. On transport failure, timeout or a 5xx
// the breaker records a failure and the caller receives the downstream's
// unavailability signal; an open breaker short-circuits without network I/O.
func (c *baseClient) request(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	c.logger.WithFields(log.Fields{
		"method":  method,
		"url":     u,
		"headers": headers,
		"body":    string(payload),
	}).Info("outgoing request")

	result, err := c.breakers.Execute(c.name, func() (any, error) {
		return c.send(ctx, method, u, headers, payload)
	})
	if err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"method": method,
			"url":    u,
		}).Error("request failed")
		return nil, err
	}

	resp := result.(*response)
	c.logger.WithFields(log.Fields{
		"method": method,
		"url":    u,
		"status": resp.StatusCode,
		"body":   truncate(resp.Body, 200),
	}).Info("incoming response")
	return resp, nil
}

func (c *baseClient) send(ctx context.Context, method, u string, headers map[string]string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("downstream returned %d", resp.StatusCode)
	}
	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
