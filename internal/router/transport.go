package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/routerctl/internal/soap"
	"github.com/muurk/routerctl/internal/version"
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 4 << 20

// ErrResponseTooLarge is returned for bodies over maxResponseSize
var ErrResponseTooLarge = errors.New("response body too large")

// Transport sends requests to the router and returns the raw response.
// An error means the exchange itself failed; a response with a failure
// code is not an error at this layer.
type Transport interface {
	Get(ctx context.Context, url string) (*soap.RawResponse, error)
	Post(ctx context.Context, url, action, body string) (*soap.RawResponse, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	HTTPClient *http.Client
}

// NewHTTPTransport creates a transport whose requests are bounded by timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Get performs a plain GET, used for the unauthenticated info page.
func (t *HTTPTransport) Get(ctx context.Context, url string) (*soap.RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	return t.do(req)
}

// Post sends a SOAP envelope with the SOAPAction header set to action.
func (t *HTTPTransport) Post(ctx context.Context, url, action, body string) (*soap.RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	req.Header.Set("SOAPAction", action)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	// The router firmware closes idle keep-alive connections without notice
	req.Close = true

	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) (*soap.RawResponse, error) {
	req.Header.Set("User-Agent", version.UserAgent())

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseSize)
	}

	return &soap.RawResponse{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
