package calcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gradecalc/gradeform/internal/domain/grade"
	"github.com/gradecalc/gradeform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the calculation server client.
type ClientConfig struct {
	// BaseURL is the server origin, e.g. window.location.origin in the browser
	BaseURL string

	// Timeout is the HTTP request timeout (0 = none)
	Timeout time.Duration

	// Jar keeps the session cookie between requests outside the browser.
	// A fresh in-memory jar is used when nil.
	Jar http.CookieJar

	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables request/response debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults. The page itself never
// times out a calculation, so neither does the default client.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// ServerError is an error the calculation server reported in its response body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("calculation server error (status %d): %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, shared.ErrExternalService) match server-reported errors.
func (e *ServerError) Is(target error) bool {
	return target == shared.ErrExternalService
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the calculation server. Every call is a single attempt.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	mapper     *Mapper
}

// NewClient creates a new calculation server client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList
		config.Jar, _ = cookiejar.New(nil)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Jar:       config.Jar,
			Transport: config.Transport,
		},
		logger: config.Logger,
		mapper: NewMapper(),
	}
}

type requestIDKey struct{}

// WithRequestID attaches the ID sent as X-Request-ID by calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATION
// ══════════════════════════════════════════════════════════════════════════════

// Calculate posts the submission and returns the averages and forecasts.
//
// A response whose body carries an error yields *ServerError. A failed
// request, a body that is not JSON, or an error status without an error
// message yields an error matching shared.ErrCalcUnavailable or
// shared.ErrCalcInvalidResponse.
func (c *Client) Calculate(ctx context.Context, sub grade.Submission) (*grade.CalculationResult, error) {
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}

	var resp CalculateResponseDTO
	status, err := c.doRequest(ctx, http.MethodPost, "/calculate", c.mapper.RequestFromSubmission(sub), &resp)
	if err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}

	if msg := resp.ErrorMessage(); msg != "" {
		return nil, &ServerError{StatusCode: status, Message: msg}
	}

	if status >= 400 {
		return nil, fmt.Errorf("calculate: %w: status %d", shared.ErrCalcUnavailable, status)
	}

	return c.mapper.ResultFromDTO(&resp), nil
}

// Health checks GET /health on the calculation server.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("health: %w: status %d", shared.ErrCalcUnavailable, status)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs one HTTP request and decodes the JSON body into result
// whatever the status code. It returns the status code.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) (int, error) {
	fullURL := c.config.BaseURL + path
	requestID := requestIDFrom(ctx)

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	includeCredentials(req)

	if c.config.Debug {
		c.logger.Debug("calc api request", "method", method, "path", path, "request_id", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, errors.Join(shared.ErrTimeout, fmt.Errorf("%w: %w", shared.ErrCalcUnavailable, err))
		}
		return 0, fmt.Errorf("%w: %w", shared.ErrCalcUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read response: %w", shared.ErrCalcUnavailable, err)
	}

	c.logger.Info("calc api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency", time.Since(start).String(),
		"request_id", requestID,
	)

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %w", shared.ErrCalcInvalidResponse, err)
		}
	}

	return resp.StatusCode, nil
}
