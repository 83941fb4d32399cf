package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/signal"
)

// Config contains configuration for the external classifier client.
type Config struct {
	// Endpoint is the base URL of the classification service.
	Endpoint string

	// Timeout is the per-request HTTP timeout.
	// Default: 5 seconds
	Timeout time.Duration

	// MaxAttempts is the maximum number of attempts per classification,
	// including the first. Default: 3
	MaxAttempts int

	// InitialBackoff is the first retry delay. Default: 200ms
	InitialBackoff time.Duration

	// MaxBackoff caps the retry delay. Default: 2 seconds
	MaxBackoff time.Duration
}

// DefaultConfig returns the default classifier client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// labelSignalTypes maps service labels to the signal types they emit.
// Unknown labels are ignored; "safe" produces no signal.
var labelSignalTypes = map[string]string{
	"crisis":         signal.TypeLLMCrisis,
	"self_harm":      signal.TypeLLMCrisis,
	"medical_advice": signal.TypeLLMMedical,
}

// classifyRequest is the wire request to the classification service.
type classifyRequest struct {
	Text string `json:"text"`
}

// classifyResponse is the wire response from the classification service.
type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Client is the detector that wraps the external classification service.
// It is the only detector that performs I/O and the only non-deterministic
// signal source in the system.
//
// The client applies a bounded exponential-backoff retry policy. When the
// service stays unreachable for the whole retry window, Detect resolves to
// a fail-safe system_error signal instead of returning nothing: a silent
// outage must never produce a false "compliant" verdict.
type Client struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a classifier client.
func New(config *Config, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Endpoint == "" {
		return nil, fmt.Errorf("classifier endpoint cannot be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger.With("component", "detector.classifier"),
	}, nil
}

// Name returns the detector name.
func (c *Client) Name() string { return "external-classifier" }

// Detect sends the transcript to the classification service and converts
// the returned label into a signal. On persistent failure it returns the
// fail-safe system_error signal and no error.
func (c *Client) Detect(ctx context.Context, conv *conversation.Conversation) ([]signal.Signal, error) {
	operation := func() (*classifyResponse, error) {
		return c.classify(ctx, conv.FullText())
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialBackoff
	b.MaxInterval = c.config.MaxBackoff

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.config.MaxAttempts)),
	)
	if err != nil {
		c.logger.Error("classification service unavailable, emitting fail-safe signal",
			"error", err,
			"max_attempts", c.config.MaxAttempts,
		)
		return []signal.Signal{failSafeSignal(err)}, nil
	}

	sigType, ok := labelSignalTypes[resp.Label]
	if !ok {
		c.logger.Debug("classifier returned no actionable label",
			"label", resp.Label,
			"confidence", resp.Confidence,
		)
		return nil, nil
	}

	return []signal.Signal{{
		Type:       sigType,
		Source:     signal.SourceLLM,
		Confidence: resp.Confidence,
		Metadata: signal.Metadata{
			Context: fmt.Sprintf("classifier label %q", resp.Label),
		},
	}}, nil
}

// classify performs a single classification request.
func (c *Client) classify(ctx context.Context, text string) (*classifyResponse, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, httpResp.Body)
		return nil, fmt.Errorf("classifier returned status %d", httpResp.StatusCode)
	}

	var resp classifyResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return nil, fmt.Errorf("classifier returned confidence %v out of range", resp.Confidence)
	}

	return &resp, nil
}

// Health probes the classification service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("classifier health check failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier health check returned status %d", resp.StatusCode)
	}
	return nil
}

// failSafeSignal builds the HIGH-confidence system_error signal emitted
// when the service is unreachable.
func failSafeSignal(cause error) signal.Signal {
	return signal.Signal{
		Type:       signal.TypeSystemError,
		Source:     signal.SourceLLM,
		Confidence: 1.0,
		Metadata: signal.Metadata{
			Context: fmt.Sprintf("classification service unavailable: %v", cause),
		},
	}
}
