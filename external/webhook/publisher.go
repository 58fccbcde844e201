package webhook

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/greenloop/recycle-league/internal/platform/logging"
	"github.com/greenloop/recycle-league/internal/platform/resilience"
)

var errTransient = crerr.New("webhook transient failure")

type Config struct {
	Endpoint       string
	Token          string
	Timeout        time.Duration
	Retries        int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher delivers domain events to a configured HTTP endpoint. Delivery
// is best effort: transient failures are retried a bounded number of times
// and repeated failures trip a circuit breaker so a dead endpoint cannot
// stall callers.
type Publisher struct {
	client         *http.Client
	endpoint       string
	token          string
	retries        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg Config, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint:       strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		token:          strings.TrimSpace(cfg.Token),
		retries:        cfg.Retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Publish posts one event envelope. eventID doubles as the receiver's
// deduplication key so redelivery after a retried timeout stays safe.
func (p *Publisher) Publish(ctx context.Context, eventType, eventID string, payload any) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected event",
				"event_type", eventType,
				"state", p.breaker.State(),
			)
			return fmt.Errorf("webhook endpoint is temporarily unavailable: %w", err)
		}
	}

	endpoint, err := validateHTTPEndpoint(p.endpoint)
	if err != nil {
		return crerr.Wrap(err, "invalid webhook endpoint")
	}

	envelope := map[string]any{
		"event_type": eventType,
		"event_id":   eventID,
		"payload":    payload,
	}
	body, err := sonic.Marshal(envelope)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	p.logger.InfoContext(ctx, "webhook publish",
		"event_type", eventType,
		"event_id", eventID,
		"body_preview", previewBody(body, 2048),
	)

	attempts := p.retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = p.post(ctx, endpoint, eventID, body)
		if lastErr == nil {
			p.recordCircuitResult(nil)
			return nil
		}
		if !stderrors.Is(lastErr, errTransient) {
			break
		}
	}

	p.recordCircuitResult(lastErr)
	return lastErr
}

func (p *Publisher) post(ctx context.Context, endpoint, eventID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Id", eventID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post webhook endpoint=%s: %v", errTransient, endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(raw))
	if isRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: post webhook status=%d endpoint=%s body=%s", errTransient, resp.StatusCode, endpoint, detail)
	}
	return fmt.Errorf("post webhook status=%d endpoint=%s body=%s", resp.StatusCode, endpoint, detail)
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func validateHTTPEndpoint(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func previewBody(body []byte, max int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if max > 0 && len(body) > max {
		_, _ = buf.Write(body[:max])
		_, _ = buf.WriteString("...(truncated)")
	} else {
		_, _ = buf.Write(body)
	}

	return buf.String()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
