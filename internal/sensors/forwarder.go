// server/internal/sensors/forwarder.go
package sensors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"equipment-dispatch-api-server/internal/metrics"
	"equipment-dispatch-api-server/internal/models"

	"go.uber.org/zap"
)

// Source tags alerts produced by this service.
const Source = "sensors-api"

// ErrMissingAlertFields rejects an alert without message or severity.
var ErrMissingAlertFields = errors.New("required fields: message, severity")

// BuildAlert validates req and stamps it for forwarding.
func BuildAlert(req models.AlertRequest, now time.Time) (models.Alert, error) {
	if req.Message == "" || req.Severity == "" {
		return models.Alert{}, ErrMissingAlertFields
	}
	well := req.WellID
	if well == "" {
		well = models.UnknownWell
	}
	return models.Alert{
		Timestamp: now.Format(models.TimestampLayout),
		Message:   req.Message,
		Severity:  req.Severity,
		WellID:    well,
		Source:    Source,
	}, nil
}

// Forwarder posts alerts to the events service.
type Forwarder struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewForwarder targets baseURL/event with a bounded client timeout.
func NewForwarder(baseURL string, timeout time.Duration, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("forwarder"),
	}
}

// Forward sends alert and returns the events service's response body.
// A non-2xx answer is an error.
func (f *Forwarder) Forward(ctx context.Context, alert models.Alert) (json.RawMessage, error) {
	body, err := f.post(ctx, alert)
	if err != nil {
		metrics.AlertsForwarded.WithLabelValues("failed").Inc()
		f.logger.Error("failed to forward alert", zap.String("well_id", alert.WellID), zap.Error(err))
		return nil, err
	}
	metrics.AlertsForwarded.WithLabelValues("success").Inc()
	f.logger.Info("alert forwarded", zap.String("well_id", alert.WellID), zap.String("severity", alert.Severity))
	return body, nil
}

func (f *Forwarder) post(ctx context.Context, alert models.Alert) (json.RawMessage, error) {
	payload, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/event", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read events service response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("events service returned status %d", resp.StatusCode)
	}

	if !json.Valid(raw) {
		quoted, _ := json.Marshal(string(raw))
		return quoted, nil
	}
	return raw, nil
}
