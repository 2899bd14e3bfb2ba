// server/internal/dispatch/service.go
package dispatch

import (
	"context"
	"fmt"
	"time"

	"equipment-dispatch-api-server/internal/metrics"
	"equipment-dispatch-api-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IDPrefix starts every dispatch id.
const IDPrefix = "DISPATCH_"

// Registry is the authoritative equipment lookup.
type Registry interface {
	FindByID(id string) (models.Equipment, bool)
}

// Publisher is the durable transport for dispatch events.
type Publisher interface {
	Available() bool
	Publish(ctx context.Context, event models.DispatchEvent) error
}

// ReceiptStore keeps a disposable copy of each published event.
type ReceiptStore interface {
	PutDispatchReceipt(ctx context.Context, event models.DispatchEvent) bool
}

// Notifier is told about every accepted dispatch.
type Notifier interface {
	NotifyDispatch(event models.DispatchEvent)
}

// Result is what an accepted dispatch returns.
type Result struct {
	Event         models.DispatchEvent
	Equipment     models.Equipment
	ReceiptStored bool
	State         string
}

// Service validates urgent dispatch requests, publishes them and stores a receipt.
type Service struct {
	registry  Registry
	publisher Publisher
	receipts  ReceiptStore
	notifier  Notifier
	source    string
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier registers n to hear about accepted dispatches.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the dispatch id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService wires the collaborators. source is stamped on every event.
func NewService(registry Registry, publisher Publisher, receipts ReceiptStore, source string, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		publisher: publisher,
		receipts:  receipts,
		source:    source,
		logger:    logger.Named("dispatch"),
		now:       time.Now,
		newID:     NewID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewID returns a time-ordered dispatch id such as DISPATCH_0190f3c2-....
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return IDPrefix + id.String()
}

// Dispatch runs one request through validate, transport check, publish and receipt.
// Only rejections and publish failures are returned as errors; a failed receipt
// is logged and reported in Result.ReceiptStored.
func (s *Service) Dispatch(ctx context.Context, req models.DispatchRequest) (*Result, error) {
	lc := newLifecycle(s.logger)

	if req.EquipmentID == "" {
		return nil, s.reject(ctx, lc, ErrMissingEquipmentID)
	}

	// The registry, not the cached listing, decides what can be dispatched.
	equipment, ok := s.registry.FindByID(req.EquipmentID)
	if !ok {
		return nil, s.reject(ctx, lc, fmt.Errorf("%w: %s", ErrEquipmentNotFound, req.EquipmentID))
	}
	if err := lc.fire(ctx, EventValidate); err != nil {
		return nil, err
	}

	if !s.publisher.Available() {
		return nil, s.reject(ctx, lc, ErrTransportUnavailable)
	}

	req = req.WithDefaults()
	event := models.DispatchEvent{
		ID:            s.newID(),
		Timestamp:     s.now().Format(models.TimestampLayout),
		EquipmentID:   equipment.ID,
		EquipmentName: equipment.Name,
		Message:       req.Message,
		Priority:      req.Priority,
		Status:        models.DispatchStatusDispatched,
		Source:        s.source,
	}

	start := time.Now()
	err := s.publisher.Publish(ctx, event)
	metrics.PublishLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if ferr := lc.fire(ctx, EventFail); ferr != nil {
			return nil, ferr
		}
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Error("failed to publish dispatch", zap.String("dispatch_id", event.ID), zap.Error(err))
		return nil, &PublishError{DispatchID: event.ID, Err: err}
	}
	if err := lc.fire(ctx, EventPublish); err != nil {
		return nil, err
	}

	// The dispatch is accepted from here on; nothing below can undo it.
	stored := s.receipts.PutDispatchReceipt(ctx, event)
	if !stored {
		s.logger.Warn("dispatch receipt not stored", zap.String("dispatch_id", event.ID))
	}
	if err := lc.fire(ctx, EventReceipt); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyDispatch(event)
	}

	if err := lc.fire(ctx, EventAcknowledge); err != nil {
		return nil, err
	}
	metrics.DispatchTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.logger.Info("dispatch sent",
		zap.String("dispatch_id", event.ID),
		zap.String("equipment_id", event.EquipmentID),
		zap.String("priority", event.Priority),
	)

	return &Result{
		Event:         event,
		Equipment:     equipment,
		ReceiptStored: stored,
		State:         lc.Current(),
	}, nil
}

func (s *Service) reject(ctx context.Context, lc *lifecycle, cause error) error {
	if err := lc.fire(ctx, EventReject); err != nil {
		return err
	}
	metrics.DispatchTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	s.logger.Info("dispatch rejected", zap.Error(cause))
	return cause
}
