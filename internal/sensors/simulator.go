// server/internal/sensors/simulator.go
package sensors

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"equipment-dispatch-api-server/internal/models"
)

// ReadingKey is the cache key of the current simulated reading.
const ReadingKey = "sensor-data"

const (
	wellCount        = 10
	criticalFraction = 0.2
)

// Simulator produces random well telemetry.
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewSimulator returns a simulator drawing from src, or from a time-seeded source when src is nil.
func NewSimulator(src rand.Source) *Simulator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1)
	}
	return &Simulator{rnd: rand.New(src), now: time.Now}
}

// Reading generates one snapshot: temperature 20-70 celsius, pressure 50-150 bar,
// and a one in five chance of a critical status.
func (s *Simulator) Reading() models.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.SensorStatusNormal
	temperature := s.rnd.Float64()*50 + 20
	pressure := s.rnd.Float64()*100 + 50
	well := s.rnd.IntN(wellCount) + 1
	if s.rnd.Float64() < criticalFraction {
		status = models.SensorStatusCritical
	}

	return models.SensorReading{
		Timestamp:   s.now().Format(models.TimestampLayout),
		WellID:      fmt.Sprintf("WELL_%d", well),
		Temperature: models.Measurement{Value: fmt.Sprintf("%.2f", temperature), Unit: "celsius"},
		Pressure:    models.Measurement{Value: fmt.Sprintf("%.2f", pressure), Unit: "bar"},
		Status:      status,
	}
}

// Store is the cache the readings go through.
type Store interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool
}

// Readings serves the current reading, regenerating it once the cached one expires.
type Readings struct {
	store Store
	sim   *Simulator
	ttl   time.Duration
}

func NewReadings(store Store, sim *Simulator, ttl time.Duration) *Readings {
	return &Readings{store: store, sim: sim, ttl: ttl}
}

// Current returns the cached reading when there is one, otherwise a fresh one that
// is written back for the next ttl.
func (r *Readings) Current(ctx context.Context) (reading models.SensorReading, cached bool) {
	if r.store.GetJSON(ctx, ReadingKey, &reading) {
		return reading, true
	}
	reading = r.sim.Reading()
	r.store.SetJSON(ctx, ReadingKey, reading, r.ttl)
	return reading, false
}
