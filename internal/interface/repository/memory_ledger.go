package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryScanLedger is an in-process ScanLedger for development and tests.
// It keeps the same contract as the MongoDB ledger: the check-and-insert
// for a keyed event happens under one lock, so exactly one of any set of
// concurrent submitters of the same key is accepted.
type MemoryScanLedger struct {
	mu     sync.Mutex
	keys   map[string]bool
	events []*entity.ScanEvent
}

// NewMemoryScanLedger creates an empty in-memory ledger.
func NewMemoryScanLedger() *MemoryScanLedger {
	return &MemoryScanLedger{
		keys: make(map[string]bool),
	}
}

var _ repository.ScanLedger = (*MemoryScanLedger)(nil)

// TryAccept records the event unless its dedup key is already present.
func (r *MemoryScanLedger) TryAccept(_ context.Context, event *entity.ScanEvent) (entity.AcceptStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if barcode, flightID, ok := event.DedupKey(); ok {
		key := fmt.Sprintf("%s\x00%d", barcode, flightID)
		if r.keys[key] {
			return entity.StatusDuplicate, nil
		}
		r.keys[key] = true
	}

	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	event.CreatedAt = time.Now()

	stored := *event
	r.events = append(r.events, &stored)
	return entity.StatusAccepted, nil
}

// FindByFlight returns the accepted events for a flight in insertion order.
func (r *MemoryScanLedger) FindByFlight(_ context.Context, flightID int64) ([]*entity.ScanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*entity.ScanEvent
	for _, e := range r.events {
		if e.FlightID != nil && *e.FlightID == flightID {
			copied := *e
			events = append(events, &copied)
		}
	}
	return events, nil
}

// Len reports the total number of accepted events.
func (r *MemoryScanLedger) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
