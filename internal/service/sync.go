package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/model"
	q "github.com/iliyamo/swapi-mirror/internal/queue"
)

// ErrInvalidResource rejects a resource name outside the six known kinds.
var ErrInvalidResource = errors.New("invalid resource")

// Pager drains every upstream item of a kind.  *swapi.Client satisfies it.
type Pager interface {
	Drain(ctx context.Context, kind model.Kind) ([]json.RawMessage, error)
}

// ResourceWriter upserts rows on external_id.
type ResourceWriter interface {
	Upsert(ctx context.Context, kind model.Kind, rows []model.Row) (int, error)
}

// EventPublisher receives a notification after each successful sync.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, ev q.SyncCompletedEvent) error
}

// SyncResult reports one sync run.
type SyncResult struct {
	Resource      model.Kind `json:"resource"`
	TotalUpstream int        `json:"total_upstream"`
	TotalUpserted int        `json:"total_upserted"`
}

// Synchronizer mirrors upstream collections into the local tables.  Rows
// are inserted or replaced, never deleted.
type Synchronizer struct {
	pager  Pager
	store  ResourceWriter
	events EventPublisher
	now    func() time.Time
}

// NewSynchronizer wires a synchronizer.  events may be nil.
func NewSynchronizer(pager Pager, store ResourceWriter, events EventPublisher) *Synchronizer {
	return &Synchronizer{pager: pager, store: store, events: events, now: time.Now}
}

// Sync drains resource from upstream and upserts every item.  An unknown
// resource fails with ErrInvalidResource before any network or store
// access.  An upstream or projection failure leaves the table untouched.
func (s *Synchronizer) Sync(ctx context.Context, resource string) (SyncResult, error) {
	kind, ok := model.ParseKind(resource)
	if !ok {
		return SyncResult{}, ErrInvalidResource
	}
	started := s.now()

	items, err := s.pager.Drain(ctx, kind)
	if err != nil {
		return SyncResult{}, err
	}

	rows := make([]model.Row, 0, len(items))
	for i, raw := range items {
		row, err := Project(kind, raw)
		if err != nil {
			return SyncResult{}, fmt.Errorf("project %s item %d: %w", kind, i, err)
		}
		rows = append(rows, row)
	}

	n, err := s.store.Upsert(ctx, kind, rows)
	if err != nil {
		return SyncResult{}, fmt.Errorf("upsert %s: %w", kind, err)
	}

	res := SyncResult{Resource: kind, TotalUpstream: len(items), TotalUpserted: n}
	took := s.now().Sub(started)
	logger.Infof("sync %s: upstream=%d upserted=%d took=%s", kind, res.TotalUpstream, res.TotalUpserted, took)
	s.publish(ctx, res, took)
	return res, nil
}

// SyncAll synchronizes every kind in order.  A failing kind is logged and
// skipped; the joined errors are returned alongside the results that did
// succeed.
func (s *Synchronizer) SyncAll(ctx context.Context) ([]SyncResult, error) {
	var (
		results []SyncResult
		errs    []error
	)
	for _, kind := range model.Kinds {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := s.Sync(ctx, string(kind))
		if err != nil {
			logger.Errorf("sync %s failed: %v", kind, err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (s *Synchronizer) publish(ctx context.Context, res SyncResult, took time.Duration) {
	if s.events == nil {
		return
	}
	ev := q.SyncCompletedEvent{
		Resource:      string(res.Resource),
		TotalUpstream: res.TotalUpstream,
		TotalUpserted: res.TotalUpserted,
		DurationMS:    took.Milliseconds(),
		SyncedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishSyncCompleted(ctx, ev); err != nil {
		logger.Warningf("sync %s: event not published: %v", res.Resource, err)
	}
}
