package split

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/pkg/lock"
)

// splitLockTTL bounds how long a crashed split can hold its advisory lock.
const splitLockTTL = 30 * time.Second

// ParentSync receives the root order's status on the single-vendor fast path
// when the caller asks for it (REST checkout channel). It matches the sync
// projection store's upsert so the same implementation serves both.
type ParentSync interface {
	UpsertStatus(ctx context.Context, orderID string, status order.Status) error
}

// Options tune a single split invocation.
type Options struct {
	// SyncParent mirrors the REST checkout channel: on the single-vendor
	// fast path the root's status row is written to the sync projection.
	// An explicit caller flag instead of an ambient environment check.
	SyncParent bool
}

// Orchestrator runs the split workflow once per "order persisted" host event.
type Orchestrator struct {
	orders     order.Store
	catalog    order.Catalog
	factory    *Factory
	events     Dispatcher
	parentSync ParentSync  // nil-safe: fast-path sync skipped if nil
	locker     lock.Locker // nil-safe: storage-level transactionality still converges
}

func NewOrchestrator(orders order.Store, catalog order.Catalog, factory *Factory, events Dispatcher, parentSync ParentSync, locker lock.Locker) *Orchestrator {
	return &Orchestrator{
		orders:     orders,
		catalog:    catalog,
		factory:    factory,
		events:     events,
		parentSync: parentSync,
		locker:     locker,
	}
}

// Split partitions the root order's line items by vendor and materializes the
// result. Idempotent: a root that was already split has its children deleted
// and rebuilt, so duplicate invocations (checkout retries, redelivered
// webhooks, admin edits) converge to the same child set.
//
// The flag write and all child creations share one transaction; a partial
// failure leaves the parent un-flagged so the next attempt takes the clean
// rebuild path. Workflow events other than the starting marker are held back
// until the transaction commits, so subscribers never see rolled-back
// children.
func (s *Orchestrator) Split(ctx context.Context, parentID string, opts Options) (err error) {
	ctx, span := otel.Tracer("split").Start(ctx, "order.split",
		trace.WithAttributes(attribute.String("order.id", parentID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "order-split:"+parentID, splitLockTTL)
		if err != nil {
			return fmt.Errorf("acquire split lock for %s: %w", parentID, err)
		}
		defer release()
	}

	slog.InfoContext(ctx, "new order, init sub order", "order_id", parentID)
	s.events.Dispatch(ctx, Event{Type: EventSplitStarting, ParentID: parentID})

	var pending []Event
	err = s.orders.Transact(ctx, func(st order.Store) error {
		parent, err := st.Get(ctx, parentID)
		if err != nil {
			return fmt.Errorf("load parent order %s: %w", parentID, err)
		}

		// A flagged parent means a previous attempt got this far: tear the
		// stale children down before rebuilding.
		wasFlagged := parent.Meta.HasSubOrder
		if wasFlagged {
			children, err := st.Children(ctx, parent.ID)
			if err != nil {
				return fmt.Errorf("list children of %s: %w", parent.ID, err)
			}
			for _, child := range children {
				if err := st.Delete(ctx, child.ID); err != nil {
					return fmt.Errorf("delete stale sub order %s: %w", child.ID, err)
				}
			}
			parent.Meta.HasSubOrder = false
		}

		alloc, err := Allocate(ctx, s.catalog, parent.Items)
		if err != nil {
			return err
		}

		// A fee- or shipping-only order resolves to no vendor at all. There
		// is nothing to split, and the parent must stay un-flagged so it is
		// never mistaken for a split root later.
		if len(alloc) == 0 {
			slog.InfoContext(ctx, "no vendor lines, skipping split", "order_id", parent.ID)
			if wasFlagged {
				parent.UpdatedAt = time.Now().UTC()
				if err := st.Save(ctx, parent); err != nil {
					return fmt.Errorf("unflag parent %s: %w", parent.ID, err)
				}
			}
			return nil
		}

		if len(alloc) == 1 {
			slog.InfoContext(ctx, "single vendor, skipping sub order", "order_id", parent.ID)
			evs, err := s.fastPath(ctx, st, parent, alloc, opts)
			if err != nil {
				return err
			}
			pending = append(pending, evs...)
			return nil
		}

		parent.Meta.HasSubOrder = true
		parent.UpdatedAt = time.Now().UTC()
		if err := st.Save(ctx, parent); err != nil {
			return fmt.Errorf("flag parent %s: %w", parent.ID, err)
		}

		slog.InfoContext(ctx, "starting sub orders", "order_id", parent.ID, "vendors", len(alloc))

		for vendorID, items := range alloc {
			child, err := s.factory.CreateSubOrder(ctx, st, parent, vendorID, items)
			if err != nil {
				return err
			}
			pending = append(pending, Event{
				Type:       EventSubOrderCreated,
				ParentID:   parent.ID,
				SubOrderID: child.ID,
				VendorID:   vendorID,
			})
		}

		slog.InfoContext(ctx, "completed sub orders", "order_id", parent.ID)
		pending = append(pending, Event{
			Type:        EventSplitCompleted,
			ParentID:    parent.ID,
			VendorCount: len(alloc),
		})
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range pending {
		s.events.Dispatch(ctx, ev)
	}
	return nil
}

func (s *Orchestrator) fastPath(ctx context.Context, st order.Store, parent *order.Order, alloc Allocation, opts Options) ([]Event, error) {
	var vendorID string
	var items []order.LineItem
	for v, li := range alloc {
		vendorID, items = v, li
	}

	if err := s.factory.AnnotateParent(ctx, st, parent, vendorID, items); err != nil {
		return nil, err
	}

	if opts.SyncParent && s.parentSync != nil {
		if err := s.parentSync.UpsertStatus(ctx, parent.ID, order.Normalize(parent.Status)); err != nil {
			return nil, fmt.Errorf("sync single-vendor parent %s: %w", parent.ID, err)
		}
	}

	return []Event{{
		Type:     EventParentAssigned,
		ParentID: parent.ID,
		VendorID: vendorID,
	}}, nil
}
