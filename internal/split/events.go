// Package split partitions a root order's line items by owning vendor and
// materializes one sub-order per vendor, computing the platform commission
// for each vendor's share. The whole workflow is idempotent: re-running it on
// the same root converges to the same child set.
package split

import "context"

// EventType names a workflow event emitted for downstream sync hooks.
type EventType string

const (
	// EventSplitStarting fires once per split invocation, before allocation.
	EventSplitStarting EventType = "order.split.starting"
	// EventParentAssigned fires when the single-vendor fast path annotates
	// the root in place instead of creating children.
	EventParentAssigned EventType = "order.split.parent_assigned"
	// EventSubOrderCreated fires once per created child order.
	EventSubOrderCreated EventType = "order.split.sub_order_created"
	// EventSplitCompleted fires after all children exist.
	EventSplitCompleted EventType = "order.split.completed"
)

// Event carries the identifiers downstream hooks need. VendorID is set on
// EventParentAssigned and EventSubOrderCreated; VendorCount on
// EventSplitCompleted.
type Event struct {
	Type        EventType
	ParentID    string
	SubOrderID  string
	VendorID    string
	VendorCount int
}

// Dispatcher receives workflow events. Dispatch must not block on external
// I/O; it runs inside the split transaction.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, ev Event)

func (f DispatcherFunc) Dispatch(ctx context.Context, ev Event) { f(ctx, ev) }
