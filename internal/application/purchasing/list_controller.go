package purchasing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/domain/purchasing"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/scheduler"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
)

// DefaultDebounce is the quiet window applied to filter changes
const DefaultDebounce = 300 * time.Millisecond

// ErrControllerClosed is returned by operations on a closed controller
var ErrControllerClosed = errors.New("list controller is closed")

// ListControllerConfig configures a ListController
type ListControllerConfig struct {
	Debounce time.Duration
	PageSize int
	// ClientPaging fetches the full filtered set and slices it locally
	// instead of relying on the backend's X-Total-Count header.
	ClientPaging bool
	Metrics      *telemetry.Metrics
	Logger       *zap.Logger
}

// ListState is a snapshot of what the list shows.
// Version increases with every change; listeners can ignore snapshots older
// than one they have already seen.
type ListState struct {
	Rows       []purchasing.PurchaseOrder
	TotalCount int
	IsLoading  bool
	LastError  error
	Version    uint64
}

// ErrorKind classifies LastError
func (s ListState) ErrorKind() shared.ErrorKind {
	return shared.KindOf(s.LastError)
}

// ListController owns the filter, sort and page of the order list and keeps
// exactly one query current. Results of superseded queries are discarded.
// It is safe for concurrent use.
type ListController struct {
	gateway      purchasing.Gateway
	debouncer    *scheduler.Debouncer
	clientPaging bool
	metrics      *telemetry.Metrics
	logger       *zap.Logger

	mu        sync.Mutex
	filter    purchasing.Filter
	state     ListState
	token     uint64
	cancel    context.CancelFunc
	closed    bool
	listeners map[int]func(ListState)
	nextID    int

	delivered atomic.Uint64
	inflight  sync.WaitGroup
}

// NewListController creates a controller with an unfiltered first page.
// No query is issued until Refresh or a state change.
func NewListController(gateway purchasing.Gateway, cfg ListControllerConfig) *ListController {
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ListController{
		gateway:      gateway,
		debouncer:    scheduler.NewDebouncer(cfg.Debounce),
		clientPaging: cfg.ClientPaging,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger.Named("order_list"),
		filter:       purchasing.DefaultFilter(cfg.PageSize),
		state:        ListState{Rows: []purchasing.PurchaseOrder{}},
		listeners:    make(map[int]func(ListState)),
	}
}

// Filter returns the current filter
func (c *ListController) Filter() purchasing.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// State returns a snapshot of the list state
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TotalPages returns max(1, ceil(totalCount / pageSize))
func (c *ListController) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return shared.TotalPages(c.state.TotalCount, c.filter.PageSize)
}

// DisplayRange returns the 1-based row range of the current page
func (c *ListController) DisplayRange() shared.DisplayRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return shared.NewDisplayRange(c.filter.Page, c.filter.PageSize, c.state.TotalCount)
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that caused the change and must not block.
// The returned function unregisters it.
func (c *ListController) Subscribe(fn func(ListState)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SetFilter merges patch into the filter, resets to page 1 and schedules a
// debounced reload. A patch that leaves the filter unchanged does nothing.
func (c *ListController) SetFilter(patch purchasing.FilterPatch) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.filter.Merge(patch)
	next.Page = 1
	next = next.Clamped()
	if next == c.filter {
		c.mu.Unlock()
		return
	}
	c.filter = next
	c.mu.Unlock()

	c.debouncer.Trigger(c.issue)
}

// SetSort changes the sort and schedules a debounced reload
func (c *ListController) SetSort(field string, direction purchasing.SortDirection) {
	c.SetFilter(purchasing.FilterPatch{
		SortField:     &field,
		SortDirection: &direction,
	})
}

// ClearFilters resets search, status and date range and schedules a reload
func (c *ListController) ClearFilters() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.filter.ClearCriteria()
	next.Page = 1
	if next == c.filter {
		c.mu.Unlock()
		return
	}
	c.filter = next
	c.mu.Unlock()

	c.debouncer.Trigger(c.issue)
}

// SetPage moves to page n (clamped to at least 1) and queries immediately.
// Moving to the current page does nothing.
func (c *ListController) SetPage(n int) {
	n = shared.ClampPage(n)

	c.mu.Lock()
	if c.closed || n == c.filter.Page {
		c.mu.Unlock()
		return
	}
	c.filter.Page = n
	c.mu.Unlock()

	c.debouncer.Cancel()
	c.issue()
}

// Refresh re-issues the query for the current filter and page immediately
func (c *ListController) Refresh() {
	c.debouncer.Cancel()
	c.issue()
}

// Delete removes an order through the gateway. On success the list is
// refreshed; on failure the rows are left as they are and the error is both
// recorded in LastError and returned.
func (c *ListController) Delete(ctx context.Context, id int64) error {
	if c.isClosed() {
		return ErrControllerClosed
	}

	if err := c.gateway.DeletePurchaseOrder(ctx, id); err != nil {
		c.logger.Warn("delete failed", zap.Int64("id", id), zap.Error(err))
		c.mu.Lock()
		c.state.LastError = err
		c.state.Version++
		c.mu.Unlock()
		c.notify()
		return err
	}

	c.logger.Debug("order deleted", zap.Int64("id", id))
	c.Refresh()
	return nil
}

// Wait blocks until no query is in flight. Pending debounced reloads are not
// waited for.
func (c *ListController) Wait() {
	c.inflight.Wait()
}

// Close stops pending reloads, cancels the in-flight query and waits for it
// to finish. Listeners are dropped.
func (c *ListController) Close() {
	c.debouncer.Stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.listeners = make(map[int]func(ListState))
	c.mu.Unlock()

	c.inflight.Wait()
}

func (c *ListController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// issue starts a new current query, superseding any earlier one
func (c *ListController) issue() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.token++
	token := c.token
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	filter := c.filter
	c.state.IsLoading = true
	c.state.Version++
	c.inflight.Add(1)
	c.mu.Unlock()

	c.metrics.ListQuery(telemetry.QueryIssued)
	c.notify()

	go c.run(ctx, cancel, token, filter)
}

func (c *ListController) run(ctx context.Context, cancel context.CancelFunc, token uint64, filter purchasing.Filter) {
	defer c.inflight.Done()
	defer cancel()

	result, err := c.gateway.ListPurchaseOrders(ctx, purchasing.ListQuery{
		Filter:  filter,
		Unpaged: c.clientPaging,
	})

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		c.metrics.ListQuery(telemetry.QueryStale)
		c.logger.Debug("dropping stale list result", zap.Uint64("token", token))
		return
	}
	c.cancel = nil

	var rows []purchasing.PurchaseOrder
	if err == nil {
		rows = result.Orders
		if c.clientPaging {
			rows = shared.SlicePage(result.Orders, filter.Page, filter.PageSize)
		}
		last := shared.TotalPages(result.Total, filter.PageSize)
		if len(rows) == 0 && result.Total > 0 && filter.Page > last && c.filter.Page == filter.Page {
			// the page emptied, e.g. after deleting its only row
			c.filter.Page = last
			c.mu.Unlock()
			c.logger.Debug("page past the end, moving to last page",
				zap.Int("page", filter.Page),
				zap.Int("last_page", last),
			)
			c.issue()
			return
		}
	}

	c.state.IsLoading = false
	c.state.Version++
	if err != nil {
		c.state.Rows = []purchasing.PurchaseOrder{}
		c.state.TotalCount = 0
		c.state.LastError = err
	} else {
		if rows == nil {
			rows = []purchasing.PurchaseOrder{}
		}
		c.state.Rows = rows
		c.state.TotalCount = result.Total
		c.state.LastError = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.metrics.ListQuery(telemetry.QueryFailed)
		c.logger.Warn("list query failed",
			zap.String("kind", string(shared.KindOf(err))),
			zap.Error(err),
		)
	} else {
		c.metrics.ListQuery(telemetry.QueryApplied)
	}
	c.notify()
}

func (c *ListController) snapshotLocked() ListState {
	s := c.state
	s.Rows = make([]purchasing.PurchaseOrder, len(c.state.Rows))
	for i, row := range c.state.Rows {
		s.Rows[i] = row.Clone()
	}
	return s
}

// notify delivers the latest snapshot to listeners, skipping it when a newer
// one has already gone out
func (c *ListController) notify() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	state := c.snapshotLocked()
	listeners := make([]func(ListState), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for {
		last := c.delivered.Load()
		if state.Version <= last {
			return
		}
		if c.delivered.CompareAndSwap(last, state.Version) {
			break
		}
	}
	for _, fn := range listeners {
		fn(state)
	}
}
