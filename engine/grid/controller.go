package grid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
)

const (
	DefaultPageSize       = 10
	DefaultSearchDebounce = 500 * time.Millisecond
	defaultCacheSize      = 16
	defaultEventBuffer    = 32
)

// ConfirmFunc asks the user to approve a destructive change
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	PageSize            int
	SearchDebounce      time.Duration
	DepartmentCacheSize int
	EventBuffer         int
}

func (o Options) withDefaults() Options {
	if !api.ValidPageSize(o.PageSize) {
		o.PageSize = DefaultPageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = DefaultSearchDebounce
	}
	if o.DepartmentCacheSize <= 0 {
		o.DepartmentCacheSize = defaultCacheSize
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = defaultEventBuffer
	}
	return o
}

// Controller owns the grid state and orchestrates every backend round-trip.
// Methods block on the network and are meant to run off the UI loop.
type Controller struct {
	svc         api.StaffService
	session     *api.Session
	departments *DepartmentCache
	search      *searchDebouncer

	// mutateMu is held from the first read of a row until the refresh that
	// follows its change, so backend changes run one at a time.
	mutateMu sync.Mutex

	mu          sync.Mutex
	tracker     *Tracker
	page        int
	pageSize    int
	totalCount  int
	sort        Sort
	criteria    Search
	phase       Phase
	seq         uint64
	loaded      bool
	deptOptions []string

	emitMu sync.RWMutex
	events chan Event
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a grid bound to a gateway and session. The context
// carries the logger and bounds debounced searches.
func NewController(ctx context.Context, svc api.StaffService, session *api.Session, opts Options) (*Controller, error) {
	if svc == nil {
		return nil, fmt.Errorf("staff service is required")
	}
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	opts = opts.withDefaults()
	cctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		svc:      svc,
		session:  session,
		tracker:  NewTracker(),
		page:     1,
		pageSize: opts.PageSize,
		events:   make(chan Event, opts.EventBuffer),
		ctx:      cctx,
		cancel:   cancel,
	}
	deps, err := NewDepartmentCache(opts.DepartmentCacheSize, svc.ListDepartments)
	if err != nil {
		cancel()
		return nil, err
	}
	c.departments = deps
	c.search = newSearchDebouncer(opts.SearchDebounce, c.runSearch)
	return c, nil
}

// Events delivers notifications. The channel is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) Session() *api.Session {
	return c.session
}

// Close cancels any pending search and stops event delivery
func (c *Controller) Close() {
	c.search.Cancel()
	c.cancel()
	c.departments.Purge()
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

func (c *Controller) publish(ev Event) {
	c.emitMu.RLock()
	defer c.emitMu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		logger.FromContext(c.ctx).Warn("grid event dropped, consumer is behind", "kind", ev.Kind.String())
	}
}

func (c *Controller) fail(err error) error {
	c.publish(Event{Kind: EventFailed, Err: err, Message: err.Error(), Snapshot: c.Snapshot()})
	return err
}

func (c *Controller) notice(msg string) {
	c.publish(Event{Kind: EventNotice, Message: msg, Snapshot: c.Snapshot()})
}

// Snapshot returns a consistent copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Rows:         c.tracker.Rows(),
		PristineRows: c.tracker.PristineRows(),
		Editing:      c.tracker.Editing(),
		Pagination:   Paginate(c.page, c.pageSize, c.totalCount),
		Sort:         c.sort,
		Search:       c.criteria,
		Phase:        c.phase,
		Viewer:       c.session.Role(),
		Loaded:       c.loaded,
	}
}

type fetchRequest struct {
	page     int
	pageSize int
	sort     Sort
	search   Search
}

func (c *Controller) requestLocked() fetchRequest {
	return fetchRequest{page: c.page, pageSize: c.pageSize, sort: c.sort, search: c.criteria}
}

func (c *Controller) load(ctx context.Context, req fetchRequest) (*api.Page, error) {
	if req.sort.Active() {
		return c.svc.FilterSort(ctx, api.SortParams{
			Column:    req.sort.Column,
			Direction: req.sort.Direction,
			PageSize:  req.pageSize,
			Page:      req.page,
		})
	}
	return c.svc.List(ctx, api.ListParams{
		SearchValue:  req.search.Value,
		SearchColumn: req.search.Column,
		PageSize:     req.pageSize,
		Page:         req.page,
	})
}

// fetch loads a position derived from the current one by change, which may
// be nil. The position is committed together with rows, pristine copies and
// total only when this request is still the latest and it succeeded.
func (c *Controller) fetch(ctx context.Context, keepEditing bool, change func(*fetchRequest)) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	c.mu.Lock()
	c.seq++
	seq := c.seq
	req := c.requestLocked()
	if change != nil {
		change(&req)
	}
	if c.phase == PhaseIdle {
		c.phase = PhaseFetching
	}
	c.mu.Unlock()

	page, err := c.load(ctx, req)

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		log.Debug("dropping stale grid response", "seq", seq, "latest", latest)
		c.publish(Event{Kind: EventStaleDropped, Seq: seq})
		return nil
	}
	if c.phase == PhaseFetching {
		c.phase = PhaseIdle
	}
	if err != nil {
		c.mu.Unlock()
		log.Warn("grid fetch failed", "page", req.page, "error", err)
		return c.fail(err)
	}
	c.page, c.pageSize, c.sort, c.criteria = req.page, req.pageSize, req.sort, req.search
	c.tracker.Load(page.Rows, keepEditing)
	c.totalCount = page.TotalCount
	c.loaded = true
	if clamped := ClampPage(c.page, TotalPages(c.totalCount, c.pageSize)); clamped != c.page {
		c.mu.Unlock()
		log.Debug("page out of range after fetch, reloading", "page", clamped)
		return c.fetch(ctx, keepEditing, func(r *fetchRequest) { r.page = clamped })
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	log.Debug("grid page loaded", "seq", seq, "page", req.page, "rows", len(snap.Rows), "total", snap.Pagination.TotalCount)
	c.publish(Event{Kind: EventFetched, Seq: seq, Snapshot: snap})
	return nil
}

// Start loads the first page
func (c *Controller) Start(ctx context.Context) error {
	return c.fetch(ctx, false, nil)
}

// Refresh reloads the current page keeping rows in edit mode
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx, true, nil)
}

// SetPage moves to page, clamped to the valid range
func (c *Controller) SetPage(ctx context.Context, page int) error {
	return c.fetch(ctx, false, func(r *fetchRequest) {
		r.page = ClampPage(page, TotalPages(c.totalCount, r.pageSize))
	})
}

func (c *Controller) FirstPage(ctx context.Context) error {
	return c.move(ctx, func(p Pagination) (int, bool) { return 1, p.CanFirst })
}

func (c *Controller) PrevPage(ctx context.Context) error {
	return c.move(ctx, func(p Pagination) (int, bool) { return p.Page - 1, p.CanPrev })
}

func (c *Controller) NextPage(ctx context.Context) error {
	return c.move(ctx, func(p Pagination) (int, bool) { return p.Page + 1, p.CanNext })
}

func (c *Controller) LastPage(ctx context.Context) error {
	return c.move(ctx, func(p Pagination) (int, bool) { return p.TotalPages, p.CanLast })
}

// move navigates only when the footer control is enabled
func (c *Controller) move(ctx context.Context, target func(Pagination) (int, bool)) error {
	c.mu.Lock()
	page, enabled := target(Paginate(c.page, c.pageSize, c.totalCount))
	c.mu.Unlock()
	if !enabled {
		return nil
	}
	return c.SetPage(ctx, page)
}

// JumpToPage handles a typed page number. Non-numeric input is ignored and
// reported as false.
func (c *Controller) JumpToPage(ctx context.Context, input string) (bool, error) {
	c.mu.Lock()
	page, ok := ParsePageInput(input, TotalPages(c.totalCount, c.pageSize))
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.SetPage(ctx, page)
}

// SetPageSize changes the page size and returns to the first page
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	if !api.ValidPageSize(size) {
		return c.fail(fmt.Errorf("%w: %d not in %v", ErrInvalidPageSize, size, api.PageSizes))
	}
	return c.fetch(ctx, false, func(r *fetchRequest) {
		r.pageSize = size
		r.page = 1
	})
}

// ToggleSort advances the ordering for column and clears any search
func (c *Controller) ToggleSort(ctx context.Context, column staff.ColumnID) error {
	if _, ok := staff.LookupColumn(column); !ok {
		return c.fail(fmt.Errorf("%w: %s", staff.ErrUnknownColumn, column))
	}
	c.search.Cancel()
	return c.fetch(ctx, false, func(r *fetchRequest) {
		r.sort = NextSort(r.sort, column)
		r.search = Search{}
	})
}

// SetSearch schedules a debounced search. It returns immediately; the fetch
// runs once typing pauses for the debounce window.
func (c *Controller) SetSearch(column staff.ColumnID, value string) {
	c.search.Schedule(Search{Column: column, Value: value})
}

func (c *Controller) runSearch(s Search) {
	if c.ctx.Err() != nil {
		return
	}
	// failures are published as events
	_ = c.fetch(c.ctx, false, func(r *fetchRequest) {
		r.search = s
		r.sort = Sort{}
		r.page = 1
	})
}

func (c *Controller) checkOpen() error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	return nil
}

func (c *Controller) checkEditor() error {
	if !c.session.Role().CanEdit() {
		return ErrReadOnly
	}
	return nil
}

// ToggleEdit flips edit mode for a row. Entering edit mode loads the
// department options, served from the session cache after the first load.
func (c *Controller) ToggleEdit(ctx context.Context, index int) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if err := c.checkEditor(); err != nil {
		return false, c.fail(err)
	}
	c.mu.Lock()
	editing, err := c.tracker.ToggleEdit(index)
	c.mu.Unlock()
	if err != nil {
		return false, c.fail(err)
	}
	if !editing {
		return false, nil
	}
	if _, err := c.Departments(ctx); err != nil {
		return true, c.fail(err)
	}
	return true, nil
}

// Departments returns the department catalog for the session
func (c *Controller) Departments(ctx context.Context) ([]staff.Department, error) {
	deps, err := c.departments.Get(ctx, c.session.Token())
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.deptOptions = DepartmentNames(deps)
	c.mu.Unlock()
	return deps, nil
}

// ReloadDepartments drops the cached catalog. When rows are in edit mode the
// catalog is fetched again right away so their selects keep their options;
// otherwise the next edit loads it. A failed reload keeps the old options.
func (c *Controller) ReloadDepartments(ctx context.Context) error {
	c.departments.Invalidate(c.session.Token())
	c.mu.Lock()
	editing := len(c.tracker.Editing()) > 0
	if !editing {
		c.deptOptions = nil
	}
	c.mu.Unlock()
	if !editing {
		return nil
	}
	if _, err := c.Departments(ctx); err != nil {
		logger.FromContext(ctx).Warn("department reload failed", "error", err)
		return c.fail(err)
	}
	return nil
}

// Cell returns the presentation of a cell of the live rows
func (c *Controller) Cell(index int, column staff.ColumnID) (CellView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, err := c.tracker.Row(index)
	if err != nil {
		return CellView{}, err
	}
	return RenderCell(row.Get(column), index, column, c.tracker.Editing(), c.session.Role(), c.deptOptions), nil
}

// EditCell changes the live copy without contacting the backend
func (c *Controller) EditCell(index int, column staff.ColumnID, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Edit(index, column, value)
}

// Revert leaves edit mode for a row, either discarding (shouldRevert) or
// accepting its unsaved edits, then refreshes from the backend.
func (c *Controller) Revert(ctx context.Context, index int, shouldRevert bool) error {
	c.mu.Lock()
	err := c.tracker.Revert(index, shouldRevert)
	if err == nil {
		c.tracker.StopEditing(index)
	}
	c.mu.Unlock()
	if err != nil {
		return c.fail(err)
	}
	return c.fetch(ctx, true, nil)
}

// CommitCell pushes one changed cell of the row identified by identifier,
// expected at index. Values equal to the pristine copy are not sent. The
// request always names the pristine identifier and the page is refreshed
// whatever the outcome. It reports whether a request was sent. A commit
// issued while another change is in flight waits for it to finish.
func (c *Controller) CommitCell(
	ctx context.Context,
	index int,
	identifier string,
	column staff.ColumnID,
	value string,
) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if err := c.checkEditor(); err != nil {
		return false, c.fail(err)
	}
	if column == staff.ColumnIdentifier {
		return false, c.fail(staff.ErrImmutableIdentifier)
	}
	if column == staff.ColumnRole && !c.session.Role().CanChangeRoles() {
		return false, c.fail(ErrForbiddenColumn)
	}
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()
	c.mu.Lock()
	index, pristine, err := c.locateLocked(index, identifier)
	if err != nil {
		c.mu.Unlock()
		return false, c.fail(err)
	}
	if !c.tracker.IsEditing(index) {
		c.mu.Unlock()
		return false, c.fail(fmt.Errorf("%w: %d", ErrNotEditing, index))
	}
	if pristine.Get(column) == value {
		c.mu.Unlock()
		logger.FromContext(ctx).Debug("skipping unchanged cell", "rut", pristine.Identifier, "column", column)
		return false, nil
	}
	if err := staff.ValidateCell(column, value); err != nil {
		c.mu.Unlock()
		return false, c.fail(err)
	}
	if err := c.tracker.Edit(index, column, value); err != nil {
		c.mu.Unlock()
		return false, c.fail(err)
	}
	update := api.CellUpdate{
		Identifier: pristine.Identifier,
		Column:     column,
		Value:      value,
		ViewerRole: c.session.Role(),
		PageSize:   c.pageSize,
		Page:       c.page,
	}
	c.mu.Unlock()
	err = c.mutateLocked(ctx, func(ctx context.Context) (string, error) {
		return c.svc.UpdateCell(ctx, update)
	})
	return true, err
}

// DeleteRow removes the row identified by identifier, expected at index,
// after confirmation. The page is refreshed even when the user declines.
func (c *Controller) DeleteRow(ctx context.Context, index int, identifier string, confirm ConfirmFunc) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if err := c.checkEditor(); err != nil {
		return false, c.fail(err)
	}
	_, row, err := c.locate(index, identifier)
	if err != nil {
		return false, c.fail(err)
	}
	ok, err := confirm(ctx, fmt.Sprintf("Delete %s (%s)?", displayName(row), row.Identifier))
	if err != nil {
		return false, c.fail(err)
	}
	if !ok {
		return false, c.Refresh(ctx)
	}
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()
	// the page may have moved while the prompt was open
	index, row, err = c.locate(index, identifier)
	if err != nil {
		return false, c.fail(err)
	}
	err = c.mutateLocked(ctx, func(ctx context.Context) (string, error) {
		if err := c.svc.DeleteRow(ctx, row.Identifier); err != nil {
			return "", err
		}
		c.mu.Lock()
		c.tracker.StopEditing(index)
		c.mu.Unlock()
		return fmt.Sprintf("%s deleted", row.Identifier), nil
	})
	return true, err
}

// PromoteRole toggles the row identified by identifier, expected at index,
// between user and admin after confirmation.
func (c *Controller) PromoteRole(ctx context.Context, index int, identifier string, confirm ConfirmFunc) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if !c.session.Role().CanChangeRoles() {
		return false, c.fail(ErrForbiddenColumn)
	}
	_, row, err := c.locate(index, identifier)
	if err != nil {
		return false, c.fail(err)
	}
	if row.Role == staff.RoleSuperAdmin {
		return false, c.fail(ErrPromoteSuperAdmin)
	}
	ok, err := confirm(ctx, PromotePrompt(row))
	if err != nil {
		return false, c.fail(err)
	}
	if !ok {
		return false, nil
	}
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()
	if _, row, err = c.locate(index, identifier); err != nil {
		return false, c.fail(err)
	}
	if row.Role == staff.RoleSuperAdmin {
		return false, c.fail(ErrPromoteSuperAdmin)
	}
	err = c.mutateLocked(ctx, func(ctx context.Context) (string, error) {
		return c.svc.PromoteRole(ctx, row.Identifier)
	})
	return true, err
}

// PromotePrompt is the confirmation wording for a role toggle
func PromotePrompt(row staff.Row) string {
	if row.Role == staff.RoleAdmin {
		return fmt.Sprintf("Remove admin rights from %s?", displayName(row))
	}
	return fmt.Sprintf("Make %s an admin?", displayName(row))
}

func displayName(row staff.Row) string {
	if name := row.FullName(); name != "" {
		return name
	}
	return row.Identifier
}

func (c *Controller) locate(index int, identifier string) (int, staff.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locateLocked(index, identifier)
}

// locateLocked finds the pristine row with identifier, trying index first.
// A row that left the current page yields ErrRowGone.
func (c *Controller) locateLocked(index int, identifier string) (int, staff.Row, error) {
	if row, err := c.tracker.Pristine(index); err == nil && row.Identifier == identifier {
		return index, row, nil
	}
	for i, row := range c.tracker.PristineRows() {
		if row.Identifier == identifier {
			return i, row, nil
		}
	}
	return -1, staff.Row{}, fmt.Errorf("%w: %s", ErrRowGone, identifier)
}

// mutateLocked runs one backend change and then reloads the current page,
// whether the change succeeded or not. The caller holds mutateMu.
func (c *Controller) mutateLocked(ctx context.Context, run func(context.Context) (string, error)) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	c.phase = PhaseMutating
	c.mu.Unlock()

	msg, err := run(ctx)

	c.mu.Lock()
	c.phase = PhaseIdle
	c.mu.Unlock()
	if err != nil {
		logger.FromContext(ctx).Warn("grid mutation failed", "error", err)
		c.fail(err) //nolint:errcheck // returned below
	} else if msg != "" {
		c.notice(msg)
	}
	refreshErr := c.fetch(ctx, true, nil)
	if err != nil {
		return err
	}
	return refreshErr
}
