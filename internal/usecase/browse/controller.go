// Package browse drives a search session. It turns queries and navigation
// actions into catalog fetches, keeps the persisted page state consistent,
// and hands result lists to the active presentation through its own
// reconciliation engine.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"books-search/internal/common/pagination"
	"books-search/internal/domain/entity"
	"books-search/internal/repository"
	"books-search/internal/usecase/estimate"
	"books-search/internal/usecase/reconcile"
	"books-search/internal/usecase/settings"
)

// ImageCache is the shared bitmap cache cleared on every new query.
type ImageCache interface {
	Clear()
}

// Config holds the controller's collaborators.
type Config struct {
	Catalog repository.CatalogRepository
	// Prober is used for page-bound probes that cannot be replayed. When nil,
	// Catalog is used if it implements repository.CatalogProber.
	Prober   repository.CatalogProber
	Store    *settings.Store
	Runner   reconcile.Runner
	Images   ImageCache
	Identity reconcile.Identity
	Logger   *slog.Logger
}

type slot struct {
	engine  *reconcile.Engine
	surface Surface
	fresh   bool // surface has not received any rows yet
}

// Controller is the pagination state machine of one search session.
//
// Submit, Navigate and Reload do their settings writes on the caller's
// goroutine and return once the fetch is scheduled. Results, restores and
// errors arrive later through the attached Surface.
type Controller struct {
	catalog   repository.CatalogRepository
	store     *settings.Store
	replay    *estimate.ReplayProber
	estimator *estimate.Estimator
	runner    reconcile.Runner
	images    ImageCache
	identity  reconcile.Identity
	filter    *settings.ReloadFilter
	logger    *slog.Logger

	baseCtx     context.Context
	baseCancel  context.CancelFunc
	unsubscribe func()

	opMu sync.Mutex // serializes Submit, Navigate and Reload
	// writeMu covers every generation change together with the page state
	// writes that belong to it. Order: writeMu, deliverMu, mu.
	writeMu   sync.Mutex
	deliverMu sync.Mutex // serializes surface callbacks

	mu         sync.Mutex
	state      State
	query      string
	generation uint64
	cancel     context.CancelFunc
	slots      [2]slot
	active     PresentationKind
	attached   bool
	records    []*entity.Book
	page       PageState
	closed     bool
}

// NewController creates a controller and subscribes it to settings changes.
// Call Close to release the subscription.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("browse: catalog is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("browse: settings store is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("browse: runner is required")
	}
	prober := cfg.Prober
	if prober == nil {
		p, ok := cfg.Catalog.(repository.CatalogProber)
		if !ok {
			return nil, errors.New("browse: catalog cannot probe and no prober was given")
		}
		prober = p
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		catalog:  cfg.Catalog,
		store:    cfg.Store,
		replay:   estimate.NewReplayProber(prober),
		runner:   cfg.Runner,
		images:   cfg.Images,
		identity: cfg.Identity,
		filter:   settings.NewReloadFilter(nil),
		logger:   logger,
	}
	c.estimator = estimate.NewEstimator(c.replay, logger)

	for _, kind := range []PresentationKind{KindList, KindGrid} {
		engine, err := reconcile.NewEngine(kind.String(), cfg.Identity, cfg.Runner, logger)
		if err != nil {
			return nil, fmt.Errorf("browse: %w", err)
		}
		c.slots[kind].engine = engine
	}

	c.baseCtx, c.baseCancel = context.WithCancel(context.Background())
	c.unsubscribe = cfg.Store.Subscribe(c.onSettingsChanged)
	return c, nil
}

// Submit starts a search for query. A query that differs from the last one,
// ignoring case, resets the page state to page 1 and clears the displayed
// results and the image cache first. Any fetch in flight is superseded.
func (c *Controller) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return &entity.ValidationError{Field: "query", Message: "must not be empty"}
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.isClosed() {
		return ErrClosed
	}

	last, err := c.store.String(ctx, settings.KeyLastSearchQuery)
	if err != nil {
		return fmt.Errorf("read last query: %w", err)
	}
	isNew := !strings.EqualFold(last, query)

	c.writeMu.Lock()
	gen, session := c.begin(query)
	if isNew {
		if err := c.resetForNewQuery(ctx, query); err != nil {
			c.writeMu.Unlock()
			c.fail(gen, err)
			return err
		}
		pagination.RecordRequest("submit", 1)
	}
	c.writeMu.Unlock()

	c.logger.Info("search submitted",
		slog.String("query", query),
		slog.Bool("new_query", isNew))
	return c.dispatch(session, gen, query)
}

// Navigate moves to another page of the current query. page is used only by
// ActionJump. Returns ErrBusy while a fetch is in flight and
// ErrPageOutOfRange when the target is outside [1, highest known page].
func (c *Controller) Navigate(ctx context.Context, action Action, page int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	closed, state, query := c.closed, c.state, c.query
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if state.busy() {
		return ErrBusy
	}

	query, err := c.resolveQuery(ctx, query)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ps, err := c.store.PaginationState(ctx)
	if err != nil {
		return fmt.Errorf("read page state: %w", err)
	}

	target := action.target(ps.Current, ps.Highest, page)
	if target < 1 || target > ps.Highest {
		return fmt.Errorf("%w: %s leads to page %d, pages are 1..%d",
			ErrPageOutOfRange, action, target, ps.Highest)
	}

	// lastDisplayedPage は必ず startIndex より先に書く
	if err := c.store.SetSilently(ctx,
		settings.IntEntry(settings.KeyLastDisplayedPage, ps.Current),
		settings.IntEntry(settings.KeyStartIndex, target),
	); err != nil {
		return fmt.Errorf("save page state: %w", err)
	}

	gen, session := c.begin(query)
	pagination.RecordRequest(action.String(), target)
	c.logger.Info("page navigation",
		slog.String("query", query),
		slog.String("action", action.String()),
		slog.Int("from", ps.Current),
		slog.Int("page", target),
		slog.Int("highest", ps.Highest))
	return c.dispatch(session, gen, query)
}

// Reload fetches the current page of the current query again, superseding
// any fetch in flight.
func (c *Controller) Reload(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	closed, query := c.closed, c.query
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	query, err := c.resolveQuery(ctx, query)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	gen, session := c.begin(query)
	c.writeMu.Unlock()
	c.logger.Info("reloading results", slog.String("query", query))
	return c.dispatch(session, gen, query)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the query of the session, or "" before the first search.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Records returns the list last delivered to a surface.
func (c *Controller) Records() []*entity.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Pagination reads the persisted page state with its button enablement.
func (c *Controller) Pagination(ctx context.Context) (PageState, error) {
	ps, err := c.store.PaginationState(ctx)
	if err != nil {
		return PageState{}, err
	}
	return newPageState(ps.Current, ps.Highest), nil
}

// Attach registers p's surface for delivery. A surface that replaces another
// one of the same kind receives the full list with its next delivery. If p is
// the active kind, the current results are delivered to it.
func (c *Controller) Attach(p Presentation) error {
	return c.attach(p, false)
}

// SetPresentation attaches p and makes its kind the active one. The current
// results are delivered to it through its own engine.
func (c *Controller) SetPresentation(p Presentation) error {
	return c.attach(p, true)
}

func (c *Controller) attach(p Presentation, activate bool) error {
	if p.surface == nil {
		return errors.New("browse: presentation has no surface")
	}

	c.deliverMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.deliverMu.Unlock()
		return ErrClosed
	}
	s := &c.slots[p.kind]
	if s.surface != p.surface {
		s.surface = p.surface
		s.fresh = true
	}
	c.attached = true
	if activate {
		c.active = p.kind
	}
	deliverNow := c.active == p.kind
	c.mu.Unlock()
	c.deliverMu.Unlock()

	if deliverNow {
		c.syncActive()
	}
	return nil
}

// Detach drops every surface reference. Results that arrive afterwards still
// update the session but reach no surface, so a later Attach receives the
// current results in full.
func (c *Controller) Detach() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = false
	for i := range c.slots {
		c.slots[i].surface = nil
		c.slots[i].fresh = false
	}
}

// ActivePresentation returns the kind results are delivered to.
func (c *Controller) ActivePresentation() PresentationKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close cancels any fetch in flight and stops listening to settings.
// The runner is owned by the caller and is not closed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	for i := range c.slots {
		c.slots[i].engine.Detach()
	}
	c.mu.Unlock()

	c.unsubscribe()
	c.baseCancel()
}

// onSettingsChanged reloads after user-originated writes. It runs on the
// writer's goroutine, so the reload itself is handed to the runner.
func (c *Controller) onSettingsChanged(ev settings.ChangeEvent) {
	reset := ev.Key == settings.KeyResetSettings && !ev.Silent
	if !reset && !c.filter.ShouldReload(ev) {
		return
	}
	if c.isClosed() {
		return
	}
	c.logger.Debug("settings changed, reloading", slog.String("key", string(ev.Key)))
	err := c.runner.Submit(c.baseCtx, "reload", func(ctx context.Context) error {
		err := c.Reload(ctx)
		if errors.Is(err, ErrNoQuery) || errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Warn("failed to schedule reload",
			slog.String("key", string(ev.Key)),
			slog.Any("error", err))
	}
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) resolveQuery(ctx context.Context, query string) (string, error) {
	if query != "" {
		return query, nil
	}
	last, err := c.store.String(ctx, settings.KeyLastSearchQuery)
	if err != nil {
		return "", fmt.Errorf("read last query: %w", err)
	}
	if strings.TrimSpace(last) == "" {
		return "", ErrNoQuery
	}
	return last, nil
}

// begin supersedes the fetch in flight and enters Fetching. writeMu must be
// held.
func (c *Controller) begin(query string) (uint64, context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	session, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	c.query = query
	c.transitionLocked(StateFetching)
	return c.generation, session
}

func (c *Controller) dispatch(session context.Context, gen uint64, query string) error {
	err := c.runner.Submit(session, "fetch", func(ctx context.Context) error {
		return c.run(ctx, session, gen, query)
	})
	if err != nil {
		c.fail(gen, err)
		return fmt.Errorf("schedule fetch: %w", err)
	}
	return nil
}

func (c *Controller) resetForNewQuery(ctx context.Context, query string) error {
	end, err := c.store.Int(ctx, settings.KeyEndIndex)
	if err != nil {
		return fmt.Errorf("read page state: %w", err)
	}
	entries := []settings.Entry{settings.IntEntry(settings.KeyStartIndex, 1)}
	if end != 1 {
		entries = append(entries,
			settings.IntEntry(settings.KeyEndIndex, 1),
			settings.IntEntry(settings.KeyLastDisplayedPage, 1))
	}
	entries = append(entries, settings.Entry{Key: settings.KeyLastSearchQuery, Value: query})
	if err := c.store.SetSilently(ctx, entries...); err != nil {
		return fmt.Errorf("reset page state: %w", err)
	}

	c.deliverMu.Lock()
	c.mu.Lock()
	c.records = nil
	c.page = PageState{}
	c.mu.Unlock()
	c.clearDisplayedLocked()
	c.deliverMu.Unlock()

	c.replay.Forget()
	if c.images != nil {
		c.images.Clear()
	}
	return nil
}

// run fetches the requested page, following restores until the session
// settles.
func (c *Controller) run(ctx, session context.Context, gen uint64, query string) error {
	start := time.Now()
	for {
		outcome, again := c.fetchPage(ctx, session, gen, query)
		if again {
			continue
		}
		recordFetch(outcome, time.Since(start))
		if outcome == OutcomeSuperseded {
			return context.Canceled
		}
		return nil
	}
}

func (c *Controller) fetchPage(ctx, session context.Context, gen uint64, query string) (outcome string, again bool) {
	ps, err := c.store.PaginationState(ctx)
	if err != nil {
		c.fail(gen, fmt.Errorf("read page state: %w", err))
		return OutcomeFailed, false
	}
	params, err := c.store.QueryParams(ctx)
	if err != nil {
		c.fail(gen, fmt.Errorf("read query params: %w", err))
		return OutcomeFailed, false
	}
	// offset and limit travel in the query itself
	params.Del(string(settings.KeyStartIndex))
	params.Del(string(settings.KeyMaxResults))

	q := repository.CatalogQuery{
		Text:   query,
		Offset: pagination.CalculateOffset(ps.Current, ps.PageSize),
		Limit:  ps.PageSize,
		Params: params,
	}

	page, err := c.catalog.Search(ctx, q)
	if session.Err() != nil || !c.live(gen) {
		return OutcomeSuperseded, false
	}
	if err != nil {
		if errors.Is(err, repository.ErrNoConnectivity) {
			return c.networkError(gen, query, err), false
		}
		c.logger.Warn("catalog search failed, treating as no results",
			slog.String("query", query),
			slog.Int("page", ps.Current),
			slog.Any("error", err))
		page = nil
	}

	if page == nil || len(page.Records) == 0 {
		return c.noResults(ctx, gen, query, ps)
	}
	return c.display(ctx, session, gen, q, ps, page), false
}

func (c *Controller) display(ctx, session context.Context, gen uint64, q repository.CatalogQuery, ps pagination.State, page *repository.CatalogPage) string {
	c.replay.Remember(page)
	est := c.estimator.EstimateUpperBound(ctx, q, ps.PageSize,
		pagination.ToZeroBased(ps.Current), pagination.ToZeroBased(ps.Highest))

	highest := ps.Highest
	if bound := pagination.ToOneBased(est); bound > highest {
		saved, err := c.saveIfCurrent(ctx, gen, settings.IntEntry(settings.KeyEndIndex, bound))
		if !saved {
			return OutcomeSuperseded
		}
		if err != nil {
			c.logger.Warn("failed to save page bound, keeping prior value",
				slog.String("query", q.Text),
				slog.Int("highest", highest),
				slog.Int("estimate", bound),
				slog.Any("error", err))
		} else {
			highest = bound
		}
	}
	state := newPageState(ps.Current, highest)
	pagination.UpdateHighestPage(highest)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return OutcomeSuperseded
	}
	kind := c.active
	engine := c.slots[kind].engine
	c.mu.Unlock()

	err := engine.Swap(session, page.Records, func(script reconcile.Script, list []*entity.Book) {
		c.deliverList(gen, kind, state, script, list, true)
	})
	if err != nil {
		c.fail(gen, fmt.Errorf("schedule diff: %w", err))
		return OutcomeFailed
	}

	c.logger.Info("catalog page fetched",
		slog.String("query", q.Text),
		slog.Int("page", ps.Current),
		slog.Int("highest", highest),
		slog.Int("records", len(page.Records)),
		slog.Int("total_items", page.TotalItems))
	return OutcomeDisplayed
}

// deliverList runs on the engine's delivery. adopt marks a fresh fetch
// result; otherwise the list is a resync of the active surface.
func (c *Controller) deliverList(gen uint64, kind PresentationKind, ps PageState, script reconcile.Script, list []*entity.Book, adopt bool) {
	c.deliverMu.Lock()

	c.mu.Lock()
	if gen != c.generation || c.closed || (!adopt && kind != c.active) {
		c.mu.Unlock()
		c.deliverMu.Unlock()
		c.logger.Debug("result discarded, session moved on",
			slog.Uint64("generation", gen),
			slog.String("presentation", kind.String()))
		return
	}
	if adopt {
		c.records = list
		c.page = ps
		c.transitionLocked(StateDisplaying)
	}
	s := &c.slots[kind]
	surface := s.surface
	if !c.attached {
		surface = nil
	}
	if surface != nil && s.fresh {
		s.fresh = false
		full, err := reconcile.Diff(nil, list, c.identity)
		if err == nil {
			script = full
		}
	}
	resync := kind != c.active && c.attached
	c.mu.Unlock()

	if surface != nil {
		surface.OnEditScriptReady(script)
		if ps.Current > 0 {
			surface.OnPagesStateChanged(ps)
		}
	}
	c.deliverMu.Unlock()

	// the active presentation changed while the diff was running
	if resync {
		c.syncActive()
	}
}

// syncActive brings the active surface up to the current results.
func (c *Controller) syncActive() {
	c.mu.Lock()
	// a fetch in flight delivers to the active surface itself
	if c.closed || !c.attached || c.state.busy() {
		c.mu.Unlock()
		return
	}
	gen, kind, records, ps := c.generation, c.active, c.records, c.page
	engine := c.slots[kind].engine
	c.mu.Unlock()

	if records == nil && len(engine.Baseline()) == 0 {
		c.mu.Lock()
		c.slots[kind].fresh = false
		c.mu.Unlock()
		return
	}
	err := engine.Swap(c.baseCtx, records, func(script reconcile.Script, list []*entity.Book) {
		c.deliverList(gen, kind, ps, script, list, false)
	})
	if err != nil {
		c.logger.Warn("failed to schedule presentation sync",
			slog.String("presentation", kind.String()),
			slog.Any("error", err))
	}
}

func (c *Controller) noResults(ctx context.Context, gen uint64, query string, ps pagination.State) (string, bool) {
	c.replay.Forget()

	if ps.IsPristine() {
		settled := c.settle(gen, StateEmpty, func(s Surface) { s.OnEmptyResult() })
		if !settled {
			return OutcomeSuperseded, false
		}
		c.logger.Info("search returned no results", slog.String("query", query))
		return OutcomeEmpty, false
	}

	restored := ps.LastViewed
	quiet := ps.LastViewed == ps.Current && ps.LastViewed > 1
	if quiet {
		restored--
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return OutcomeSuperseded, false
	}
	c.transitionLocked(StateRestoring)
	surface := c.slots[c.active].surface
	attached := c.attached
	c.mu.Unlock()

	if !quiet && attached && surface != nil {
		c.deliverMu.Lock()
		surface.OnPageRestored(ps.Current, restored)
		c.deliverMu.Unlock()
	}
	c.logger.Info("page empty, restoring",
		slog.String("query", query),
		slog.Int("from", ps.Current),
		slog.Int("page", restored),
		slog.Int("highest", ps.Highest))

	saved, err := c.saveIfCurrent(ctx, gen,
		settings.IntEntry(settings.KeyStartIndex, restored),
		settings.IntEntry(settings.KeyEndIndex, restored),
		settings.IntEntry(settings.KeyLastDisplayedPage, restored),
	)
	if !saved {
		c.logger.Debug("restore dropped, session moved on",
			slog.String("query", query),
			slog.Int("page", restored))
		return OutcomeSuperseded, false
	}
	if err != nil {
		c.fail(gen, fmt.Errorf("restore page state: %w", err))
		return OutcomeFailed, false
	}
	return "", true
}

// saveIfCurrent writes entries only while gen is the current fetch. saved is
// false when the fetch was superseded and nothing was written.
func (c *Controller) saveIfCurrent(ctx context.Context, gen uint64, entries ...settings.Entry) (saved bool, err error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if !c.live(gen) {
		return false, nil
	}
	return true, c.store.SetSilently(ctx, entries...)
}

func (c *Controller) networkError(gen uint64, query string, err error) string {
	c.replay.Forget()
	if !c.settle(gen, StateNetworkError, func(s Surface) { s.OnNetworkError() }) {
		return OutcomeSuperseded
	}
	c.logger.Warn("catalog unreachable",
		slog.String("query", query),
		slog.Any("error", err))
	return OutcomeNetworkError
}

// settle clears the displayed results, enters to and signals the active
// surface. Returns false when gen is no longer current.
func (c *Controller) settle(gen uint64, to State, signal func(Surface)) bool {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return false
	}
	c.records = nil
	c.transitionLocked(to)
	surface := c.slots[c.active].surface
	attached := c.attached
	c.mu.Unlock()

	c.clearDisplayedLocked()
	if attached && surface != nil {
		signal(surface)
	}
	return true
}

// clearDisplayedLocked empties every engine and sends the removals to the
// surfaces that still show rows. deliverMu must be held.
func (c *Controller) clearDisplayedLocked() {
	c.mu.Lock()
	slots := c.slots
	attached := c.attached
	c.mu.Unlock()

	for _, s := range slots {
		base := s.engine.Baseline()
		s.engine.Clear()
		if len(base) == 0 || s.surface == nil || s.fresh || !attached {
			continue
		}
		script, err := reconcile.Diff(base, nil, c.identity)
		if err != nil {
			c.logger.Error("failed to compute clear script", slog.Any("error", err))
			continue
		}
		s.surface.OnEditScriptReady(script)
	}
}

func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	current := gen == c.generation
	if current {
		c.transitionLocked(StateIdle)
	}
	query := c.query
	c.mu.Unlock()
	if current {
		c.logger.Error("search session failed",
			slog.String("query", query),
			slog.Any("error", err))
	}
}

func (c *Controller) live(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation && !c.closed
}

func (c *Controller) transitionLocked(to State) {
	if c.state == to {
		return
	}
	recordTransition(c.state, to)
	c.logger.Debug("state changed",
		slog.String("from", c.state.String()),
		slog.String("state", to.String()))
	c.state = to
}
