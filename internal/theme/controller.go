package theme

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"themekit/internal/debug"
	"themekit/internal/persist"
)

type settings struct {
	defaultID       string
	persistOnChange bool
	policy          InitPolicy
	loadOnInit      bool
	onInit          CustomInit
	legacyInit      bool
	onChanged       func(prev, next Theme)
	store           persist.Store
	logger          *log.Logger
	onError         func(error)
}

// Option configures New.
type Option func(*settings)

// WithDefault selects the initial theme. It must be registered.
func WithDefault(id string) Option {
	return func(s *settings) {
		s.defaultID = id
	}
}

// WithPersistOnChange writes every selection change to the store in the
// background. Write failures are reported, never returned.
func WithPersistOnChange(enabled bool) Option {
	return func(s *settings) {
		s.persistOnChange = enabled
	}
}

// WithInitPolicy sets the construction-time loading strategy.
func WithInitPolicy(p InitPolicy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithLoadOnInit is the flag form of WithInitPolicy(LoadFromStore{}).
// Combining it with WithOnInit fails construction.
func WithLoadOnInit(enabled bool) Option {
	return func(s *settings) {
		s.loadOnInit = enabled
		s.legacyInit = true
	}
}

// WithOnInit is the handler form of WithInitPolicy(CustomInit(handler)).
func WithOnInit(handler CustomInit) Option {
	return func(s *settings) {
		s.onInit = handler
		s.legacyInit = true
	}
}

// WithOnChanged registers the hook called with the old and new theme before
// subscribers are notified.
func WithOnChanged(fn func(prev, next Theme)) Option {
	return func(s *settings) {
		s.onChanged = fn
	}
}

// WithStore sets the persistence backend. The default is an in-memory store.
func WithStore(store persist.Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithLogger overrides the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithErrorHandler receives errors that are reported rather than returned:
// failed background writes and panicking subscribers. It may be called from
// a background goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}

// Controller owns a theme registry and the current selection.
//
// Mutating methods are meant to be driven from one goroutine. Internal state
// is still guarded because the initial load and background writes run on
// their own goroutines. Subscribers and the OnChanged hook run without the
// lock held, so they may call back into the controller.
//
// Changes are delivered one at a time in the order they were applied. A
// change made while another is being delivered, from a subscriber or from
// the initial load, is queued and delivered right after it.
type Controller struct {
	mu         sync.Mutex
	registry   *Registry
	current    Theme
	generation uint64
	subs       subscriberList
	providerID string
	scopeKey   string

	queue      []queuedChange
	delivering bool

	persistOnChange bool
	onChanged       func(prev, next Theme)
	store           persist.Store
	logger          *log.Logger
	onError         func(error)

	initial  *PendingLoad
	bg       sync.WaitGroup
	writeMu  sync.Mutex
	writeSeq atomic.Uint64
}

// New builds a controller for providerID over themes. It fails without
// returning a controller when the registry or options are invalid.
func New(providerID string, themes []Theme, opts ...Option) (*Controller, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	if err := validateProviderID(providerID); err != nil {
		return nil, err
	}
	policy, err := resolvePolicy(&s)
	if err != nil {
		return nil, err
	}
	registry, def, err := NewRegistry(themes, s.defaultID)
	if err != nil {
		return nil, err
	}

	store := s.store
	if store == nil {
		store = persist.NewMemoryStore()
	}

	c := &Controller{
		registry:        registry,
		current:         def,
		providerID:      providerID,
		scopeKey:        persist.ScopeKey(providerID),
		persistOnChange: s.persistOnChange,
		onChanged:       s.onChanged,
		store:           store,
		logger:          s.logger,
		onError:         s.onError,
	}

	switch p := policy.(type) {
	case LoadFromStore:
		c.initial = c.startLoad(true)
	case CustomInit:
		c.initial = c.startLoad(false)
		p(c, c.initial)
	}
	return c, nil
}

func resolvePolicy(s *settings) (InitPolicy, error) {
	if s.legacyInit {
		if s.policy != nil {
			return nil, conflictingInitPolicyError("init policy given both explicitly and through load-on-init/on-init options")
		}
		return InitPolicyFrom(s.loadOnInit, s.onInit)
	}
	switch p := s.policy.(type) {
	case nil:
		return NoInit{}, nil
	case CustomInit:
		if p == nil {
			return NoInit{}, nil
		}
	}
	return s.policy, nil
}

func validateProviderID(id string) error {
	if err := validateIdentifier("provider id", id); err != nil {
		return configurationError(err.Error())
	}
	if strings.Contains(id, ".") {
		return configurationError(fmt.Sprintf("provider id %q must not contain dots", id))
	}
	return nil
}

// queuedChange is a change waiting for delivery, with the subscribers that
// were registered when it was applied.
type queuedChange struct {
	change Change
	subs   []subscriber
}

// origin describes where a transition comes from.
type origin struct {
	// persist writes the selection when persist-on-change is enabled.
	persist bool
	// loaded marks a selection read from the store. It is dropped when
	// another selection was applied after generation was observed, or when
	// ctx has ended.
	loaded     bool
	generation uint64
	ctx        context.Context
}

var fromHost = origin{persist: true}

// startLoad reads the persisted selection in the background. With apply set
// the result is resolved and applied before the pending load completes.
func (c *Controller) startLoad(apply bool) *PendingLoad {
	ctx, cancel := context.WithCancel(context.Background())
	// The barrier waits out a swap that checked ctx before it was cancelled.
	pending := newPendingLoad(cancel, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
	})
	generation := c.generation

	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		defer cancel()

		id, ok, err := c.store.Load(ctx, c.scopeKey)
		if apply {
			c.resolveLoaded(ctx, generation, id, ok, err)
		}
		pending.finish(id, ok, err)
	}()
	return pending
}

// resolveLoaded applies a persisted id. Missing, stale and unreadable
// selections keep the current theme, as does a read overtaken by another
// selection.
func (c *Controller) resolveLoaded(ctx context.Context, generation uint64, id string, ok bool, err error) {
	if err != nil {
		c.log().Debug("read saved theme", "scope", c.scopeKey, "error", err)
		return
	}
	if !ok {
		return
	}
	o := origin{loaded: true, generation: generation, ctx: ctx}
	if err := c.transition(id, o); err != nil {
		c.log().Debug("ignoring saved theme", "scope", c.scopeKey, "theme", id, "error", err)
	}
}

// InitialLoad returns the pending construction-time read, or nil when the
// controller was built with NoInit.
func (c *Controller) InitialLoad() *PendingLoad {
	return c.initial
}

// SetTheme selects id. Selecting the current theme does nothing.
//
// Subscribers have been notified when SetTheme returns, unless it was called
// while a change is being delivered; the new change is then delivered right
// after the current one.
func (c *Controller) SetTheme(id string) error {
	return c.transition(id, fromHost)
}

// NextTheme advances to the following theme in registry order, wrapping
// after the last, and returns the new selection.
func (c *Controller) NextTheme() Theme {
	c.mu.Lock()
	next, _ := c.registry.Next(c.current.ID)
	c.mu.Unlock()

	if err := c.transition(next, fromHost); err != nil {
		c.log().Debug("advance theme", "theme", next, "error", err)
	}
	return c.Theme()
}

// transition is the single swap-and-notify path for selection changes.
func (c *Controller) transition(id string, o origin) error {
	c.mu.Lock()
	if o.loaded {
		if o.ctx != nil && o.ctx.Err() != nil {
			c.mu.Unlock()
			return o.ctx.Err()
		}
		if o.generation != c.generation {
			c.mu.Unlock()
			c.log().Debug("saved theme superseded", "scope", c.scopeKey, "theme", id)
			return nil
		}
	}
	next, ok := c.registry.Lookup(id)
	if !ok {
		c.mu.Unlock()
		return unknownIDError(id)
	}
	if next.ID == c.current.ID {
		c.mu.Unlock()
		return nil
	}
	old := c.current
	c.current = next
	c.generation++
	write := o.persist && c.persistOnChange
	var seq uint64
	if write {
		seq = c.writeSeq.Add(1)
	}
	c.enqueue(Change{Kind: ChangeSelection, Old: old, New: next})
	c.mu.Unlock()

	c.log().Debug("theme changed", "scope", c.scopeKey, "from", old.ID, "to", next.ID)
	c.deliver()
	if write {
		c.persistAsync(seq, next.ID)
	}
	return nil
}

// persistAsync writes id unless a newer selection has superseded it by the
// time the write runs.
func (c *Controller) persistAsync(seq uint64, id string) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		if seq != c.writeSeq.Load() {
			return
		}
		if err := c.store.Save(context.Background(), c.scopeKey, id); err != nil {
			c.report(persistenceError(fmt.Sprintf("save theme %s for %s", id, c.scopeKey), err),
				"persist theme selection", "scope", c.scopeKey, "theme", id)
		}
	}()
}

// LoadThemeFromDisk applies the persisted selection. Nothing saved, an id
// that is no longer registered, or an unreadable store leave the selection
// unchanged and return nil; only context cancellation is returned. A
// selection made while the read was in flight is kept.
func (c *Controller) LoadThemeFromDisk(ctx context.Context) error {
	c.mu.Lock()
	generation := c.generation
	c.mu.Unlock()

	id, ok, err := c.store.Load(ctx, c.scopeKey)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.resolveLoaded(ctx, generation, id, ok, err)
	return nil
}

// SaveThemeToDisk writes the current selection. Store failures are returned
// with code persistence_failed rather than as the store's own error value;
// errors.Unwrap and errors.Is reach the store's error.
func (c *Controller) SaveThemeToDisk(ctx context.Context) error {
	id := c.CurrentThemeID()
	if err := c.store.Save(ctx, c.scopeKey, id); err != nil {
		return persistenceError(fmt.Sprintf("save theme %s for %s", id, c.scopeKey), err)
	}
	return nil
}

// ForgetSavedTheme clears the persisted selection. Clearing when nothing is
// saved succeeds; store failures are returned wrapped as in SaveThemeToDisk.
func (c *Controller) ForgetSavedTheme(ctx context.Context) error {
	if err := c.store.Clear(ctx, c.scopeKey); err != nil {
		return persistenceError(fmt.Sprintf("clear saved theme for %s", c.scopeKey), err)
	}
	return nil
}

// AddTheme appends t and notifies subscribers.
func (c *Controller) AddTheme(t Theme) error {
	c.mu.Lock()
	if err := c.registry.Add(t); err != nil {
		c.mu.Unlock()
		return err
	}
	c.enqueue(Change{Kind: ChangeRegistry, Old: c.current, New: c.current})
	c.mu.Unlock()

	c.deliver()
	return nil
}

// RemoveTheme removes id and notifies subscribers. The current theme cannot
// be removed.
func (c *Controller) RemoveTheme(id string) error {
	c.mu.Lock()
	if id == c.current.ID {
		c.mu.Unlock()
		return activeThemeRemovalError(id)
	}
	if err := c.registry.Remove(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.enqueue(Change{Kind: ChangeRegistry, Old: c.current, New: c.current})
	c.mu.Unlock()

	c.deliver()
	return nil
}

// HasTheme reports whether id is registered.
func (c *Controller) HasTheme(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Has(id)
}

// AllThemes returns a copy of the registry in insertion order.
func (c *Controller) AllThemes() []Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.All()
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.clone()
}

// CurrentThemeID returns the id of the current theme.
func (c *Controller) CurrentThemeID() string {
	return c.Theme().ID
}

// ProviderID returns the id scoping this controller's persistence.
func (c *Controller) ProviderID() string {
	return c.providerID
}

// ScopeKey returns the store key derived from the provider id.
func (c *Controller) ScopeKey() string {
	return c.scopeKey
}

// Subscribe registers fn for every change. Subscribers run synchronously in
// subscription order.
func (c *Controller) Subscribe(fn func(Change)) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs.add(fn)
}

// Unsubscribe removes a subscription and reports whether it was present.
func (c *Controller) Unsubscribe(s Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs.remove(s)
}

// SubscriberCount reports the number of active subscriptions.
func (c *Controller) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs.len()
}

// Wait blocks until the initial load and background writes have finished.
func (c *Controller) Wait() {
	c.bg.Wait()
}

// enqueue records change for delivery to the current subscribers. The
// caller holds c.mu.
func (c *Controller) enqueue(change Change) {
	c.queue = append(c.queue, queuedChange{change: change, subs: c.subs.snapshot()})
}

// deliver drains the queue unless another call is already draining it, in
// which case that call delivers whatever was queued here.
func (c *Controller) deliver() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.dispatch(next)
		c.mu.Lock()
	}
	c.queue = nil
	c.delivering = false
	c.mu.Unlock()
}

func (c *Controller) dispatch(q queuedChange) {
	change := q.change
	if change.Kind == ChangeSelection && c.onChanged != nil {
		c.guard("on-changed hook", func() { c.onChanged(change.Old, change.New) })
	}
	for _, s := range q.subs {
		c.guard("subscriber "+s.handle.String(), func() { s.fn(change) })
	}
}

// guard runs fn, turning a panic into a reported error so one misbehaving
// observer cannot stop the fan-out.
func (c *Controller) guard(observer string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.report(observerPanicError(observer, r), "theme observer panicked", "observer", observer)
		}
	}()
	fn()
}

func (c *Controller) report(err error, msg string, keyvals ...any) {
	c.log().Warn(msg, append(keyvals, "error", err)...)
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller) log() *log.Logger {
	if c.logger != nil {
		return c.logger
	}
	return debug.Logger()
}
