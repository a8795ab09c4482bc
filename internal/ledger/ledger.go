// Package ledger owns the three persisted collections. Every mutation goes
// through a Ledger method, which computes the next state with a pure
// reconcile function over the latest committed state, writes the changed
// collections to the store, and only then commits them in memory.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/nhle/order-incidents/internal/logging"
	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
	"github.com/nhle/order-incidents/internal/store"
)

const moduleName = "ledger"

// State is an immutable view of the collections at one version.
type State struct {
	Version   int64
	Orders    []model.OrderLine
	Raw       []model.RawIncidentRow
	Incidents []model.Incident
}

// Ledger is the single owner of the order, raw incident and incident
// collections. It is safe for concurrent use; transitions are applied one
// at a time.
type Ledger struct {
	store store.Store
	env   reconcile.Env
	log   logrus.FieldLogger

	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(State)

	// persisting is set while this ledger writes, so the store watch can
	// tell its own writes from writes made through another ledger.
	persisting     atomic.Bool
	externalWrites atomic.Int64
	unwatch        []func()
}

var collectionKeys = []string{store.KeyOrderLines, store.KeyRawIncidents, store.KeyIncidents}

// Open loads the collections from s.
func Open(ctx context.Context, s store.Store, env reconcile.Env, logger logrus.FieldLogger) (*Ledger, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	def := reconcile.DefaultEnv()
	if env.Now == nil {
		env.Now = def.Now
	}
	if env.NewID == nil {
		env.NewID = def.NewID
	}

	orders, err := store.LoadCollection[model.OrderLine](ctx, s, store.KeyOrderLines)
	if err != nil {
		return nil, fmt.Errorf("loading order lines: %w", err)
	}
	raw, err := store.LoadCollection[model.RawIncidentRow](ctx, s, store.KeyRawIncidents)
	if err != nil {
		return nil, fmt.Errorf("loading raw incident rows: %w", err)
	}
	incidents, err := store.LoadCollection[model.Incident](ctx, s, store.KeyIncidents)
	if err != nil {
		return nil, fmt.Errorf("loading incidents: %w", err)
	}

	if err := reconcile.Validate(incidents); err != nil {
		logger.WithError(err).Warn("stored incidents violate an invariant")
	}

	revisions := logrus.Fields{}
	for _, key := range collectionKeys {
		rev, err := s.Revision(ctx, key)
		if err != nil {
			return nil, err
		}
		revisions[key] = rev
	}

	l := &Ledger{
		store: s,
		env:   env,
		log:   logger,
		state: State{Orders: orders, Raw: raw, Incidents: incidents},
		subs:  make(map[int]func(State)),
	}
	for _, key := range collectionKeys {
		l.unwatch = append(l.unwatch, s.Subscribe(key, l.watch(key)))
	}

	logger.WithFields(logrus.Fields{
		"orders":    len(orders),
		"raw_rows":  len(raw),
		"incidents": len(incidents),
		"revisions": revisions,
	}).Debug("ledger opened")

	return l, nil
}

// watch returns the store callback for key. Writes this ledger did not make
// are counted and logged; its in-memory state keeps winning on its next
// write.
func (l *Ledger) watch(key string) func([]byte) {
	return func([]byte) {
		if l.persisting.Load() {
			return
		}
		l.externalWrites.Add(1)
		l.log.WithField("key", key).Warn("collection written outside this ledger, last writer wins")
	}
}

// ExternalWrites reports how many collection writes made through the store
// by anything other than this ledger were seen since Open.
func (l *Ledger) ExternalWrites() int64 {
	return l.externalWrites.Load()
}

// Close stops watching the store. The store itself stays open.
func (l *Ledger) Close() {
	for _, fn := range l.unwatch {
		fn()
	}
	l.unwatch = nil
}

// Snapshot returns the current state. The slices are copies; incidents are
// deep-copied so callers cannot reach committed checklist storage.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

func (s State) clone() State {
	c := State{
		Version:   s.Version,
		Orders:    append([]model.OrderLine(nil), s.Orders...),
		Raw:       append([]model.RawIncidentRow(nil), s.Raw...),
		Incidents: make([]model.Incident, len(s.Incidents)),
	}
	for i, inc := range s.Incidents {
		c.Incidents[i] = inc.Clone()
	}
	return c
}

// Subscribe registers fn to receive the state after every committed
// transition. It returns a function that removes the subscription.
func (l *Ledger) Subscribe(fn func(State)) func() {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn
	return func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		delete(l.subs, id)
	}
}

func (l *Ledger) publish(s State) {
	l.subMu.Lock()
	fns := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(s.clone())
	}
}

// change is the set of collections a transition replaced. Nil fields are
// left untouched.
type change struct {
	orders    []model.OrderLine
	raw       []model.RawIncidentRow
	incidents []model.Incident
}

// apply runs fn against the latest state under the lock and, if it returns a
// change, persists and commits it. Collections are written one key at a time
// with no cross-key transaction: a failure part way leaves earlier keys
// written and the in-memory state unchanged.
func (l *Ledger) apply(ctx context.Context, op string, fn func(State) (*change, error)) error {
	l.mu.Lock()

	ch, err := fn(l.state)
	if err != nil || ch == nil {
		l.mu.Unlock()
		return err
	}

	if ch.incidents != nil {
		if err := reconcile.Validate(ch.incidents); err != nil {
			l.mu.Unlock()
			logging.LogError(l.log, moduleName, op, "validate incidents", nil, err)
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := l.persist(ctx, ch); err != nil {
		l.mu.Unlock()
		logging.LogError(l.log, moduleName, op, "persist", nil, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if ch.orders != nil {
		l.state.Orders = ch.orders
	}
	if ch.raw != nil {
		l.state.Raw = ch.raw
	}
	if ch.incidents != nil {
		l.state.Incidents = ch.incidents
	}
	l.state.Version++
	committed := l.state.clone()
	l.mu.Unlock()

	l.log.WithFields(logrus.Fields{
		"operation": op,
		"version":   committed.Version,
	}).Debug("transition committed")

	l.publish(committed)
	return nil
}

func (l *Ledger) persist(ctx context.Context, ch *change) error {
	l.persisting.Store(true)
	defer l.persisting.Store(false)

	if ch.orders != nil {
		if err := store.SaveCollection(ctx, l.store, store.KeyOrderLines, ch.orders); err != nil {
			return err
		}
	}
	if ch.raw != nil {
		if err := store.SaveCollection(ctx, l.store, store.KeyRawIncidents, ch.raw); err != nil {
			return err
		}
	}
	if ch.incidents != nil {
		if err := store.SaveCollection(ctx, l.store, store.KeyIncidents, ch.incidents); err != nil {
			return err
		}
	}
	return nil
}
