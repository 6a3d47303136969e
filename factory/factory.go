package factory

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/on-the-ground/apifactory/keys"
	"github.com/on-the-ground/apifactory/object"
)

// Static member names every factory starts with.
const (
	// StaticCreate holds the factory's Create method.
	StaticCreate = "create"
	// StaticFactory holds the factory's Extend method.
	StaticFactory = "factory"
)

// Entry records one built instance.
type Entry[K comparable] struct {
	Key   K
	Built timespan.TimeSpan
}

// Factory builds and memoizes instances. One key maps to one instance for
// the factory's lifetime.
type Factory[S any, K comparable] struct {
	id      string
	args    []any
	plugins Set[S, K]
	cfg     config
	logger  *zap.Logger

	core    *Core[S, K]
	statics *object.Object
	// static-tagged members, mirrored onto instances unless removeStatic
	shared []string

	// held across resolve, construct and insert when cfg.synchronized
	buildMu sync.Mutex

	mu        sync.RWMutex
	instances map[K]*object.Object
	states    map[*object.Object]S
	entries   []Entry[K]
}

// New builds a factory. Each argument is an Option, Settings, or a plugin
// argument accepted by Normalize. Core plugins and static plugins run here;
// private and public plugins run on every cache miss in Create.
func New[S any, K comparable](args ...any) (*Factory[S, K], error) {
	cfg := defaultConfig()
	var (
		pluginArgs []any
		errs       error
	)
	for i, arg := range args {
		switch a := arg.(type) {
		case Option:
			if a == nil {
				errs = multierr.Append(errs, fmt.Errorf("%w: argument %d: nil option", ErrInvalidOptionType, i))
				continue
			}
			errs = multierr.Append(errs, a(&cfg))
		case Settings:
			errs = multierr.Append(errs, a.apply(&cfg))
		default:
			pluginArgs = append(pluginArgs, arg)
		}
	}
	sets, err := NormalizeAll[S, K](pluginArgs...)
	errs = multierr.Append(errs, err)
	override, err := overrides[S, K](&cfg)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}

	f := &Factory[S, K]{
		id:        uuid.New().String(),
		args:      slices.Clone(args),
		plugins:   Combine(sets...),
		cfg:       cfg,
		instances: make(map[K]*object.Object),
		states:    make(map[*object.Object]S),
	}
	f.logger = cfg.logger.With(zap.String("factoryId", f.id))

	core := &Core[S, K]{}
	chain := []CorePlugin[S, K]{defaultCore[S, K], propertiesCore[S, K], f.cachePlugin}
	chain = append(chain, f.plugins.Core...)
	chain = append(chain, override)
	for i, plugin := range chain {
		if err := plugin(core); err != nil {
			return nil, fmt.Errorf("core plugin %d: %w", i, err)
		}
	}
	if err := core.validate(); err != nil {
		return nil, err
	}
	f.core = core

	f.statics = object.New()
	f.statics.Set(StaticCreate, f.Create)
	f.statics.Set(StaticFactory, f.Extend)
	sb := &StaticBuild[S, K]{Core: core, Statics: f.statics, Factory: f}
	vis := visibilities{}
	for i, plugin := range f.plugins.Static {
		contribution, err := plugin(sb)
		if err != nil {
			return nil, fmt.Errorf("static plugin %d: %w", i, err)
		}
		if err := vis.merge(f.statics, contribution); err != nil {
			return nil, fmt.Errorf("static plugin %d: %w", i, err)
		}
	}
	vis.strip(f.statics, cfg.removePrivate)
	f.shared = vis.tagged(f.statics, visStatic)

	f.logger.Sugar().Debugf("created factory: factoryId: %v, plugins: %v, statics: %v",
		f.id, f.plugins.Len(), f.statics)
	return f, nil
}

// Create returns the instance for the state described by args, building and
// caching it on first request.
//
// The lifecycle hook runs only for newly built instances, after they are
// cached; its error is returned unchanged and the instance stays cached.
func (f *Factory[S, K]) Create(args ...any) (*object.Object, error) {
	instance, created, err := f.resolve(args)
	if err != nil {
		return nil, err
	}
	if created {
		if err := f.core.OnCreate(instance); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// MustCreate is like Create but panics on error.
func (f *Factory[S, K]) MustCreate(args ...any) *object.Object {
	instance, err := f.Create(args...)
	if err != nil {
		panic(err)
	}
	return instance
}

func (f *Factory[S, K]) resolve(args []any) (*object.Object, bool, error) {
	if f.cfg.synchronized {
		f.buildMu.Lock()
		defer f.buildMu.Unlock()
	}
	core := f.core

	state, err := core.ParseState(args...)
	if err != nil {
		return nil, false, invalidState(err)
	}
	if !core.IsState(state) {
		f.logger.Debug("rejected state", zap.Any("state", state))
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidState, state)
	}
	key, err := core.StateKey(state)
	if err != nil {
		return nil, false, invalidState(err)
	}
	if !keys.Comparable(key) {
		return nil, false, fmt.Errorf("%w: %w: key %T holds an unhashable value", ErrInvalidState, keys.ErrUnkeyable, any(key))
	}
	if instance, ok := f.Lookup(key); ok {
		return instance, false, nil
	}

	start := time.Now()
	instance, err := f.construct(state, key)
	if err != nil {
		return nil, false, err
	}
	entry := Entry[K]{Key: key, Built: timespan.BetweenTimes(start, time.Now())}

	f.mu.Lock()
	f.instances[key] = instance
	f.states[instance] = state
	f.entries = append(f.entries, entry)
	f.mu.Unlock()

	f.logger.Debug("created instance",
		zap.Any("key", key),
		zap.Stringer("members", instance),
		zap.Duration("took", entry.Built.Duration()),
	)
	return instance, true, nil
}

func (f *Factory[S, K]) construct(state S, key K) (*object.Object, error) {
	b := &Build[S, K]{
		State:   state,
		Key:     key,
		Core:    f.core,
		Statics: f.statics,
		Private: object.New(),
		Factory: f,
	}
	for i, plugin := range f.plugins.Private {
		members, err := plugin(b)
		if err != nil {
			return nil, fmt.Errorf("private plugin %d: %w", i, err)
		}
		b.Private.Merge(members)
	}

	b.API = object.New()
	vis := visibilities{}
	for i, plugin := range f.plugins.Public {
		contribution, err := plugin(b)
		if err != nil {
			return nil, fmt.Errorf("public plugin %d: %w", i, err)
		}
		if len(contribution.Static) > 0 {
			return nil, fmt.Errorf("public plugin %d: %w: static members %v belong to the static phase",
				i, ErrInvalidPluginShape, contribution.Static.Names())
		}
		if err := vis.merge(b.API, contribution); err != nil {
			return nil, fmt.Errorf("public plugin %d: %w", i, err)
		}
	}

	if removed := vis.strip(b.API, f.cfg.removePrivate); len(removed) > 0 {
		f.logger.Debug("stripped members", zap.Any("key", key), zap.Strings("names", removed))
	}
	if !f.cfg.removeStatic {
		for _, name := range f.shared {
			if v, ok := f.statics.Get(name); ok && !b.API.Has(name) {
				b.API.Set(name, v)
			}
		}
	}
	if f.cfg.exposeState {
		b.API.Set(StateMember, state)
	}
	return b.API, nil
}

func invalidState(err error) error {
	if errors.Is(err, ErrInvalidState) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidState, err)
}

func (f *Factory[S, K]) cachePlugin(core *Core[S, K]) error {
	core.StateOf = f.StateOf
	core.InstanceOf = func(state S) (*object.Object, bool) {
		key, err := f.core.StateKey(state)
		if err != nil || !keys.Comparable(key) {
			return nil, false
		}
		return f.Lookup(key)
	}
	return nil
}

// ID returns the factory's unique id, also attached to its log lines.
func (f *Factory[S, K]) ID() string {
	return f.id
}

// Core returns the capability record. Reassigning its slots affects later
// Create calls.
func (f *Factory[S, K]) Core() *Core[S, K] {
	return f.core
}

// Statics returns the factory's static member table.
func (f *Factory[S, K]) Statics() *object.Object {
	return f.statics
}

// Static returns one static member.
func (f *Factory[S, K]) Static(name string) (any, bool) {
	return f.statics.Get(name)
}

// StateOf returns the state instance was built from, if this factory built
// it.
func (f *Factory[S, K]) StateOf(instance *object.Object) (S, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	state, ok := f.states[instance]
	return state, ok
}

// Lookup returns the cached instance for key.
func (f *Factory[S, K]) Lookup(key K) (*object.Object, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	instance, ok := f.instances[key]
	return instance, ok
}

// Len returns the number of cached instances.
func (f *Factory[S, K]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.instances)
}

// Entries returns the build records in creation order.
func (f *Factory[S, K]) Entries() []Entry[K] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.entries)
}

// Plugins returns a copy of the factory's user plugins.
func (f *Factory[S, K]) Plugins() Set[S, K] {
	return f.plugins.clone()
}

// Extend returns a new factory built from this factory's arguments followed
// by args. The new factory has its own caches.
func (f *Factory[S, K]) Extend(args ...any) (*Factory[S, K], error) {
	return New[S, K](append(slices.Clone(f.args), args...)...)
}
