package ecs

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// DefaultRecycleThreshold is the recycle queue length above which Optimize trims it.
const DefaultRecycleThreshold = 1000

// Option configures a World.
type Option func(*worldConfig)

type worldConfig struct {
	logger           *zap.Logger
	now              func() time.Time
	compactInterval  time.Duration
	queryTTL         time.Duration
	eventCapacity    int
	recycleThreshold int
}

// WithLogger sets the logger used by the World. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *worldConfig) { c.logger = logger }
}

// WithClock overrides the time source used for cache freshness, compaction and events.
func WithClock(now func() time.Time) Option {
	return func(c *worldConfig) { c.now = now }
}

func WithCompactInterval(d time.Duration) Option {
	return func(c *worldConfig) { c.compactInterval = d }
}

func WithQueryTTL(d time.Duration) Option {
	return func(c *worldConfig) { c.queryTTL = d }
}

func WithEventCapacity(n int) Option {
	return func(c *worldConfig) { c.eventCapacity = n }
}

func WithRecycleThreshold(n int) Option {
	return func(c *worldConfig) { c.recycleThreshold = n }
}

// World owns all entities, their components and the query cache.
// It is not safe for concurrent mutation.
type World struct {
	id     uuid.UUID
	logger *zap.Logger
	now    func() time.Time

	registry   *entityRegistry
	stores     *intmap.Map[ComponentKind, iComponentStore]
	cache      *QueryCache
	events     *ring[LifecycleEvent]
	singletons map[reflect.Type]any

	compactInterval  time.Duration
	recycleThreshold int
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	cfg := worldConfig{
		logger:           zap.NewNop(),
		now:              time.Now,
		compactInterval:  DefaultCompactInterval,
		queryTTL:         DefaultQueryTTL,
		eventCapacity:    DefaultEventCapacity,
		recycleThreshold: DefaultRecycleThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.New()
	return &World{
		id:               id,
		logger:           cfg.logger.With(zap.Stringer("world", id)),
		now:              cfg.now,
		registry:         newEntityRegistry(),
		stores:           intmap.New[ComponentKind, iComponentStore](32),
		cache:            NewQueryCache(cfg.queryTTL, cfg.now),
		events:           newRing[LifecycleEvent](cfg.eventCapacity),
		singletons:       make(map[reflect.Type]any),
		compactInterval:  cfg.compactInterval,
		recycleThreshold: cfg.recycleThreshold,
	}
}

// ID is a random identifier for this world instance.
func (w *World) ID() uuid.UUID { return w.id }

func (w *World) Logger() *zap.Logger { return w.logger }

// Cache exposes the query cache for inspection.
func (w *World) Cache() *QueryCache { return w.cache }

// CreateEntity allocates a new entity with no components.
func (w *World) CreateEntity() EntityId {
	id := w.registry.create()
	w.events.push(LifecycleEvent{Entity: id, Type: EntityCreated, Timestamp: w.now()})
	return id
}

// DestroyEntity removes the entity and every component it owns.
// Unknown or stale ids are ignored. Returns whether anything was destroyed.
func (w *World) DestroyEntity(entity EntityId) bool {
	kinds, ok := w.registry.release(entity)
	if !ok {
		w.logger.Debug("destroy of unknown entity", zap.Stringer("entity", entity))
		return false
	}

	for _, kind := range kinds {
		if store, ok := w.stores.Get(kind); ok {
			store.removeEntity(entity)
		}
	}
	w.cache.InvalidateAll()
	w.events.push(LifecycleEvent{Entity: entity, Type: EntityDestroyed, Timestamp: w.now()})
	return true
}

// Alive reports whether entity was created and not destroyed since.
func (w *World) Alive(entity EntityId) bool {
	return w.registry.alive(entity)
}

// EntityCount is the number of live entities.
func (w *World) EntityCount() int {
	return w.registry.len()
}

// Entities lists every live entity. The order is unspecified.
func (w *World) Entities() []EntityId {
	ids := make([]EntityId, 0, w.registry.len())
	w.registry.each(func(id EntityId, _ []ComponentKind) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// KindsOf returns the component kinds the entity owns, in the order they were added.
func (w *World) KindsOf(entity EntityId) []ComponentKind {
	return slices.Clone(w.registry.kinds(entity))
}

// ComponentsOf returns pointers to every component the entity owns, keyed by kind.
func (w *World) ComponentsOf(entity EntityId) map[ComponentKind]any {
	kinds := w.registry.kinds(entity)
	out := make(map[ComponentKind]any, len(kinds))
	for _, kind := range kinds {
		store, ok := w.stores.Get(kind)
		if !ok {
			continue
		}
		if v, ok := store.getAny(entity); ok {
			out[kind] = v
		}
	}
	return out
}

// KindInfo describes a registered component kind.
type KindInfo struct {
	Kind ComponentKind
	Type reflect.Type
	Name string
}

// Kinds lists every kind that has a store, sorted by name.
func (w *World) Kinds() []KindInfo {
	infos := make([]KindInfo, 0, w.stores.Len())
	for kind, store := range w.stores.All() {
		infos = append(infos, KindInfo{Kind: kind, Type: store.Type(), Name: store.Type().String()})
	}
	slices.SortFunc(infos, func(a, b KindInfo) int { return cmp.Compare(a.Name, b.Name) })
	return infos
}

// StoreStats returns the occupancy of the store for kind.
func (w *World) StoreStats(kind ComponentKind) (StoreStats, bool) {
	store, ok := w.stores.Get(kind)
	if !ok {
		return StoreStats{}, false
	}
	return store.Stats(), true
}

// EntitiesOf lists the entities owning kind without going through the cache.
func (w *World) EntitiesOf(kind ComponentKind) []EntityId {
	store, ok := w.stores.Get(kind)
	if !ok {
		return nil
	}
	return store.EntityIDs()
}

// QueryKind is the type-erased form of Query, used by tooling that only has a kind.
func (w *World) QueryKind(kind ComponentKind) QueryResult {
	key := KeyOf(kind)
	if result, ok := w.cache.Get(key); ok {
		return result
	}
	result := NewQueryResult(w.EntitiesOf(kind), w.now(), kind)
	w.cache.Store(result)
	return result
}

// AddAny attaches a component whose type is only known at runtime. The
// component's store must already exist, see RegisterComponent.
func (w *World) AddAny(entity EntityId, value any) bool {
	if !w.registry.alive(entity) || value == nil {
		return false
	}
	kind := kindOfType(reflect.TypeOf(value))
	store, ok := w.stores.Get(kind)
	if !ok {
		w.logger.Debug("add of unregistered component", zap.String("type", fmt.Sprintf("%T", value)))
		return false
	}
	if !store.insertAny(entity, value) {
		return false
	}
	w.registry.addKind(entity, kind)
	w.cache.InvalidateKind(kind)
	return true
}

// RemoveKind detaches the entity's component of the given kind.
func (w *World) RemoveKind(entity EntityId, kind ComponentKind) bool {
	store, ok := w.stores.Get(kind)
	if !ok || !store.removeEntity(entity) {
		return false
	}
	w.registry.removeKind(entity, kind)
	w.cache.InvalidateKind(kind)
	return true
}

// Spawn creates an entity and attaches every component whose store exists.
func (w *World) Spawn(components ...any) EntityId {
	entity := w.CreateEntity()
	for _, c := range components {
		w.AddAny(entity, c)
	}
	return entity
}

// Events returns the retained lifecycle events, oldest first.
func (w *World) Events() []LifecycleEvent {
	return w.events.snapshot()
}

// WorldStats summarizes the state of a World.
type WorldStats struct {
	ID          uuid.UUID
	Entities    int
	Recycled    int
	Kinds       int
	Events      uint64
	Cache       CacheStats
	Stores      []StoreStats
	Singletons  int
	CollectedAt time.Time
}

func (w *World) Stats() WorldStats {
	stats := WorldStats{
		ID:          w.id,
		Entities:    w.registry.len(),
		Recycled:    w.registry.recycledLen(),
		Kinds:       w.stores.Len(),
		Events:      w.events.total,
		Cache:       w.cache.Stats(),
		Singletons:  len(w.singletons),
		CollectedAt: w.now(),
	}
	for _, info := range w.Kinds() {
		if store, ok := w.stores.Get(info.Kind); ok {
			stats.Stores = append(stats.Stores, store.Stats())
		}
	}
	return stats
}

// RegisterComponent creates the store for T ahead of first use.
func RegisterComponent[T any](w *World) *Store[T] {
	return storeFor[T](w)
}

// storeFor returns the store for T, creating it on first use.
func storeFor[T any](w *World) *Store[T] {
	kind := KindOf[T]()
	if existing, ok := w.stores.Get(kind); ok {
		store, ok := existing.(*Store[T])
		if !ok {
			panic(fmt.Sprintf("ecs: component kind collision between %s and %s", existing.Type(), reflect.TypeFor[T]()))
		}
		return store
	}

	store := NewStore[T](WithStoreCompactInterval(w.compactInterval), WithStoreClock(w.now))
	w.stores.Put(kind, store)
	w.logger.Debug("component store created", zap.Stringer("type", store.Type()))
	return store
}

// lookupStore returns the store for T without creating it.
func lookupStore[T any](w *World) *Store[T] {
	existing, ok := w.stores.Get(KindOf[T]())
	if !ok {
		return nil
	}
	store, _ := existing.(*Store[T])
	return store
}

// AddComponent attaches value to entity, replacing any component of the same type.
// It returns the previous value, if any. Adding to a dead or unknown entity does nothing.
func AddComponent[T any](w *World, entity EntityId, value T) (T, bool) {
	if !w.registry.alive(entity) {
		w.logger.Debug("add to unknown entity", zap.Stringer("entity", entity), zap.Stringer("type", reflect.TypeFor[T]()))
		var zero T
		return zero, false
	}

	store := storeFor[T](w)
	prev, replaced := store.Insert(entity, value)
	w.registry.addKind(entity, store.Kind())
	w.cache.InvalidateKind(store.Kind())
	if n := store.Compact(); n > 0 {
		w.logger.Debug("store compacted", zap.Stringer("type", store.Type()), zap.Int("reclaimed", n))
	}
	return prev, replaced
}

// RemoveComponent detaches the entity's component of type T and returns it.
func RemoveComponent[T any](w *World, entity EntityId) (T, bool) {
	store := lookupStore[T](w)
	if store == nil {
		var zero T
		return zero, false
	}

	prev, ok := store.Remove(entity)
	if !ok {
		return prev, false
	}
	w.registry.removeKind(entity, store.Kind())
	w.cache.InvalidateKind(store.Kind())
	return prev, true
}

// GetComponent returns a copy of the entity's component of type T.
func GetComponent[T any](w *World, entity EntityId) (T, bool) {
	store := lookupStore[T](w)
	if store == nil {
		var zero T
		return zero, false
	}
	return store.Get(entity)
}

// GetComponentMut returns a pointer to the entity's component of type T, or nil.
func GetComponentMut[T any](w *World, entity EntityId) *T {
	store := lookupStore[T](w)
	if store == nil {
		return nil
	}
	return store.GetMut(entity)
}

func HasComponent[T any](w *World, entity EntityId) bool {
	store := lookupStore[T](w)
	return store != nil && store.Has(entity)
}

// EntitiesWith lists entities owning a T, bypassing the cache.
func EntitiesWith[T any](w *World) []EntityId {
	store := lookupStore[T](w)
	if store == nil {
		return nil
	}
	return store.EntityIDs()
}

// Query returns the entities owning a T, served from the cache while fresh.
func Query[T any](w *World) QueryResult {
	return w.QueryKind(KindOf[T]())
}

// QueryComponents pairs each entity of a prior result with its current T.
// Entities that lost their component since the result was captured are skipped.
func QueryComponents[T any](w *World, result QueryResult) iter.Seq2[EntityId, *T] {
	store := lookupStore[T](w)
	return func(yield func(EntityId, *T) bool) {
		if store == nil {
			return
		}
		for _, entity := range result.entities {
			idx, ok := store.index.Get(entity)
			if !ok {
				continue
			}
			if !yield(entity, &store.slots[idx]) {
				return
			}
		}
	}
}

// Each visits every entity owning a T along with a pointer to it.
func Each[T any](w *World) iter.Seq2[EntityId, *T] {
	store := lookupStore[T](w)
	if store == nil {
		return func(func(EntityId, *T) bool) {}
	}
	return store.All()
}
