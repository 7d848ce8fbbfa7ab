package entreg

import (
	"fmt"
	"iter"
	"reflect"
	"sync"
	"time"

	"github.com/entreg/entreg/logger"
)

// Registry collects entity definitions before they are registered with an
// engine. Declarations merge by entity name; the registry keeps insertion
// order.
type Registry struct {
	*Config

	mu       sync.RWMutex
	entities []*Entity
	byName   map[string]*Entity
	byType   map[reflect.Type]*Entity
}

// NewRegistry initialize an empty registry
func NewRegistry(opts ...ConfigOption) *Registry {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = NamingStrategy{}
	}
	if config.Logger == nil {
		config.Logger = logger.Default
	}
	if config.NowFunc == nil {
		config.NowFunc = time.Now
	}

	return &Registry{
		Config: config,
		byName: map[string]*Entity{},
		byType: map[reflect.Type]*Entity{},
	}
}

// Add declare an entity from a struct value or an *Entity built at runtime.
// Adding the same struct type again returns the already parsed definition.
func (registry *Registry) Add(dest interface{}) (*Entity, error) {
	if entity, ok := dest.(*Entity); ok {
		return registry.AddEntity(entity)
	}
	if entity, ok := dest.(Entity); ok {
		return registry.AddEntity(&entity)
	}

	if modelType := indirectStructType(dest); modelType != nil {
		registry.mu.RLock()
		entity, ok := registry.byType[modelType]
		registry.mu.RUnlock()
		if ok {
			return entity, nil
		}
	}

	entity, err := Parse(dest, registry.NamingStrategy)
	if err != nil {
		return nil, err
	}
	return registry.AddEntity(entity)
}

// AddEntity declare an entity, merging it into an existing declaration with
// the same name. Two different struct types cannot claim one name.
func (registry *Registry) AddEntity(entity *Entity) (*Entity, error) {
	if entity == nil || entity.Name == "" {
		return nil, fmt.Errorf("%w: entity without a name", ErrInvalidEntity)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if entity.namer == nil {
		entity.namer = registry.NamingStrategy
	}

	existing, ok := registry.byName[entity.Name]
	if !ok {
		registry.entities = append(registry.entities, entity)
		registry.byName[entity.Name] = entity
		if entity.ModelType != nil {
			registry.byType[entity.ModelType] = entity
		}
		return entity, nil
	}

	if existing == entity {
		return existing, nil
	}

	if existing.ModelType != nil && entity.ModelType != nil && existing.ModelType != entity.ModelType {
		return nil, fmt.Errorf("%w: %v already declared by %v", ErrDuplicateEntity, entity.Name, existing)
	}

	if existing.ModelType == nil && entity.ModelType != nil {
		existing.ModelType = entity.ModelType
		registry.byType[entity.ModelType] = existing
	}
	if existing.Table == "" {
		existing.Table = entity.Table
	}

	for _, column := range entity.Columns {
		existing.SetColumn(column)
	}
	for _, assoc := range entity.Associations {
		if _, err := existing.SetAssociation(assoc); err != nil {
			return nil, err
		}
	}
	for _, index := range entity.Indexes {
		existing.MergeIndex(index)
	}

	if entity.Options.Timestamps {
		existing.Options.Timestamps = true
	}
	if entity.Options.CreatedAtColumn != "" {
		existing.Options.CreatedAtColumn = entity.Options.CreatedAtColumn
	}
	if entity.Options.UpdatedAtColumn != "" {
		existing.Options.UpdatedAtColumn = entity.Options.UpdatedAtColumn
	}
	if entity.Options.Comment != "" {
		existing.Options.Comment = entity.Options.Comment
	}
	for k, v := range entity.Options.Settings {
		if existing.Options.Settings == nil {
			existing.Options.Settings = map[string]string{}
		}
		existing.Options.Settings[k] = v
	}

	return existing, nil
}

// Entity return the declaration with the given name, attaching an empty one
// when the name is new.
func (registry *Registry) Entity(name string) *Entity {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if entity, ok := registry.byName[name]; ok {
		return entity
	}

	entity := NewEntity(name)
	entity.namer = registry.NamingStrategy
	registry.entities = append(registry.entities, entity)
	registry.byName[name] = entity
	return entity
}

// Lookup find a declaration by name without attaching
func (registry *Registry) Lookup(name string) (*Entity, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	entity, ok := registry.byName[name]
	return entity, ok
}

// LookupType find the declaration parsed from the given struct type
func (registry *Registry) LookupType(dest interface{}) (*Entity, bool) {
	modelType := indirectStructType(dest)
	if modelType == nil {
		return nil, false
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	entity, ok := registry.byType[modelType]
	return entity, ok
}

// Entities snapshot the declarations in insertion order
func (registry *Registry) Entities() []*Entity {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	entities := make([]*Entity, len(registry.entities))
	copy(entities, registry.entities)
	return entities
}

// Names list declared entity names in insertion order
func (registry *Registry) Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.entities))
	for _, entity := range registry.entities {
		names = append(names, entity.Name)
	}
	return names
}

// Len count declared entities
func (registry *Registry) Len() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.entities)
}

// Clear drop every declaration
func (registry *Registry) Clear() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.entities = nil
	registry.byName = map[string]*Entity{}
	registry.byType = map[reflect.Type]*Entity{}
}

// All iterate declarations in insertion order
func (registry *Registry) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, entity := range registry.Entities() {
			if !yield(entity) {
				return
			}
		}
	}
}

func (registry *Registry) resolve(ref TargetRef) *Entity {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if ref.Type != nil {
		if entity, ok := registry.byType[ref.Type]; ok {
			return entity
		}
	}
	return registry.byName[ref.Name]
}

func indirectStructType(dest interface{}) reflect.Type {
	if dest == nil {
		return nil
	}
	modelType := reflect.ValueOf(dest).Type()
	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct || modelType.Name() == "" {
		return nil
	}
	return modelType
}
