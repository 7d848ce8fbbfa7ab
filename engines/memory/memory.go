package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/entreg/entreg"
)

// ErrModelNotDefined is returned when an association names a model the
// engine never saw a definition for
var ErrModelNotDefined = errors.New("model not defined")

// Engine records every model and association registered with it, in order.
// It backs tests and dry runs where no real storage engine is wanted.
type Engine struct {
	mu        sync.RWMutex
	models    map[string]*Handle
	order     []string
	accessors []*Accessor
}

// Handle identify a defined model
type Handle struct {
	Entity *entreg.Entity
}

func (handle *Handle) ModelName() string { return handle.Entity.Name }

// Accessor identify a created association
type Accessor struct {
	Request entreg.AssociationRequest
}

func (accessor *Accessor) AssociationName() string { return accessor.Request.Association.Name }

func (accessor *Accessor) AssociationKind() entreg.Kind { return accessor.Request.Association.Kind }

// NewEngine initialize an empty recording engine
func NewEngine() *Engine {
	return &Engine{models: map[string]*Handle{}}
}

func (engine *Engine) Name() string { return "memory" }

// DefineModel record the entity. Defining the same name again replaces the
// recorded entity but keeps its place in the definition order.
func (engine *Engine) DefineModel(ctx context.Context, entity *entreg.Entity) (entreg.ModelHandle, error) {
	if entity == nil || entity.Name == "" {
		return nil, fmt.Errorf("%w: define model without an entity", entreg.ErrInvalidEntity)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	handle, ok := engine.models[entity.Name]
	if !ok {
		handle = &Handle{}
		engine.models[entity.Name] = handle
		engine.order = append(engine.order, entity.Name)
	}
	handle.Entity = entity
	return handle, nil
}

// CreateAssociation record the request. Source, target and join entities
// must all have been defined first.
func (engine *Engine) CreateAssociation(ctx context.Context, req entreg.AssociationRequest) (entreg.AssociationHandle, error) {
	if req.Association == nil || req.Source == nil || req.Target == nil {
		return nil, fmt.Errorf("%w: incomplete association request", entreg.ErrInvalidEntity)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	for _, entity := range []*entreg.Entity{req.Source, req.Target, req.Join} {
		if entity == nil {
			continue
		}
		if _, ok := engine.models[entity.Name]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrModelNotDefined, entity.Name)
		}
	}

	accessor := &Accessor{Request: req}
	engine.accessors = append(engine.accessors, accessor)
	return accessor, nil
}

// Models list defined models in definition order
func (engine *Engine) Models() []*Handle {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	models := make([]*Handle, 0, len(engine.order))
	for _, name := range engine.order {
		models = append(models, engine.models[name])
	}
	return models
}

// Model find a defined model by entity name
func (engine *Engine) Model(name string) (*Handle, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	handle, ok := engine.models[name]
	return handle, ok
}

// Requests snapshot association requests in creation order
func (engine *Engine) Requests() []entreg.AssociationRequest {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	requests := make([]entreg.AssociationRequest, 0, len(engine.accessors))
	for _, accessor := range engine.accessors {
		requests = append(requests, accessor.Request)
	}
	return requests
}

// Len count defined models
func (engine *Engine) Len() int {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	return len(engine.order)
}

// Reset drop everything recorded
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.models = map[string]*Handle{}
	engine.order = nil
	engine.accessors = nil
}
