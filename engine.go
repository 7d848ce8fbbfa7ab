package entreg

import "context"

// Engine receives finished entity definitions. Implementations translate
// them into whatever backs the registry, a migration planner or a plain
// recorder.
type Engine interface {
	Name() string
	DefineModel(ctx context.Context, entity *Entity) (ModelHandle, error)
	CreateAssociation(ctx context.Context, req AssociationRequest) (AssociationHandle, error)
}

// ModelHandle identifies a model the engine accepted
type ModelHandle interface {
	ModelName() string
}

// AssociationHandle identifies an association the engine accepted
type AssociationHandle interface {
	AssociationName() string
	AssociationKind() Kind
}

// AssociationRequest carries one resolved association to an engine. Join is
// nil unless the association runs through a join entity.
type AssociationRequest struct {
	Association *Association
	Source      *Entity
	Target      *Entity
	Join        *Entity
	References  []Reference
}
