package entreg

import (
	"context"
	"fmt"
	"reflect"

	"github.com/entreg/entreg/utils"
)

// Register define every declared entity with the engine, then resolve and
// attach associations. Models come back keyed by entity name.
//
// Every entity becomes a model before the first association resolves, so
// declaration order never decides whether a target is visible. Associations
// naming a target that was never declared are skipped with a warning, which
// keeps partial registries usable; WithStrictAssociations turns the skip
// into an error.
func (registry *Registry) Register(ctx context.Context, engine Engine) (models Models, err error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	begin := registry.NowFunc()
	entities := registry.Entities()
	defer func() {
		registry.Logger.Trace(ctx, begin, func() (string, int64) {
			return fmt.Sprintf("register %v", engine.Name()), int64(len(entities))
		}, err)
	}()

	joins := map[string]bool{}
	for _, entity := range entities {
		for _, assoc := range entity.Associations {
			if assoc.Kind == BelongsToMany && assoc.JoinEntity != "" {
				joins[assoc.JoinEntity] = true
			}
		}
	}

	models = make(Models, len(entities))
	for _, entity := range entities {
		if entity.Table == "" && joins[entity.Name] {
			entity.Table = registry.NamingStrategy.JoinTableName(entity.Name)
		}
		entity.finalize(registry.NamingStrategy)

		handle, err := engine.DefineModel(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("define model %v on %v: %w", entity.Name, engine.Name(), err)
		}
		models[entity.Name] = &Model{Entity: entity, Handle: handle, Accessors: map[string]AssociationHandle{}}
	}

	for _, entity := range entities {
		for _, assoc := range entity.Associations {
			target := registry.resolve(assoc.Target)
			if target == nil {
				if registry.StrictAssociations {
					return nil, fmt.Errorf("%w: %v for %v on field %v",
						ErrAssociationTargetMissing, assoc.Target.Name, entity, assoc.Name)
				}
				registry.Logger.Warn(ctx, "skipping association %v.%v, target %v is not declared",
					entity.Name, assoc.Name, assoc.Target.Name)
				continue
			}

			var join *Entity
			if assoc.Kind == BelongsToMany {
				if join = registry.resolve(TargetRef{Name: assoc.JoinEntity}); join == nil {
					if registry.StrictAssociations {
						return nil, fmt.Errorf("%w: join entity %v for %v on field %v",
							ErrAssociationTargetMissing, assoc.JoinEntity, entity, assoc.Name)
					}
					registry.Logger.Warn(ctx, "skipping association %v.%v, join entity %v is not declared",
						entity.Name, assoc.Name, assoc.JoinEntity)
					continue
				}
			}

			if err := assoc.resolveReferences(target, join); err != nil {
				return nil, err
			}

			handle, err := engine.CreateAssociation(ctx, AssociationRequest{
				Association: assoc,
				Source:      entity,
				Target:      target,
				Join:        join,
				References:  assoc.References,
			})
			if err != nil {
				return nil, fmt.Errorf("create association %v.%v on %v: %w", entity.Name, assoc.Name, engine.Name(), err)
			}
			models[entity.Name].Accessors[assoc.Name] = handle
		}
	}

	return models, nil
}

// RegisterEntities declare dests on a fresh registry and register them in
// one call. A dest may be an iter.Seq of models, such as another registry's
// All, which is expanded in place.
func RegisterEntities(ctx context.Context, engine Engine, dests ...interface{}) (Models, error) {
	registry := NewRegistry()
	for _, dest := range dests {
		if seq, ok := utils.ConvertIteratorToSlice(reflect.ValueOf(dest)); ok {
			for i := 0; i < seq.Len(); i++ {
				if _, err := registry.Add(seq.Index(i).Interface()); err != nil {
					return nil, err
				}
			}
			continue
		}
		if _, err := registry.Add(dest); err != nil {
			return nil, err
		}
	}
	return registry.Register(ctx, engine)
}
