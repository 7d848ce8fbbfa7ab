package entreg

import "time"

// Model is what registration hands back for one entity: the engine's handle
// plus accessors for the associations that resolved.
type Model struct {
	Entity    *Entity
	Handle    ModelHandle
	Accessors map[string]AssociationHandle
}

// Accessor return the handle attached for an association field, nil when the
// association did not resolve.
func (model *Model) Accessor(field string) AssociationHandle {
	return model.Accessors[field]
}

// Models indexes registration results by entity name
type Models map[string]*Model

// Get return the model registered under name
func (models Models) Get(name string) *Model {
	return models[name]
}

// Base can be embedded into entity structs for the conventional primary key
// and timestamp columns.
type Base struct {
	ID        uint `entreg:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
