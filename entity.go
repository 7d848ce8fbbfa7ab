package entreg

import (
	"fmt"
	"reflect"
)

// Entity is a model definition accumulated from declarations. Declarations
// merge idempotently: re-declaring a column, association or option overwrites
// only the touched item and leaves the rest of the definition untouched.
type Entity struct {
	Name                     string
	Table                    string
	ModelType                reflect.Type // nil when defined at runtime
	Columns                  []*Column
	ColumnsByName            map[string]*Column
	ColumnsByDBName          map[string]*Column
	PrimaryColumns           []*Column
	PrioritizedPrimaryColumn *Column
	Associations             []*Association
	AssociationsByName       map[string]*Association
	Indexes                  []*Index
	Options                  EntityOptions

	namer Namer
}

// EntityOptions entity level options
type EntityOptions struct {
	Timestamps      bool
	CreatedAtColumn string
	UpdatedAtColumn string
	Comment         string
	Settings        map[string]string
}

// NewEntity create an empty runtime entity definition
func NewEntity(name string) *Entity {
	return &Entity{
		Name:               name,
		ColumnsByName:      map[string]*Column{},
		ColumnsByDBName:    map[string]*Column{},
		AssociationsByName: map[string]*Association{},
	}
}

func (entity *Entity) String() string {
	if entity.ModelType != nil && entity.ModelType.PkgPath() != "" {
		return fmt.Sprintf("%v.%v", entity.ModelType.PkgPath(), entity.ModelType.Name())
	}
	return entity.Name
}

// LookUpColumn search column with name or db name
func (entity *Entity) LookUpColumn(name string) *Column {
	if column, ok := entity.ColumnsByDBName[name]; ok {
		return column
	}
	if column, ok := entity.ColumnsByName[name]; ok {
		return column
	}
	return nil
}

// SetColumn add or replace a column. A stored column with the same name keeps
// its identity so references held by indexes and associations stay valid.
func (entity *Entity) SetColumn(column *Column) *Column {
	column.Entity = entity
	if column.DBName == "" {
		column.DBName = entity.namerOrDefault().ColumnName(entity.Table, column.Name)
	}

	if v, ok := entity.ColumnsByName[column.Name]; ok {
		delete(entity.ColumnsByDBName, v.DBName)
		*v = *column
		entity.ColumnsByDBName[v.DBName] = v
		entity.refreshPrimaryColumns()
		return v
	}

	entity.Columns = append(entity.Columns, column)
	entity.ColumnsByName[column.Name] = column
	entity.ColumnsByDBName[column.DBName] = column

	if column.PrimaryKey {
		entity.PrimaryColumns = append(entity.PrimaryColumns, column)
		if entity.PrioritizedPrimaryColumn == nil {
			entity.PrioritizedPrimaryColumn = column
		}
	}
	return column
}

func (entity *Entity) refreshPrimaryColumns() {
	entity.PrimaryColumns = nil
	entity.PrioritizedPrimaryColumn = nil
	for _, column := range entity.Columns {
		if column.PrimaryKey {
			entity.PrimaryColumns = append(entity.PrimaryColumns, column)
			if entity.PrioritizedPrimaryColumn == nil {
				entity.PrioritizedPrimaryColumn = column
			}
		}
	}
}

// SetAssociation add or replace an association. The target stays unresolved
// until registration; a belongs-to-many without a join entity fails here.
func (entity *Entity) SetAssociation(assoc *Association) (*Association, error) {
	if assoc.Kind == BelongsToMany && assoc.JoinEntity == "" {
		return nil, fmt.Errorf("%w for %v on field %v", ErrMissingJoinEntity, entity, assoc.Name)
	}
	assoc.Entity = entity

	if v, ok := entity.AssociationsByName[assoc.Name]; ok {
		*v = *assoc
		return v, nil
	}
	entity.Associations = append(entity.Associations, assoc)
	entity.AssociationsByName[assoc.Name] = assoc
	return assoc, nil
}

// SetCreatedAt set the column backing the creation timestamp
func (entity *Entity) SetCreatedAt(column string) {
	entity.Options.Timestamps = true
	entity.Options.CreatedAtColumn = column
}

// SetUpdatedAt set the column backing the update timestamp
func (entity *Entity) SetUpdatedAt(column string) {
	entity.Options.Timestamps = true
	entity.Options.UpdatedAtColumn = column
}

// SetOptions apply entity options
func (entity *Entity) SetOptions(opts ...EntityOption) {
	for _, opt := range opts {
		opt(entity)
	}
}

func (entity *Entity) namerOrDefault() Namer {
	if entity.namer != nil {
		return entity.namer
	}
	return NamingStrategy{}
}

// finalize fills derived naming and timestamp columns before the definition
// is handed to an engine.
func (entity *Entity) finalize(namer Namer) {
	if entity.namer == nil {
		entity.namer = namer
	}
	if entity.Table == "" {
		entity.Table = entity.namer.TableName(entity.Name)
	}

	for _, column := range entity.Columns {
		if column.DBName == "" {
			column.DBName = entity.namer.ColumnName(entity.Table, column.Name)
			entity.ColumnsByDBName[column.DBName] = column
		}
	}

	if entity.Options.Timestamps {
		entity.ensureTimestampColumn("CreatedAt", entity.Options.CreatedAtColumn, "created_at")
		entity.ensureTimestampColumn("UpdatedAt", entity.Options.UpdatedAtColumn, "updated_at")
	}

	for _, index := range entity.Indexes {
		if index.Name == "" && len(index.Fields) > 0 {
			index.Name = entity.namer.IndexName(entity.Table, index.Fields[0].Name)
		}
	}
}

func (entity *Entity) ensureTimestampColumn(name, dbName, fallback string) {
	if dbName == "" {
		dbName = fallback
	}

	if column := entity.LookUpColumn(name); column != nil {
		if column.DBName != dbName {
			delete(entity.ColumnsByDBName, column.DBName)
			column.DBName = dbName
			entity.ColumnsByDBName[dbName] = column
		}
		return
	}

	column := &Column{Name: name, DBName: dbName, DataType: Time}
	if name == "CreatedAt" {
		column.AutoCreateTime = UnixSecond
	} else {
		column.AutoUpdateTime = UnixSecond
	}
	entity.SetColumn(column)
}
