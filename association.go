package entreg

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/entreg/entreg/utils"
)

// Kind association kind
type Kind string

const (
	HasOne        Kind = "has_one"         // source owns the key, one target row
	HasMany       Kind = "has_many"        // source owns the key, many target rows
	BelongsTo     Kind = "belongs_to"      // source holds the foreign key
	BelongsToMany Kind = "belongs_to_many" // linked through a join entity
)

// ParseKind recognize a kind keyword from tags or documents
func ParseKind(s string) (Kind, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "hasone", "has_one":
		return HasOne, true
	case "hasmany", "has_many":
		return HasMany, true
	case "belongsto", "belongs_to":
		return BelongsTo, true
	case "belongstomany", "belongs_to_many", "many2many", "many_to_many":
		return BelongsToMany, true
	}
	return "", false
}

// TargetRef names an association target. It stays a name until registration
// resolves it against the set of registered entities.
type TargetRef struct {
	Name string
	Type reflect.Type
}

// Association describes a declared association between two entities
type Association struct {
	Name            string
	Kind            Kind
	Entity          *Entity
	Target          TargetRef
	TargetEntity    *Entity // resolved while registering
	JoinEntity      string
	JoinTable       *Entity // resolved while registering
	ForeignKeys     []string
	PrimaryKeys     []string
	JoinForeignKeys []string
	JoinPrimaryKeys []string
	References      []Reference
	Constraint      *Constraint
	StructField     reflect.StructField
	TagSettings     map[string]string
}

// Reference pairs a primary key column with the foreign key column holding
// it. OwnPrimaryKey reports that the referenced key belongs to the declaring
// entity, so the foreign key column lives on the other side.
type Reference struct {
	PrimaryKey    *Column
	ForeignKey    *Column
	OwnPrimaryKey bool
}

// Constraint foreign key constraint settings
type Constraint struct {
	Name     string
	OnUpdate string
	OnDelete string
}

var constraintNamePattern = regexp.MustCompile("^[A-Za-z-_]+$")

// ParseConstraint read constraint settings from the declaration. A "-" value
// disables the constraint entirely.
func (assoc *Association) ParseConstraint() *Constraint {
	str := assoc.TagSettings["CONSTRAINT"]
	if str == "-" {
		return nil
	}

	var (
		name     string
		idx      = strings.Index(str, ",")
		settings = ParseTagSetting(str, ",")
	)

	if idx != -1 && constraintNamePattern.MatchString(str[0:idx]) {
		name = str[0:idx]
	} else {
		name = assoc.Entity.namerOrDefault().AssociationFKName(assoc.Entity.Table, assoc.Name)
	}

	return &Constraint{
		Name:     name,
		OnUpdate: settings["ONUPDATE"],
		OnDelete: settings["ONDELETE"],
	}
}

func (entity *Entity) parseAssociation(fieldStruct reflect.StructField) (*Association, error) {
	tagSettings := ParseTagSetting(fieldStruct.Tag.Get(TagName), ";")

	assoc := &Association{
		Name:        fieldStruct.Name,
		Entity:      entity,
		StructField: fieldStruct,
		TagSettings: tagSettings,
	}

	fieldType := fieldStruct.Type
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	many := false
	if fieldType.Kind() == reflect.Slice {
		many = true
		fieldType = fieldType.Elem()
		for fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}
	}

	if fieldType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: unsupported association type %v for %v on field %v",
			ErrInvalidEntity, fieldStruct.Type, entity, fieldStruct.Name)
	}

	assoc.Target = TargetRef{Name: entityNameForType(fieldType), Type: fieldType}

	if v := tagSettings["FOREIGNKEY"]; v != "" {
		assoc.ForeignKeys = toColumns(v)
	}
	if v := tagSettings["REFERENCES"]; v != "" {
		assoc.PrimaryKeys = toColumns(v)
	}
	if v := tagSettings["JOINFOREIGNKEY"]; v != "" {
		assoc.JoinForeignKeys = toColumns(v)
	}
	if v := tagSettings["JOINREFERENCES"]; v != "" {
		assoc.JoinPrimaryKeys = toColumns(v)
	}

	if v, ok := tagSettings["MANY2MANY"]; ok {
		assoc.Kind = BelongsToMany
		if v != "MANY2MANY" {
			assoc.JoinEntity = v
		}
	} else if v, ok := tagSettings["HASONE"]; ok && utils.CheckTruth(v) {
		assoc.Kind = HasOne
	} else if v, ok := tagSettings["HASMANY"]; ok && utils.CheckTruth(v) {
		assoc.Kind = HasMany
	} else if v, ok := tagSettings["BELONGSTO"]; ok && utils.CheckTruth(v) {
		assoc.Kind = BelongsTo
	} else if many {
		assoc.Kind = HasMany
	} else if entity.ownsForeignKey(assoc) {
		assoc.Kind = BelongsTo
	} else {
		assoc.Kind = HasOne
	}

	return assoc, nil
}

// ownsForeignKey reports whether the declaring struct itself carries the
// foreign key, which makes a struct-typed field a belongs to association.
func (entity *Entity) ownsForeignKey(assoc *Association) bool {
	for _, name := range assoc.ForeignKeys {
		if entity.LookUpColumn(name) != nil {
			return true
		}
	}
	if len(assoc.ForeignKeys) > 0 {
		return false
	}
	return entity.LookUpColumn(assoc.Name+"ID") != nil
}

// resolveReferences connects the association to its registered target and
// join entities, creating implicit foreign key columns where the declaration
// names none.
func (assoc *Association) resolveReferences(target, join *Entity) error {
	assoc.TargetEntity = target
	assoc.JoinTable = join
	assoc.References = nil

	switch assoc.Kind {
	case HasOne, HasMany:
		primaryColumns, err := assoc.referencedColumns(assoc.Entity)
		if err != nil {
			return err
		}
		if len(assoc.ForeignKeys) > 0 && len(assoc.ForeignKeys) != len(primaryColumns) {
			return fmt.Errorf("%w: unmatched foreign keys %v for %v on field %v",
				ErrInvalidEntity, assoc.ForeignKeys, assoc.Entity, assoc.Name)
		}
		for i, pk := range primaryColumns {
			name := assoc.Entity.Name + pk.Name
			if len(assoc.ForeignKeys) > i {
				name = assoc.ForeignKeys[i]
			}
			fk := target.LookUpColumn(name)
			if fk == nil {
				fk = target.SetColumn(implicitColumn(name, pk, false))
			}
			assoc.References = append(assoc.References, Reference{PrimaryKey: pk, ForeignKey: fk, OwnPrimaryKey: true})
		}

	case BelongsTo:
		primaryColumns, err := assoc.referencedColumns(target)
		if err != nil {
			return err
		}
		if len(assoc.ForeignKeys) > 0 && len(assoc.ForeignKeys) != len(primaryColumns) {
			return fmt.Errorf("%w: unmatched foreign keys %v for %v on field %v",
				ErrInvalidEntity, assoc.ForeignKeys, assoc.Entity, assoc.Name)
		}
		for i, pk := range primaryColumns {
			name := assoc.Name + pk.Name
			if len(assoc.ForeignKeys) > i {
				name = assoc.ForeignKeys[i]
			}
			fk := assoc.Entity.LookUpColumn(name)
			if fk == nil {
				fk = assoc.Entity.SetColumn(implicitColumn(name, pk, false))
			}
			assoc.References = append(assoc.References, Reference{PrimaryKey: pk, ForeignKey: fk, OwnPrimaryKey: false})
		}

	case BelongsToMany:
		if join == nil {
			return fmt.Errorf("%w for %v on field %v", ErrMissingJoinEntity, assoc.Entity, assoc.Name)
		}
		joinAsPrimary := len(join.PrimaryColumns) == 0
		used := map[string]bool{}

		ownColumns, err := assoc.referencedColumns(assoc.Entity)
		if err != nil {
			return err
		}
		for i, pk := range ownColumns {
			name := assoc.Entity.Name + pk.Name
			if len(assoc.JoinForeignKeys) > i {
				name = assoc.JoinForeignKeys[i]
			}
			used[name] = true
			fk := join.LookUpColumn(name)
			if fk == nil {
				fk = join.SetColumn(implicitColumn(name, pk, joinAsPrimary))
			}
			assoc.References = append(assoc.References, Reference{PrimaryKey: pk, ForeignKey: fk, OwnPrimaryKey: true})
		}

		targetColumns := target.PrimaryColumns
		if len(assoc.PrimaryKeys) > 0 {
			if targetColumns, err = namedColumns(target, assoc.PrimaryKeys, assoc); err != nil {
				return err
			}
		} else if len(targetColumns) == 0 {
			return fmt.Errorf("%w: %v needs a primary key for %v on field %v",
				ErrMissingPrimaryKey, target, assoc.Entity, assoc.Name)
		}
		for i, pk := range targetColumns {
			name := target.Name + pk.Name
			if len(assoc.JoinPrimaryKeys) > i {
				name = assoc.JoinPrimaryKeys[i]
			} else if used[name] {
				if assoc.Name != target.Name {
					name = inflection.Singular(assoc.Name) + pk.Name
				} else {
					name += "Reference"
				}
			}
			fk := join.LookUpColumn(name)
			if fk == nil {
				fk = join.SetColumn(implicitColumn(name, pk, joinAsPrimary))
			}
			assoc.References = append(assoc.References, Reference{PrimaryKey: pk, ForeignKey: fk})
		}
	}

	assoc.Constraint = assoc.ParseConstraint()
	return nil
}

// referencedColumns pick the key columns on the owning side, either the ones
// the declaration names or the primary key.
func (assoc *Association) referencedColumns(entity *Entity) ([]*Column, error) {
	if assoc.Kind != BelongsToMany && len(assoc.PrimaryKeys) > 0 {
		return namedColumns(entity, assoc.PrimaryKeys, assoc)
	}
	if assoc.Kind == BelongsToMany && len(assoc.ForeignKeys) > 0 {
		return namedColumns(entity, assoc.ForeignKeys, assoc)
	}
	if len(entity.PrimaryColumns) == 0 {
		return nil, fmt.Errorf("%w: %v needs a primary key for %v on field %v",
			ErrMissingPrimaryKey, entity, assoc.Entity, assoc.Name)
	}
	return entity.PrimaryColumns, nil
}

func namedColumns(entity *Entity, names []string, assoc *Association) ([]*Column, error) {
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		column := entity.LookUpColumn(name)
		if column == nil {
			return nil, fmt.Errorf("%w: referenced column %v not found on %v for %v on field %v",
				ErrInvalidEntity, name, entity, assoc.Entity, assoc.Name)
		}
		columns = append(columns, column)
	}
	return columns, nil
}

func implicitColumn(name string, pk *Column, primaryKey bool) *Column {
	return &Column{
		Name:        name,
		DataType:    pk.DataType,
		Size:        pk.Size,
		Precision:   pk.Precision,
		Scale:       pk.Scale,
		PrimaryKey:  primaryKey,
		Creatable:   true,
		Updatable:   true,
		Readable:    true,
		TagSettings: map[string]string{},
	}
}
