package loader

import (
	"fmt"
	"strings"

	"github.com/entreg/entreg"
)

// Apply validate the document and declare every entity on the registry,
// returning the declarations in document order. Definitions merge into
// entities already declared under the same name.
func (doc *Document) Apply(registry *entreg.Registry) ([]*entreg.Entity, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	entities := make([]*entreg.Entity, 0, len(doc.Entities))
	for _, def := range doc.Entities {
		entity, err := def.build()
		if err != nil {
			return nil, err
		}
		added, err := registry.AddEntity(entity)
		if err != nil {
			return nil, err
		}
		entities = append(entities, added)
	}
	return entities, nil
}

func (def EntityDef) build() (*entreg.Entity, error) {
	entity := entreg.NewEntity(def.Name)
	entity.Table = def.Table
	if def.Comment != "" {
		entity.SetOptions(entreg.WithEntityComment(def.Comment))
	}
	if def.Timestamps {
		entity.SetOptions(entreg.WithTimestamps())
	}

	for _, column := range def.Columns {
		c := &entreg.Column{
			Name:          column.Name,
			DBName:        column.Column,
			DataType:      dataType(column.Type),
			Size:          column.Size,
			Precision:     column.Precision,
			Scale:         column.Scale,
			PrimaryKey:    column.PrimaryKey,
			AutoIncrement: column.AutoIncrement,
			NotNull:       column.NotNull || column.PrimaryKey,
			Unique:        column.Unique,
			Comment:       column.Comment,
			EnumValues:    column.Enum,
		}
		if column.Default != "" {
			c.HasDefaultValue = true
			c.DefaultValue = column.Default
		}
		entity.SetColumn(c)
	}

	for _, def2 := range def.Associations {
		kind, _ := entreg.ParseKind(def2.Kind)
		assoc := &entreg.Association{
			Name:            def2.Name,
			Kind:            kind,
			Target:          entreg.TargetRef{Name: def2.Target},
			JoinEntity:      def2.JoinEntity,
			ForeignKeys:     def2.ForeignKeys,
			PrimaryKeys:     def2.References,
			JoinForeignKeys: def2.JoinForeignKeys,
			JoinPrimaryKeys: def2.JoinReferences,
			TagSettings:     map[string]string{},
		}
		if constraint := constraintSetting(def2); constraint != "" {
			assoc.TagSettings["CONSTRAINT"] = constraint
		}
		if _, err := entity.SetAssociation(assoc); err != nil {
			return nil, err
		}
	}

	for _, index := range def.Indexes {
		idx := &entreg.Index{Name: index.Name}
		if index.Unique {
			idx.Class = "UNIQUE"
		}
		for _, name := range index.Columns {
			column := entity.LookUpColumn(name)
			if column == nil {
				return nil, fmt.Errorf("%w: index %v names unknown column %v on %v",
					entreg.ErrInvalidEntity, index.Name, name, def.Name)
			}
			idx.Fields = append(idx.Fields, entreg.IndexOption{Column: column, Priority: 10})
		}
		entity.MergeIndex(idx)
	}

	return entity, nil
}

// constraintSetting rebuild the constraint tag value from the definition so
// constraints parse the same way the struct tag form does
func constraintSetting(def AssociationDef) string {
	if def.Constraint == "-" {
		return "-"
	}
	var parts []string
	if def.OnUpdate != "" {
		parts = append(parts, "OnUpdate:"+def.OnUpdate)
	}
	if def.OnDelete != "" {
		parts = append(parts, "OnDelete:"+def.OnDelete)
	}
	if def.Constraint != "" {
		// a name is only recognized ahead of a comma
		return def.Constraint + "," + strings.Join(parts, ",")
	}
	return strings.Join(parts, ",")
}

func dataType(s string) entreg.DataType {
	switch t := entreg.DataType(strings.ToLower(s)); t {
	case entreg.Bool, entreg.Int, entreg.Uint, entreg.Float, entreg.String, entreg.Time, entreg.Bytes, entreg.Enum:
		return t
	}
	return entreg.DataType(s)
}
