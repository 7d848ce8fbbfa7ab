package entsql

import (
	"fmt"
	"strings"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/entreg/entreg"
)

func tableName(entity *entreg.Entity) string {
	if entity.Table != "" {
		return entity.Table
	}
	return entity.Name
}

func tableColumn(table *schema.Table, name string) *schema.Column {
	for _, column := range table.Columns {
		if column.Name == name {
			return column
		}
	}
	return nil
}

// refreshTable sync columns, primary key and indexes with the entity.
// Existing column objects are updated in place so attached foreign keys keep
// pointing at them.
func (engine *Engine) refreshTable(table *schema.Table, entity *entreg.Entity) {
	for _, column := range entity.Columns {
		if column.DataType == "" {
			continue
		}
		if existing := tableColumn(table, column.DBName); existing != nil {
			*existing = *engine.entityColumn(column)
		} else {
			table.Columns = append(table.Columns, engine.entityColumn(column))
		}
	}

	table.PrimaryKey = nil
	for _, pk := range entity.PrimaryColumns {
		if column := tableColumn(table, pk.DBName); column != nil {
			table.PrimaryKey = append(table.PrimaryKey, column)
		}
	}

	table.Indexes = nil
	for _, index := range entity.Indexes {
		var columns []*schema.Column
		for _, opt := range index.Fields {
			if opt.Column == nil {
				continue
			}
			if column := tableColumn(table, opt.Column.DBName); column != nil {
				columns = append(columns, column)
			}
		}
		if len(columns) == 0 {
			continue
		}
		table.Indexes = append(table.Indexes, &schema.Index{
			Name:    index.Name,
			Unique:  strings.EqualFold(index.Class, "UNIQUE"),
			Columns: columns,
		})
	}
}

// entityColumn translate one entity column into its table column
func (engine *Engine) entityColumn(column *entreg.Column) *schema.Column {
	sc := &schema.Column{
		Name:      column.DBName,
		Unique:    column.Unique,
		Increment: column.AutoIncrement,
		Nullable:  !column.NotNull && !column.PrimaryKey,
	}

	switch column.DataType {
	case entreg.Bool:
		sc.Type = field.TypeBool
	case entreg.Int:
		sc.Type = intType(column.Size)
	case entreg.Uint:
		sc.Type = uintType(column.Size)
	case entreg.Float:
		if column.Size == 32 {
			sc.Type = field.TypeFloat32
		} else {
			sc.Type = field.TypeFloat64
		}
		if column.Precision > 0 {
			sc.SchemaType = map[string]string{engine.dialect: decimalType(column)}
		}
	case entreg.String:
		sc.Type = field.TypeString
		sc.Size = int64(column.Size)
	case entreg.Time:
		sc.Type = field.TypeTime
	case entreg.Bytes:
		sc.Type = field.TypeBytes
	case entreg.Enum:
		sc.Type = field.TypeEnum
		sc.Enums = column.EnumValues
	default:
		// data types declared by tag or by the model type itself
		switch strings.ToLower(string(column.DataType)) {
		case "json", "jsonb":
			sc.Type = field.TypeJSON
		case "uuid":
			sc.Type = field.TypeUUID
		default:
			sc.Type = field.TypeOther
			sc.SchemaType = map[string]string{engine.dialect: string(column.DataType)}
		}
	}

	if column.HasDefaultValue && !column.AutoIncrement && !skipDefault(column.DefaultValue) {
		if column.DefaultValueInterface != nil {
			sc.Default = column.DefaultValueInterface
		} else {
			sc.Default = column.DefaultValue
		}
	}
	return sc
}

// skipDefault reports default values no portable DDL exists for, functions
// and explicit nulls
func skipDefault(value string) bool {
	return value == "" || strings.ToLower(value) == "null" ||
		(strings.Contains(value, "(") && strings.Contains(value, ")"))
}

func intType(size int) field.Type {
	switch size {
	case 8:
		return field.TypeInt8
	case 16:
		return field.TypeInt16
	case 32:
		return field.TypeInt32
	}
	return field.TypeInt64
}

func uintType(size int) field.Type {
	switch size {
	case 8:
		return field.TypeUint8
	case 16:
		return field.TypeUint16
	case 32:
		return field.TypeUint32
	}
	return field.TypeUint64
}

func decimalType(column *entreg.Column) string {
	if column.Scale > 0 {
		return fmt.Sprintf("decimal(%d,%d)", column.Precision, column.Scale)
	}
	return fmt.Sprintf("decimal(%d)", column.Precision)
}

// referenceOption map a declared constraint action onto the migration engine
func referenceOption(s string) schema.ReferenceOption {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASCADE":
		return schema.Cascade
	case "RESTRICT":
		return schema.Restrict
	case "SET NULL":
		return schema.SetNull
	case "SET DEFAULT":
		return schema.SetDefault
	case "NO ACTION":
		return schema.NoAction
	}
	return schema.ReferenceOption(s)
}
