package entreg

import (
	"fmt"
	"go/ast"
	"reflect"
)

// Parse build an entity definition from a struct value. Association fields
// keep their targets as names; nothing here requires the targets to exist.
func Parse(dest interface{}, namer Namer) (*Entity, error) {
	if dest == nil {
		return nil, fmt.Errorf("%w: %+v when parsing entity", ErrUnsupportedDataType, dest)
	}

	modelType := reflect.ValueOf(dest).Type()
	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		if modelType.PkgPath() == "" {
			return nil, fmt.Errorf("%w: %+v when parsing entity", ErrUnsupportedDataType, dest)
		}
		return nil, fmt.Errorf("%w: %v.%v when parsing entity", ErrUnsupportedDataType, modelType.PkgPath(), modelType.Name())
	}

	if modelType.Name() == "" {
		return nil, fmt.Errorf("%w: anonymous struct when parsing entity", ErrUnsupportedDataType)
	}

	if namer == nil {
		namer = NamingStrategy{}
	}

	entity := NewEntity(entityNameForType(modelType))
	entity.ModelType = modelType
	entity.namer = namer
	entity.Table = namer.TableName(entity.Name)

	if tabler, ok := reflect.New(modelType).Interface().(Tabler); ok {
		entity.Table = tabler.TableName()
	}

	var deferred []reflect.StructField
	if err := entity.parseStructFields(modelType, "", &deferred); err != nil {
		return nil, err
	}

	// an untagged id column backs the primary key
	if column := entity.LookUpColumn("id"); column != nil {
		if column.PrimaryKey {
			entity.PrioritizedPrimaryColumn = column
		} else if len(entity.PrimaryColumns) == 0 {
			column.PrimaryKey = true
			if column.DataType == Int || column.DataType == Uint {
				column.AutoIncrement = true
				column.HasDefaultValue = true
			}
			entity.PrioritizedPrimaryColumn = column
			entity.PrimaryColumns = append(entity.PrimaryColumns, column)
		}
	}

	// associations parse after every column is known so key guessing can see
	// the whole struct
	for _, fieldStruct := range deferred {
		assoc, err := entity.parseAssociation(fieldStruct)
		if err != nil {
			return nil, err
		}
		if _, err := entity.SetAssociation(assoc); err != nil {
			return nil, err
		}
	}

	return entity, nil
}

func (entity *Entity) parseStructFields(structType reflect.Type, prefix string, deferred *[]reflect.StructField) error {
	for i := 0; i < structType.NumField(); i++ {
		fieldStruct := structType.Field(i)
		if !ast.IsExported(fieldStruct.Name) {
			continue
		}

		column, err := entity.parseColumn(fieldStruct)
		if err != nil {
			return err
		}

		_, tagged := column.TagSettings["EMBEDDED"]
		if (tagged || (fieldStruct.Anonymous && column.DataType == "" && (column.Creatable || column.Updatable || column.Readable))) &&
			column.IndirectType.Kind() == reflect.Struct {
			if err := entity.parseStructFields(column.IndirectType, prefix+column.TagSettings["EMBEDDEDPREFIX"], deferred); err != nil {
				return err
			}
			continue
		}

		if column.DataType == "" && !column.Creatable && !column.Updatable && !column.Readable {
			continue
		}

		if column.DataType == "" && column.Creatable {
			*deferred = append(*deferred, fieldStruct)
			continue
		}

		if column.DataType == "" {
			continue
		}

		if prefix != "" {
			if column.DBName == "" {
				column.DBName = entity.namerOrDefault().ColumnName(entity.Table, column.Name)
			}
			column.DBName = prefix + column.DBName
		}

		entity.SetColumn(column)
		for _, index := range entity.parseColumnIndexes(column) {
			entity.MergeIndex(index)
		}
	}
	return nil
}

func entityNameForType(modelType reflect.Type) string {
	if en, ok := reflect.New(modelType).Interface().(EntityNamer); ok {
		return en.EntityName()
	}
	return modelType.Name()
}
