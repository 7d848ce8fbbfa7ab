package entreg

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/entreg/entreg/utils"
)

// DataType entity column data type
type DataType string

// TimeType auto-managed timestamp resolution
type TimeType int64

const (
	UnixSecond      TimeType = 1
	UnixMillisecond TimeType = 2
	UnixNanosecond  TimeType = 3
)

const (
	Bool   DataType = "bool"
	Int    DataType = "int"
	Uint   DataType = "uint"
	Float  DataType = "float"
	String DataType = "string"
	Time   DataType = "time"
	Bytes  DataType = "bytes"
	Enum   DataType = "enum"
)

// Column describes one column of an entity
type Column struct {
	Name                  string
	DBName                string
	DataType              DataType
	Size                  int
	Precision             int
	Scale                 int
	PrimaryKey            bool
	AutoIncrement         bool
	NotNull               bool
	Unique                bool
	HasDefaultValue       bool
	DefaultValue          string
	DefaultValueInterface interface{}
	Comment               string
	EnumValues            []string
	AutoCreateTime        TimeType
	AutoUpdateTime        TimeType
	Creatable             bool
	Updatable             bool
	Readable              bool
	FieldType             reflect.Type
	IndirectType          reflect.Type
	StructField           reflect.StructField
	TagSettings           map[string]string
	Entity                *Entity
}

func (entity *Entity) parseColumn(fieldStruct reflect.StructField) (*Column, error) {
	tagSettings := ParseTagSetting(fieldStruct.Tag.Get(TagName), ";")

	column := &Column{
		Name:         fieldStruct.Name,
		FieldType:    fieldStruct.Type,
		IndirectType: fieldStruct.Type,
		StructField:  fieldStruct,
		Creatable:    true,
		Updatable:    true,
		Readable:     true,
		Entity:       entity,
		TagSettings:  tagSettings,
	}

	for column.IndirectType.Kind() == reflect.Ptr {
		column.IndirectType = column.IndirectType.Elem()
	}

	fieldValue := reflect.New(column.IndirectType)
	// if column is valuer, used its value or first fields as data type
	valuer, isValuer := fieldValue.Interface().(driver.Valuer)
	if isValuer {
		if _, ok := fieldValue.Interface().(DataTyper); !ok {
			if v, err := valuer.Value(); reflect.ValueOf(v).IsValid() && err == nil {
				fieldValue = reflect.ValueOf(v)
			}

			var getRealFieldValue func(reflect.Value)
			getRealFieldValue = func(v reflect.Value) {
				rv := reflect.Indirect(v)
				if rv.Kind() == reflect.Struct && !rv.Type().ConvertibleTo(reflect.TypeOf(time.Time{})) {
					for i := 0; i < rv.Type().NumField(); i++ {
						for key, value := range ParseTagSetting(rv.Type().Field(i).Tag.Get(TagName), ";") {
							if _, ok := column.TagSettings[key]; !ok {
								column.TagSettings[key] = value
							}
						}

						newFieldType := rv.Type().Field(i).Type
						for newFieldType.Kind() == reflect.Ptr {
							newFieldType = newFieldType.Elem()
						}

						fieldValue = reflect.New(newFieldType)
						if rv.Type() != reflect.Indirect(fieldValue).Type() {
							getRealFieldValue(fieldValue)
						}

						if fieldValue.IsValid() {
							return
						}
					}
				}
			}
			getRealFieldValue(fieldValue)
		}
	}

	if v, ok := tagSettings["COLUMN"]; ok {
		column.DBName = v
	}

	if val, ok := tagSettings["PRIMARYKEY"]; ok && utils.CheckTruth(val) {
		column.PrimaryKey = true
	} else if val, ok := tagSettings["PRIMARY_KEY"]; ok && utils.CheckTruth(val) {
		column.PrimaryKey = true
	}

	if val, ok := tagSettings["AUTOINCREMENT"]; ok && utils.CheckTruth(val) {
		column.AutoIncrement = true
		column.HasDefaultValue = true
	}

	if v, ok := tagSettings["DEFAULT"]; ok {
		column.HasDefaultValue = true
		column.DefaultValue = v
	}

	if num, ok := tagSettings["SIZE"]; ok {
		var err error
		if column.Size, err = strconv.Atoi(num); err != nil {
			column.Size = -1
		}
	}

	if p, ok := tagSettings["PRECISION"]; ok {
		column.Precision, _ = strconv.Atoi(p)
	}

	if s, ok := tagSettings["SCALE"]; ok {
		column.Scale, _ = strconv.Atoi(s)
	}

	if val, ok := tagSettings["NOT NULL"]; ok && utils.CheckTruth(val) {
		column.NotNull = true
	} else if val, ok := tagSettings["NOTNULL"]; ok && utils.CheckTruth(val) {
		column.NotNull = true
	}

	if val, ok := tagSettings["UNIQUE"]; ok && utils.CheckTruth(val) {
		column.Unique = true
	}

	if val, ok := tagSettings["COMMENT"]; ok {
		column.Comment = val
	}

	// default value is a function or null, skip parsing it into the column type
	skipParseDefaultValue := strings.Contains(column.DefaultValue, "(") &&
		strings.Contains(column.DefaultValue, ")") || strings.ToLower(column.DefaultValue) == "null" || column.DefaultValue == ""

	switch reflect.Indirect(fieldValue).Kind() {
	case reflect.Bool:
		column.DataType = Bool
		if column.HasDefaultValue && !skipParseDefaultValue {
			var err error
			if column.DefaultValueInterface, err = strconv.ParseBool(column.DefaultValue); err != nil {
				return nil, fmt.Errorf("failed to parse %v as default value for bool, got error: %v", column.DefaultValue, err)
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		column.DataType = Int
		if column.HasDefaultValue && !skipParseDefaultValue {
			var err error
			if column.DefaultValueInterface, err = strconv.ParseInt(column.DefaultValue, 0, 64); err != nil {
				return nil, fmt.Errorf("failed to parse %v as default value for int, got error: %v", column.DefaultValue, err)
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		column.DataType = Uint
		if column.HasDefaultValue && !skipParseDefaultValue {
			var err error
			if column.DefaultValueInterface, err = strconv.ParseUint(column.DefaultValue, 0, 64); err != nil {
				return nil, fmt.Errorf("failed to parse %v as default value for uint, got error: %v", column.DefaultValue, err)
			}
		}
	case reflect.Float32, reflect.Float64:
		column.DataType = Float
		if column.HasDefaultValue && !skipParseDefaultValue {
			var err error
			if column.DefaultValueInterface, err = strconv.ParseFloat(column.DefaultValue, 64); err != nil {
				return nil, fmt.Errorf("failed to parse %v as default value for float, got error: %v", column.DefaultValue, err)
			}
		}
	case reflect.String:
		column.DataType = String
		if column.HasDefaultValue && !skipParseDefaultValue {
			column.DefaultValue = strings.Trim(column.DefaultValue, "'")
			column.DefaultValue = strings.Trim(column.DefaultValue, `"`)
			column.DefaultValueInterface = column.DefaultValue
		}
	case reflect.Struct:
		if _, ok := fieldValue.Interface().(*time.Time); ok {
			column.DataType = Time
		} else if fieldValue.Type().ConvertibleTo(reflect.TypeOf(&time.Time{})) {
			column.DataType = Time
		} else if fieldValue.Type().ConvertibleTo(reflect.TypeOf(&sql.NullTime{})) {
			column.DataType = Time
		}
		if column.HasDefaultValue && !skipParseDefaultValue && column.DataType == Time {
			if _, err := now.Parse(column.DefaultValue); err != nil {
				return nil, fmt.Errorf("failed to parse %v as default value for time, got error: %v", column.DefaultValue, err)
			}
		}
	case reflect.Array, reflect.Slice:
		if reflect.Indirect(fieldValue).Type().Elem() == reflect.TypeOf(uint8(0)) {
			column.DataType = Bytes
		}
	}

	if dataTyper, ok := fieldValue.Interface().(DataTyper); ok {
		column.DataType = dataTyper.EntityDataType()
	}

	if v, ok := tagSettings["ENUM"]; ok {
		column.DataType = Enum
		for _, e := range strings.Split(v, "|") {
			column.EnumValues = append(column.EnumValues, strings.TrimSpace(e))
		}
	}

	if v, ok := tagSettings["AUTOCREATETIME"]; ok || (column.Name == "CreatedAt" && (column.DataType == Time || column.DataType == Int || column.DataType == Uint)) {
		if strings.ToUpper(v) == "NANO" {
			column.AutoCreateTime = UnixNanosecond
		} else if strings.ToUpper(v) == "MILLI" {
			column.AutoCreateTime = UnixMillisecond
		} else {
			column.AutoCreateTime = UnixSecond
		}
	}

	if v, ok := tagSettings["AUTOUPDATETIME"]; ok || (column.Name == "UpdatedAt" && (column.DataType == Time || column.DataType == Int || column.DataType == Uint)) {
		if strings.ToUpper(v) == "NANO" {
			column.AutoUpdateTime = UnixNanosecond
		} else if strings.ToUpper(v) == "MILLI" {
			column.AutoUpdateTime = UnixMillisecond
		} else {
			column.AutoUpdateTime = UnixSecond
		}
	}

	if val, ok := tagSettings["TYPE"]; ok {
		switch DataType(strings.ToLower(val)) {
		case Bool, Int, Uint, Float, String, Time, Bytes:
			column.DataType = DataType(strings.ToLower(val))
		default:
			column.DataType = DataType(val)
		}
	}

	if column.Size == 0 {
		switch reflect.Indirect(fieldValue).Kind() {
		case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64, reflect.Float64:
			column.Size = 64
		case reflect.Int8, reflect.Uint8:
			column.Size = 8
		case reflect.Int16, reflect.Uint16:
			column.Size = 16
		case reflect.Int32, reflect.Uint32, reflect.Float32:
			column.Size = 32
		}
	}

	if val, ok := tagSettings["-"]; ok {
		switch val {
		case "-":
			column.Creatable = false
			column.Updatable = false
			column.Readable = false
			column.DataType = ""
		case "migration":
			column.Creatable = false
			column.Updatable = false
		}
	}

	if v, ok := tagSettings["->"]; ok {
		column.Creatable = false
		column.Updatable = false
		if strings.ToLower(v) == "false" {
			column.Readable = false
		} else {
			column.Readable = true
		}
	}

	if v, ok := tagSettings["<-"]; ok {
		column.Creatable = true
		column.Updatable = true

		if v != "<-" {
			if !strings.Contains(v, "create") {
				column.Creatable = false
			}
			if !strings.Contains(v, "update") {
				column.Updatable = false
			}
		}
	}

	return column, nil
}
