package entreg

// Tabler overrides the table name derived from the entity name
type Tabler interface {
	TableName() string
}

// EntityNamer overrides the entity name derived from the struct name
type EntityNamer interface {
	EntityName() string
}

// DataTyper overrides the column data type derived from the field type
type DataTyper interface {
	EntityDataType() DataType
}
