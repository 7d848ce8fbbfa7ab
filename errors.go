package entreg

import (
	"errors"
)

var (
	// ErrInvalidEntity invalid entity declaration, only struct values and *Entity definitions accepted
	ErrInvalidEntity = errors.New("invalid entity declaration")
	// ErrMissingJoinEntity belongs-to-many declared without a join entity
	ErrMissingJoinEntity = errors.New("missing join entity")
	// ErrDuplicateEntity entity name already registered for a different model type
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrAssociationTargetMissing association target not registered, reported in strict mode only
	ErrAssociationTargetMissing = errors.New("association target not registered")
	// ErrMissingPrimaryKey primary key required
	ErrMissingPrimaryKey = errors.New("primary key required")
	// ErrUnsupportedDataType unsupported column data type
	ErrUnsupportedDataType = errors.New("unsupported data type")
	// ErrEngineRequired registration requires an engine
	ErrEngineRequired = errors.New("engine required")
)
