package entreg

import (
	"time"

	"github.com/entreg/entreg/logger"
)

// Config registry config
type Config struct {
	// NamingStrategy derives table, column and index names from Go names.
	// Refer https://github.com/jinzhu/inflection for inflection rules
	NamingStrategy Namer

	// Logger
	Logger logger.Interface

	// NowFunc the function to be used when the registry stamps a time
	NowFunc func() time.Time

	// StrictAssociations fail registration when an association names an
	// entity that was never declared instead of skipping it
	StrictAssociations bool
}
