package entreg

import (
	"time"

	"github.com/entreg/entreg/logger"
)

// ConfigOption use functional option for registry Config.
type ConfigOption func(c *Config)

// WithNamingStrategy set entity namer.
func WithNamingStrategy(namer Namer) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = namer
	}
}

// WithLogger set logger.
func WithLogger(l logger.Interface) ConfigOption {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithNowFunc set now func.
func WithNowFunc(fn func() time.Time) ConfigOption {
	return func(c *Config) {
		c.NowFunc = fn
	}
}

// WithStrictAssociations fail on associations whose target entity is not
// declared.
func WithStrictAssociations() ConfigOption {
	return func(c *Config) {
		c.StrictAssociations = true
	}
}

// EntityOption use functional option for entity declarations.
type EntityOption func(e *Entity)

// WithTableName set table name.
func WithTableName(table string) EntityOption {
	return func(e *Entity) {
		e.Table = table
	}
}

// WithEntityComment set table comment.
func WithEntityComment(comment string) EntityOption {
	return func(e *Entity) {
		e.Options.Comment = comment
	}
}

// WithTimestamps manage creation and update stamps on the entity.
func WithTimestamps() EntityOption {
	return func(e *Entity) {
		e.Options.Timestamps = true
	}
}

// WithCreatedAtColumn set the creation stamp column.
func WithCreatedAtColumn(column string) EntityOption {
	return func(e *Entity) {
		e.SetCreatedAt(column)
	}
}

// WithUpdatedAtColumn set the update stamp column.
func WithUpdatedAtColumn(column string) EntityOption {
	return func(e *Entity) {
		e.SetUpdatedAt(column)
	}
}

// WithEntitySetting set one engine specific setting.
func WithEntitySetting(key, value string) EntityOption {
	return func(e *Entity) {
		if e.Options.Settings == nil {
			e.Options.Settings = map[string]string{}
		}
		e.Options.Settings[key] = value
	}
}
