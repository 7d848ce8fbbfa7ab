package entsql

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"sync"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/entreg/entreg"
)

// ErrModelNotDefined is returned when an association names a model the
// engine never saw a definition for
var ErrModelNotDefined = errors.New("model not defined")

// Engine turns entity definitions into relational DDL through the ent
// migration engine. Every DefineModel and CreateAssociation diffs the tables
// declared so far against the connected database and applies what is missing,
// so registering twice is harmless.
type Engine struct {
	driver  *sql.Driver
	dialect string
	opts    []schema.MigrateOption

	mu     sync.Mutex
	tables map[string]*schema.Table
	order  []string
}

// Option configures an Engine
type Option func(engine *Engine)

// WithMigrateOptions pass options through to the ent migration engine
func WithMigrateOptions(opts ...schema.MigrateOption) Option {
	return func(engine *Engine) {
		engine.opts = append(engine.opts, opts...)
	}
}

// Open connect to the database named by dialect and dsn. The dialects the
// ent runtime knows are mysql, postgres and sqlite3.
func Open(dialect, dsn string, opts ...Option) (*Engine, error) {
	driver, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	return NewEngine(driver, opts...), nil
}

// NewEngine wrap an already open driver
func NewEngine(driver *sql.Driver, opts ...Option) *Engine {
	engine := &Engine{
		driver:  driver,
		dialect: driver.Dialect(),
		tables:  map[string]*schema.Table{},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

func (engine *Engine) Name() string { return "entsql/" + engine.dialect }

// DB expose the underlying connection
func (engine *Engine) DB() *stdsql.DB { return engine.driver.DB() }

// Close the underlying driver
func (engine *Engine) Close() error { return engine.driver.Close() }

// Handle identify a defined model and the table built for it
type Handle struct {
	entity *entreg.Entity
	table  *schema.Table
}

func (handle *Handle) ModelName() string { return handle.entity.Name }

// Table expose the migrated table definition
func (handle *Handle) Table() *schema.Table { return handle.table }

// Accessor identify a created association
type Accessor struct {
	assoc *entreg.Association
	fks   []*schema.ForeignKey
}

func (accessor *Accessor) AssociationName() string { return accessor.assoc.Name }

func (accessor *Accessor) AssociationKind() entreg.Kind { return accessor.assoc.Kind }

// ForeignKeys expose the constraints backing the association. Empty when the
// declaration disabled constraints.
func (accessor *Accessor) ForeignKeys() []*schema.ForeignKey { return accessor.fks }

// DefineModel build a table for the entity and migrate. Entities without any
// typed column, typically join entities declared by name only, are held back
// until associations fill them in.
func (engine *Engine) DefineModel(ctx context.Context, entity *entreg.Entity) (entreg.ModelHandle, error) {
	if entity == nil || entity.Name == "" {
		return nil, fmt.Errorf("%w: define model without an entity", entreg.ErrInvalidEntity)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	name := tableName(entity)
	table, ok := engine.tables[name]
	if !ok {
		table = &schema.Table{Name: name}
		engine.tables[name] = table
		engine.order = append(engine.order, name)
	}
	engine.refreshTable(table, entity)

	if err := engine.migrate(ctx); err != nil {
		return nil, err
	}
	return &Handle{entity: entity, table: table}, nil
}

// CreateAssociation attach foreign key constraints for the resolved
// association and migrate again, picking up the foreign key columns that
// resolution added to the entities.
func (engine *Engine) CreateAssociation(ctx context.Context, req entreg.AssociationRequest) (entreg.AssociationHandle, error) {
	if req.Association == nil || req.Source == nil || req.Target == nil {
		return nil, fmt.Errorf("%w: incomplete association request", entreg.ErrInvalidEntity)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	source, err := engine.lookupTable(req.Source)
	if err != nil {
		return nil, err
	}
	target, err := engine.lookupTable(req.Target)
	if err != nil {
		return nil, err
	}
	engine.refreshTable(source, req.Source)
	engine.refreshTable(target, req.Target)

	var join *schema.Table
	if req.Join != nil {
		if join, err = engine.lookupTable(req.Join); err != nil {
			return nil, err
		}
		engine.refreshTable(join, req.Join)
	}

	assoc := req.Association
	accessor := &Accessor{assoc: assoc}

	if assoc.Constraint != nil {
		switch assoc.Kind {
		case entreg.HasOne, entreg.HasMany:
			fk := engine.foreignKey(assoc.Constraint.Name, assoc, target, source, req.References)
			accessor.fks = append(accessor.fks, attachForeignKey(target, fk))

		case entreg.BelongsTo:
			fk := engine.foreignKey(assoc.Constraint.Name, assoc, source, target, req.References)
			accessor.fks = append(accessor.fks, attachForeignKey(source, fk))

		case entreg.BelongsToMany:
			if join == nil {
				return nil, fmt.Errorf("%w for %v on field %v", entreg.ErrMissingJoinEntity, req.Source.Name, assoc.Name)
			}
			var own, other []entreg.Reference
			for _, ref := range req.References {
				if ref.OwnPrimaryKey {
					own = append(own, ref)
				} else {
					other = append(other, ref)
				}
			}
			if len(own) > 0 {
				fk := engine.foreignKey(joinSymbol(join, own), assoc, join, source, own)
				accessor.fks = append(accessor.fks, attachForeignKey(join, fk))
			}
			if len(other) > 0 {
				fk := engine.foreignKey(joinSymbol(join, other), assoc, join, target, other)
				accessor.fks = append(accessor.fks, attachForeignKey(join, fk))
			}
		}
	}

	if err := engine.migrate(ctx); err != nil {
		return nil, err
	}
	return accessor, nil
}

func (engine *Engine) lookupTable(entity *entreg.Entity) (*schema.Table, error) {
	if table, ok := engine.tables[tableName(entity)]; ok {
		return table, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrModelNotDefined, entity.Name)
}

// foreignKey build one constraint on table pointing at refTable
func (engine *Engine) foreignKey(symbol string, assoc *entreg.Association, table, refTable *schema.Table, refs []entreg.Reference) *schema.ForeignKey {
	fk := &schema.ForeignKey{
		Symbol:   symbol,
		RefTable: refTable,
		OnUpdate: referenceOption(assoc.Constraint.OnUpdate),
		OnDelete: referenceOption(assoc.Constraint.OnDelete),
	}
	for _, ref := range refs {
		if column := tableColumn(table, ref.ForeignKey.DBName); column != nil {
			fk.Columns = append(fk.Columns, column)
		}
		if column := tableColumn(refTable, ref.PrimaryKey.DBName); column != nil {
			fk.RefColumns = append(fk.RefColumns, column)
		}
	}
	return fk
}

// attachForeignKey add the constraint to the table unless a constraint with
// the same symbol is already attached
func attachForeignKey(table *schema.Table, fk *schema.ForeignKey) *schema.ForeignKey {
	for _, existing := range table.ForeignKeys {
		if existing.Symbol == fk.Symbol {
			*existing = *fk
			return existing
		}
	}
	table.ForeignKeys = append(table.ForeignKeys, fk)
	return fk
}

// joinSymbol name a join table constraint after its first foreign key column,
// keeping the two constraints of one association apart
func joinSymbol(join *schema.Table, refs []entreg.Reference) string {
	if len(refs) == 0 {
		return join.Name
	}
	return join.Name + "_" + refs[0].ForeignKey.DBName
}

// migrate diff every declared table against the database
func (engine *Engine) migrate(ctx context.Context) error {
	tables := make([]*schema.Table, 0, len(engine.order))
	for _, name := range engine.order {
		table := engine.tables[name]
		if len(table.Columns) == 0 {
			continue
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil
	}

	migrate, err := schema.NewMigrate(engine.driver, engine.opts...)
	if err != nil {
		return err
	}
	return migrate.Create(ctx, tables...)
}
