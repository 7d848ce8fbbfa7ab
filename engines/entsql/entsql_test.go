package entsql

import (
	"context"
	"testing"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entreg/entreg"
)

func TestNewEngine(t *testing.T) {
	db, mk, err := sqlmock.New()
	require.NoError(t, err)

	engine := NewEngine(sql.OpenDB(dialect.SQLite, db))
	assert.Equal(t, "entsql/sqlite3", engine.Name())
	assert.Same(t, db, engine.DB())

	mk.ExpectClose()
	require.NoError(t, engine.Close())
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("presto", "dsn")
	assert.Error(t, err)
}

func TestDefineModelHoldsBackEmptyEntities(t *testing.T) {
	db, mk, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	engine := NewEngine(sql.OpenDB(dialect.SQLite, db))
	handle, err := engine.DefineModel(context.Background(), entreg.NewEntity("UserSpeak"))
	require.NoError(t, err)
	assert.Equal(t, "UserSpeak", handle.ModelName())
	assert.Empty(t, handle.(*Handle).Table().Columns)

	// No column means no DDL, the table waits for association resolution.
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestCreateAssociationUndefinedModel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	engine := NewEngine(sql.OpenDB(dialect.SQLite, db))
	_, err = engine.CreateAssociation(context.Background(), entreg.AssociationRequest{
		Association: &entreg.Association{Name: "Account", Kind: entreg.HasOne},
		Source:      entreg.NewEntity("User"),
		Target:      entreg.NewEntity("Account"),
	})
	assert.ErrorIs(t, err, ErrModelNotDefined)
}

func TestEntityColumn(t *testing.T) {
	engine := &Engine{dialect: dialect.SQLite}

	columnTests := []struct {
		name   string
		column *entreg.Column
		check  func(t *testing.T, sc *schema.Column)
	}{
		{"bool", &entreg.Column{Name: "Active", DBName: "active", DataType: entreg.Bool}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeBool, sc.Type)
			assert.True(t, sc.Nullable)
		}},
		{"int8", &entreg.Column{DBName: "level", DataType: entreg.Int, Size: 8}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeInt8, sc.Type)
		}},
		{"int32", &entreg.Column{DBName: "count", DataType: entreg.Int, Size: 32}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeInt32, sc.Type)
		}},
		{"int64", &entreg.Column{DBName: "id", DataType: entreg.Int, Size: 64}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeInt64, sc.Type)
		}},
		{"uint16", &entreg.Column{DBName: "age", DataType: entreg.Uint, Size: 16}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeUint16, sc.Type)
		}},
		{"uint default size", &entreg.Column{DBName: "age", DataType: entreg.Uint}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeUint64, sc.Type)
		}},
		{"float32", &entreg.Column{DBName: "ratio", DataType: entreg.Float, Size: 32}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeFloat32, sc.Type)
		}},
		{"decimal", &entreg.Column{DBName: "price", DataType: entreg.Float, Precision: 10, Scale: 2}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeFloat64, sc.Type)
			assert.Equal(t, map[string]string{dialect.SQLite: "decimal(10,2)"}, sc.SchemaType)
		}},
		{"string with size", &entreg.Column{DBName: "name", DataType: entreg.String, Size: 100}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeString, sc.Type)
			assert.Equal(t, int64(100), sc.Size)
		}},
		{"time", &entreg.Column{DBName: "created_at", DataType: entreg.Time}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeTime, sc.Type)
		}},
		{"bytes", &entreg.Column{DBName: "payload", DataType: entreg.Bytes}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeBytes, sc.Type)
		}},
		{"enum", &entreg.Column{DBName: "state", DataType: entreg.Enum, EnumValues: []string{"on", "off"}}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeEnum, sc.Type)
			assert.Equal(t, []string{"on", "off"}, sc.Enums)
		}},
		{"json", &entreg.Column{DBName: "specs", DataType: "json"}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeJSON, sc.Type)
		}},
		{"uuid", &entreg.Column{DBName: "token", DataType: "uuid"}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeUUID, sc.Type)
		}},
		{"custom type", &entreg.Column{DBName: "location", DataType: "geometry"}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, field.TypeOther, sc.Type)
			assert.Equal(t, map[string]string{dialect.SQLite: "geometry"}, sc.SchemaType)
		}},
		{"primary key not nullable", &entreg.Column{DBName: "id", DataType: entreg.Uint, PrimaryKey: true, AutoIncrement: true, HasDefaultValue: true}, func(t *testing.T, sc *schema.Column) {
			assert.False(t, sc.Nullable)
			assert.True(t, sc.Increment)
			assert.Nil(t, sc.Default)
		}},
		{"not null", &entreg.Column{DBName: "name", DataType: entreg.String, NotNull: true}, func(t *testing.T, sc *schema.Column) {
			assert.False(t, sc.Nullable)
		}},
		{"unique", &entreg.Column{DBName: "email", DataType: entreg.String, Unique: true}, func(t *testing.T, sc *schema.Column) {
			assert.True(t, sc.Unique)
		}},
		{"typed default", &entreg.Column{DBName: "age", DataType: entreg.Uint, HasDefaultValue: true, DefaultValue: "18", DefaultValueInterface: uint64(18)}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, uint64(18), sc.Default)
		}},
		{"string default", &entreg.Column{DBName: "role", DataType: entreg.String, HasDefaultValue: true, DefaultValue: "guest"}, func(t *testing.T, sc *schema.Column) {
			assert.Equal(t, "guest", sc.Default)
		}},
		{"function default skipped", &entreg.Column{DBName: "created_at", DataType: entreg.Time, HasDefaultValue: true, DefaultValue: "now()"}, func(t *testing.T, sc *schema.Column) {
			assert.Nil(t, sc.Default)
		}},
	}

	for _, test := range columnTests {
		t.Run(test.name, func(t *testing.T) {
			test.check(t, engine.entityColumn(test.column))
		})
	}
}

func TestRefreshTable(t *testing.T) {
	engine := &Engine{dialect: dialect.SQLite}

	user := entreg.NewEntity("User")
	user.SetColumn(&entreg.Column{Name: "ID", DataType: entreg.Uint, PrimaryKey: true, AutoIncrement: true})
	name := user.SetColumn(&entreg.Column{Name: "Name", DataType: entreg.String})
	user.MergeIndex(&entreg.Index{Name: "idx_users_name", Class: "UNIQUE", Fields: []entreg.IndexOption{{Column: name}}})

	table := &schema.Table{Name: "users"}
	engine.refreshTable(table, user)

	require.Len(t, table.Columns, 2)
	require.Len(t, table.PrimaryKey, 1)
	assert.Equal(t, "id", table.PrimaryKey[0].Name)
	assert.True(t, table.PrimaryKey[0].Increment)
	require.Len(t, table.Indexes, 1)
	assert.True(t, table.Indexes[0].Unique)
	assert.Equal(t, "idx_users_name", table.Indexes[0].Name)

	// Columns appearing later, like resolved foreign keys, are appended while
	// existing columns keep their identity.
	before := tableColumn(table, "id")
	user.SetColumn(&entreg.Column{Name: "ManagerID", DataType: entreg.Uint})
	engine.refreshTable(table, user)

	require.Len(t, table.Columns, 3)
	assert.Same(t, before, tableColumn(table, "id"))
	assert.NotNil(t, tableColumn(table, "manager_id"))
}

func TestReferenceOption(t *testing.T) {
	optionTests := []struct {
		in   string
		want schema.ReferenceOption
	}{
		{"CASCADE", schema.Cascade},
		{"cascade", schema.Cascade},
		{"SET NULL", schema.SetNull},
		{"set default", schema.SetDefault},
		{"RESTRICT", schema.Restrict},
		{"NO ACTION", schema.NoAction},
		{"", schema.ReferenceOption("")},
	}

	for _, test := range optionTests {
		assert.Equal(t, test.want, referenceOption(test.in), "referenceOption(%q)", test.in)
	}
}

func TestJoinSymbol(t *testing.T) {
	join := &schema.Table{Name: "user_speaks"}
	refs := []entreg.Reference{{ForeignKey: &entreg.Column{DBName: "user_id"}}}
	assert.Equal(t, "user_speaks_user_id", joinSymbol(join, refs))
	assert.Equal(t, "user_speaks", joinSymbol(join, nil))
}
