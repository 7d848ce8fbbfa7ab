package entreg_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/engines/memory"
	"github.com/entreg/entreg/logger"
	"github.com/entreg/entreg/utils/tests"
)

func TestSetColumnKeepsIdentity(t *testing.T) {
	entity := entreg.NewEntity("Article")

	title := entity.SetColumn(&entreg.Column{Name: "Title", DataType: entreg.String})
	tests.AssertEqual(t, title.DBName, "title")

	replaced := entity.SetColumn(&entreg.Column{Name: "Title", DataType: entreg.String, Size: 255, NotNull: true})
	if replaced != title {
		t.Errorf("re-declaring a column should keep the stored identity")
	}
	tests.AssertEqual(t, title.Size, 255)
	tests.AssertEqual(t, title.NotNull, true)

	renamed := entity.SetColumn(&entreg.Column{Name: "Title", DBName: "headline", DataType: entreg.String})
	if renamed != title {
		t.Errorf("renaming a column should keep the stored identity")
	}
	if entity.LookUpColumn("headline") != title {
		t.Errorf("failed to look up the column by its new db name")
	}
	if _, ok := entity.ColumnsByDBName["title"]; ok {
		t.Errorf("the old db name should not resolve after renaming")
	}
	if len(entity.Columns) != 1 {
		t.Errorf("entity should hold one column, but got %v", len(entity.Columns))
	}
}

func TestSetColumnPrimaryKeys(t *testing.T) {
	entity := entreg.NewEntity("Event")

	id := entity.SetColumn(&entreg.Column{Name: "ID", DataType: entreg.Uint, PrimaryKey: true})
	entity.SetColumn(&entreg.Column{Name: "Kind", DataType: entreg.String})

	if len(entity.PrimaryColumns) != 1 || entity.PrioritizedPrimaryColumn != id {
		t.Errorf("entity should prioritize its only primary column")
	}

	// demoting the column clears the primary set
	entity.SetColumn(&entreg.Column{Name: "ID", DataType: entreg.Uint})
	if len(entity.PrimaryColumns) != 0 || entity.PrioritizedPrimaryColumn != nil {
		t.Errorf("re-declaring without primaryKey should clear the primary set")
	}
}

func TestSetAssociation(t *testing.T) {
	entity := entreg.NewEntity("User")

	posts, err := entity.SetAssociation(&entreg.Association{Name: "Posts", Kind: entreg.HasMany, Target: entreg.TargetRef{Name: "Post"}})
	if err != nil {
		t.Fatalf("failed to set association, got error %v", err)
	}

	replaced, err := entity.SetAssociation(&entreg.Association{Name: "Posts", Kind: entreg.BelongsToMany, JoinEntity: "user_posts", Target: entreg.TargetRef{Name: "Post"}})
	if err != nil {
		t.Fatalf("failed to replace association, got error %v", err)
	}
	if replaced != posts {
		t.Errorf("re-declaring an association should keep the stored identity")
	}
	tests.AssertEqual(t, posts.Kind, entreg.BelongsToMany)
	tests.AssertEqual(t, posts.JoinEntity, "user_posts")
	if len(entity.Associations) != 1 {
		t.Errorf("entity should hold one association, but got %v", len(entity.Associations))
	}

	_, err = entity.SetAssociation(&entreg.Association{Name: "Tags", Kind: entreg.BelongsToMany, Target: entreg.TargetRef{Name: "Tag"}})
	if !errors.Is(err, entreg.ErrMissingJoinEntity) {
		t.Errorf("expects %v, but got %v", entreg.ErrMissingJoinEntity, err)
	}
}

func TestEntityOptions(t *testing.T) {
	entity := entreg.NewEntity("Audit")
	entity.SetOptions(
		entreg.WithTableName("audit_log"),
		entreg.WithEntityComment("append only"),
		entreg.WithEntitySetting("ENGINE", "InnoDB"),
		entreg.WithTimestamps(),
	)

	tests.AssertEqual(t, entity.Table, "audit_log")
	tests.AssertEqual(t, entity.Options.Comment, "append only")
	tests.AssertEqual(t, entity.Options.Settings["ENGINE"], "InnoDB")
	tests.AssertEqual(t, entity.Options.Timestamps, true)
}

func TestRegisterRuntimeTimestamps(t *testing.T) {
	registry := entreg.NewRegistry(entreg.WithLogger(logger.Discard))

	audit := registry.Entity("Audit")
	audit.SetColumn(&entreg.Column{Name: "ID", DataType: entreg.Uint, PrimaryKey: true, Creatable: true, Updatable: true, Readable: true})
	audit.SetOptions(entreg.WithTimestamps())

	if _, err := registry.Register(context.Background(), memory.NewEngine()); err != nil {
		t.Fatalf("failed to register declarations, got error %v", err)
	}

	tests.AssertEqual(t, audit.Table, "audits")

	created := audit.LookUpColumn("CreatedAt")
	if created == nil {
		t.Fatalf("finalized entity should carry a CreatedAt column")
	}
	tests.AssertEqual(t, created.DBName, "created_at")
	tests.AssertEqual(t, created.DataType, entreg.Time)
	tests.AssertEqual(t, created.AutoCreateTime, entreg.UnixSecond)

	updated := audit.LookUpColumn("UpdatedAt")
	if updated == nil {
		t.Fatalf("finalized entity should carry an UpdatedAt column")
	}
	tests.AssertEqual(t, updated.DBName, "updated_at")
	tests.AssertEqual(t, updated.AutoUpdateTime, entreg.UnixSecond)
}

func TestRegisterCustomTimestampColumns(t *testing.T) {
	registry := entreg.NewRegistry(entreg.WithLogger(logger.Discard))

	audit := registry.Entity("Audit")
	audit.SetColumn(&entreg.Column{Name: "ID", DataType: entreg.Uint, PrimaryKey: true, Creatable: true, Updatable: true, Readable: true})
	audit.SetOptions(entreg.WithCreatedAtColumn("inserted_at"), entreg.WithUpdatedAtColumn("touched_at"))

	if _, err := registry.Register(context.Background(), memory.NewEngine()); err != nil {
		t.Fatalf("failed to register declarations, got error %v", err)
	}

	if created := audit.LookUpColumn("CreatedAt"); created == nil || created.DBName != "inserted_at" {
		t.Errorf("CreatedAt should back the inserted_at column, but got %+v", created)
	}
	if updated := audit.LookUpColumn("UpdatedAt"); updated == nil || updated.DBName != "touched_at" {
		t.Errorf("UpdatedAt should back the touched_at column, but got %+v", updated)
	}
}

func TestRegisterKeepsDeclaredTimestamps(t *testing.T) {
	registry := entreg.NewRegistry(entreg.WithLogger(logger.Discard))

	user, err := registry.Add(&tests.User{})
	if err != nil {
		t.Fatalf("failed to declare user, got error %v", err)
	}
	user.SetOptions(entreg.WithTimestamps())
	declared := user.LookUpColumn("CreatedAt")

	registry.Entity("UserSpeak")
	registry.Entity("user_friends")
	for _, declaration := range []interface{}{&tests.Account{}, &tests.Pet{}, &tests.Toy{}, &tests.Company{}, &tests.Language{}} {
		if _, err := registry.Add(declaration); err != nil {
			t.Fatalf("failed to declare %+v, got error %v", declaration, err)
		}
	}

	if _, err := registry.Register(context.Background(), memory.NewEngine()); err != nil {
		t.Fatalf("failed to register declarations, got error %v", err)
	}

	if got := user.LookUpColumn("CreatedAt"); got != declared {
		t.Errorf("the struct's own CreatedAt column should survive finalization")
	}
	tests.AssertEqual(t, declared.DBName, "created_at")
}

func TestRegistryNamingStrategy(t *testing.T) {
	registry := entreg.NewRegistry(
		entreg.WithLogger(logger.Discard),
		entreg.WithNamingStrategy(entreg.NamingStrategy{TablePrefix: "app_", SingularTable: true}),
	)

	company, err := registry.Add(&tests.Company{})
	if err != nil {
		t.Fatalf("failed to declare company, got error %v", err)
	}

	tests.AssertEqual(t, company.Table, "app_company")
}

func TestRegistryNowFunc(t *testing.T) {
	var called bool
	registry := entreg.NewRegistry(
		entreg.WithLogger(logger.Discard),
		entreg.WithNowFunc(func() time.Time {
			called = true
			return time.Unix(0, 0)
		}),
	)

	if _, err := registry.Register(context.Background(), memory.NewEngine()); err != nil {
		t.Fatalf("failed to register, got error %v", err)
	}
	if !called {
		t.Errorf("registration should clock itself with the configured now func")
	}
}

func TestModelsLookup(t *testing.T) {
	registry := entreg.NewRegistry(entreg.WithLogger(logger.Discard))
	if _, err := registry.Add(&tests.Company{}); err != nil {
		t.Fatalf("failed to declare company, got error %v", err)
	}

	models, err := registry.Register(context.Background(), memory.NewEngine())
	if err != nil {
		t.Fatalf("failed to register declarations, got error %v", err)
	}

	if models.Get("Company") == nil {
		t.Errorf("failed to get Company model")
	}
	if models.Get("Unknown") != nil {
		t.Errorf("unknown model lookup should return nil")
	}
	if models.Get("Company").Accessor("Unknown") != nil {
		t.Errorf("unknown accessor lookup should return nil")
	}
}
