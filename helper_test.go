package entreg_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/engines/memory"
	"github.com/entreg/entreg/logger"
	"github.com/entreg/entreg/utils/tests"
)

func checkEntity(t *testing.T, entity *entreg.Entity, v entreg.Entity, primaryColumns []string) {
	t.Run("CheckEntity/"+entity.Name, func(t *testing.T) {
		tests.AssertObjEqual(t, entity, v, "Name", "Table")

		for idx, column := range primaryColumns {
			var found bool
			for _, c := range entity.PrimaryColumns {
				if c.Name == column {
					found = true
				}
			}

			if idx == 0 {
				if entity.PrioritizedPrimaryColumn == nil {
					t.Errorf("entity %v has no prioritized primary column, want %v", entity, column)
				} else if entity.PrioritizedPrimaryColumn.Name != column {
					t.Errorf("entity %v prioritized primary column should be %v, but got %v", entity, column, entity.PrioritizedPrimaryColumn.Name)
				}
			}

			if !found {
				t.Errorf("entity %v failed to found primary column %v", entity, column)
			}
		}
	})
}

func checkEntityColumn(t *testing.T, entity *entreg.Entity, c *entreg.Column, fc func(*entreg.Column)) {
	t.Run("CheckColumn/"+c.Name, func(t *testing.T) {
		if fc != nil {
			fc(c)
		}

		parsed, ok := entity.ColumnsByDBName[c.DBName]
		if !ok {
			parsed, ok = entity.ColumnsByName[c.Name]
		}

		if !ok {
			t.Errorf("entity %v failed to look up column with name %v", entity, c.Name)
			return
		}

		tests.AssertObjEqual(t, parsed, c,
			"Name", "DBName", "DataType", "PrimaryKey", "AutoIncrement", "Creatable", "Updatable", "Readable",
			"HasDefaultValue", "DefaultValue", "NotNull", "Unique", "Comment", "Size", "Precision")

		for _, name := range []string{c.DBName, c.Name} {
			if name != "" {
				if column := entity.LookUpColumn(name); column == nil || (column.Name != name && column.DBName != name) {
					t.Errorf("entity %v failed to look up column with name %v", entity, name)
				}
			}
		}

		if c.PrimaryKey {
			var found bool
			for _, primaryColumn := range entity.PrimaryColumns {
				if primaryColumn == parsed {
					found = true
				}
			}

			if !found {
				t.Errorf("entity %v primary columns should contain %v", entity, c.Name)
			}
		}
	})
}

type Relation struct {
	Name       string
	Kind       entreg.Kind
	Entity     string
	Target     string
	JoinTable  JoinTable
	References []Reference
}

type JoinTable struct {
	Name   string
	Table  string
	Fields []entreg.Column
}

type Reference struct {
	PrimaryKey    string
	PrimaryEntity string
	ForeignKey    string
	ForeignEntity string
	OwnPrimaryKey bool
}

func checkEntityAssociation(t *testing.T, entity *entreg.Entity, relation Relation) {
	t.Run("CheckAssociation/"+relation.Name, func(t *testing.T) {
		assoc, ok := entity.AssociationsByName[relation.Name]
		if !ok {
			t.Errorf("entity %v failed to find association by name %v", entity, relation.Name)
			return
		}

		if assoc.Kind != relation.Kind {
			t.Errorf("entity %v association %v kind expects %v, but got %v", entity, relation.Name, relation.Kind, assoc.Kind)
		}

		if assoc.Entity.Name != relation.Entity {
			t.Errorf("entity %v association's entity expects %v, but got %v", entity, relation.Entity, assoc.Entity.Name)
		}

		if assoc.TargetEntity == nil {
			t.Errorf("entity %v association %v has no resolved target", entity, relation.Name)
			return
		}

		if assoc.TargetEntity.Name != relation.Target {
			t.Errorf("entity %v association's target expects %v, but got %v", entity, relation.Target, assoc.TargetEntity.Name)
		}

		if assoc.JoinTable != nil {
			if assoc.JoinTable.Name != relation.JoinTable.Name {
				t.Errorf("entity %v association's join entity expects %v, but got %v", entity, relation.JoinTable.Name, assoc.JoinTable.Name)
			}

			if assoc.JoinTable.Table != relation.JoinTable.Table {
				t.Errorf("entity %v association's join table expects %v, but got %v", entity, relation.JoinTable.Table, assoc.JoinTable.Table)
			}

			for i := range relation.JoinTable.Fields {
				checkEntityColumn(t, assoc.JoinTable, &relation.JoinTable.Fields[i], nil)
			}
		}

		if len(relation.References) != len(assoc.References) {
			t.Errorf("entity %v association %v reference count expects %v, but got %v", entity, relation.Name, len(relation.References), len(assoc.References))
		}

		for _, ref := range relation.References {
			var found bool
			for _, rf := range assoc.References {
				if rf.PrimaryKey.Name == ref.PrimaryKey && rf.PrimaryKey.Entity.Name == ref.PrimaryEntity &&
					rf.ForeignKey.Name == ref.ForeignKey && rf.ForeignKey.Entity.Name == ref.ForeignEntity &&
					rf.OwnPrimaryKey == ref.OwnPrimaryKey {
					found = true
				}
			}

			if !found {
				var refs []string
				for _, rf := range assoc.References {
					refs = append(refs, fmt.Sprintf(
						"{PrimaryKey: %v.%v ForeignKey: %v.%v OwnPrimaryKey: %v}",
						rf.PrimaryKey.Entity.Name, rf.PrimaryKey.Name, rf.ForeignKey.Entity.Name, rf.ForeignKey.Name, rf.OwnPrimaryKey,
					))
				}
				t.Errorf("entity %v association %v failed to find reference %+v, has %v", entity, relation.Name, ref, strings.Join(refs, ", "))
			}
		}
	})
}

// checkStructAssociation declares every value (strings declare an empty
// runtime entity, which is how join entities enter the registered set),
// registers the lot against the in-memory engine and checks the expected
// relations on the first struct declaration.
func checkStructAssociation(t *testing.T, declarations []interface{}, relations ...Relation) {
	registry := entreg.NewRegistry(entreg.WithLogger(logger.Discard))

	var first *entreg.Entity
	for _, declaration := range declarations {
		if name, ok := declaration.(string); ok {
			registry.Entity(name)
			continue
		}

		entity, err := registry.Add(declaration)
		if err != nil {
			t.Fatalf("failed to declare %+v, got error %v", declaration, err)
		}
		if first == nil {
			first = entity
		}
	}

	if _, err := registry.Register(context.Background(), memory.NewEngine()); err != nil {
		t.Fatalf("failed to register declarations, got error %v", err)
	}

	for _, relation := range relations {
		checkEntityAssociation(t, first, relation)
	}
}
