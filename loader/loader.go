// Package loader reads entity definitions from YAML or JSON documents and
// declares them on a registry, the runtime counterpart of struct tags.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/utils"
)

// Document is the root of one schema file.
type Document struct {
	Entities []EntityDef `yaml:"entities" json:"entities"`
}

// EntityDef declares one entity. Definitions sharing a name across documents
// merge when applied, like repeated declarations do.
type EntityDef struct {
	Name         string           `yaml:"name" json:"name"`
	Table        string           `yaml:"table,omitempty" json:"table,omitempty"`
	Comment      string           `yaml:"comment,omitempty" json:"comment,omitempty"`
	Timestamps   bool             `yaml:"timestamps,omitempty" json:"timestamps,omitempty"`
	Columns      []ColumnDef      `yaml:"columns,omitempty" json:"columns,omitempty"`
	Associations []AssociationDef `yaml:"associations,omitempty" json:"associations,omitempty"`
	Indexes      []IndexDef       `yaml:"indexes,omitempty" json:"indexes,omitempty"`
}

type ColumnDef struct {
	Name          string   `yaml:"name" json:"name"`
	Column        string   `yaml:"column,omitempty" json:"column,omitempty"`
	Type          string   `yaml:"type" json:"type"` // bool, int, uint, float, string, time, bytes, enum or a raw database type
	Size          int      `yaml:"size,omitempty" json:"size,omitempty"`
	Precision     int      `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale         int      `yaml:"scale,omitempty" json:"scale,omitempty"`
	PrimaryKey    bool     `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	AutoIncrement bool     `yaml:"auto_increment,omitempty" json:"auto_increment,omitempty"`
	NotNull       bool     `yaml:"not_null,omitempty" json:"not_null,omitempty"`
	Unique        bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
	Default       string   `yaml:"default,omitempty" json:"default,omitempty"`
	Comment       string   `yaml:"comment,omitempty" json:"comment,omitempty"`
	Enum          []string `yaml:"enum,omitempty" json:"enum,omitempty"`
}

type AssociationDef struct {
	Name            string   `yaml:"name" json:"name"`
	Kind            string   `yaml:"kind" json:"kind"` // has_one, has_many, belongs_to, belongs_to_many
	Target          string   `yaml:"target" json:"target"`
	JoinEntity      string   `yaml:"join_entity,omitempty" json:"join_entity,omitempty"`
	ForeignKeys     []string `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	References      []string `yaml:"references,omitempty" json:"references,omitempty"`
	JoinForeignKeys []string `yaml:"join_foreign_keys,omitempty" json:"join_foreign_keys,omitempty"`
	JoinReferences  []string `yaml:"join_references,omitempty" json:"join_references,omitempty"`
	Constraint      string   `yaml:"constraint,omitempty" json:"constraint,omitempty"` // name override, "-" disables
	OnUpdate        string   `yaml:"on_update,omitempty" json:"on_update,omitempty"`
	OnDelete        string   `yaml:"on_delete,omitempty" json:"on_delete,omitempty"`
}

type IndexDef struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Unique  bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
	Columns []string `yaml:"columns" json:"columns"`
}

var schemaExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// Load read schema documents from a file or from every schema file in a
// directory, merged in file name order.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile read one schema document, decoded by file extension.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse schema %v: %w", path, err)
	}
	return &doc, nil
}

// LoadDir merge every schema document in a directory
func LoadDir(dir string) (*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	for _, entry := range entries {
		if entry.IsDir() || !schemaExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		part, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, part.Entities...)
	}

	if len(doc.Entities) == 0 {
		return nil, fmt.Errorf("no schema documents in %v", dir)
	}
	return doc, nil
}

// Parse decode a YAML schema document
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &doc, nil
}

// Validate checks the document and reports every problem at once.
func (doc *Document) Validate() error {
	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	seen := map[string]bool{}
	for _, def := range doc.Entities {
		if def.Name == "" {
			report("entity without a name")
			continue
		}
		if invalidName(def.Name) {
			report("entity %v: invalid name", def.Name)
		}
		if seen[def.Name] {
			report("entity %v: declared twice in one document", def.Name)
		}
		seen[def.Name] = true
		if def.Table != "" && invalidName(def.Table) {
			report("entity %v: invalid table name %v", def.Name, def.Table)
		}

		columns := map[string]bool{}
		for _, column := range def.Columns {
			switch {
			case column.Name == "":
				report("entity %v: column without a name", def.Name)
			case invalidName(column.Name):
				report("entity %v: invalid column name %v", def.Name, column.Name)
			case columns[column.Name]:
				report("entity %v: duplicate column %v", def.Name, column.Name)
			}
			columns[column.Name] = true
			if column.Column != "" && invalidName(column.Column) {
				report("entity %v: column %v: invalid database name %v", def.Name, column.Name, column.Column)
			}
			if column.Type == "" {
				report("entity %v: column %v: missing type", def.Name, column.Name)
			}
			if strings.EqualFold(column.Type, "enum") && len(column.Enum) == 0 {
				report("entity %v: column %v: enum without values", def.Name, column.Name)
			}
		}

		for _, assoc := range def.Associations {
			if assoc.Name == "" {
				report("entity %v: association without a name", def.Name)
				continue
			}
			kind, ok := entreg.ParseKind(assoc.Kind)
			if !ok {
				report("entity %v: association %v: unknown kind %v", def.Name, assoc.Name, assoc.Kind)
			}
			if assoc.Target == "" {
				report("entity %v: association %v: missing target", def.Name, assoc.Name)
			}
			if kind == entreg.BelongsToMany && assoc.JoinEntity == "" {
				report("entity %v: association %v: belongs to many without a join entity", def.Name, assoc.Name)
			}
		}

		for _, index := range def.Indexes {
			if len(index.Columns) == 0 {
				report("entity %v: index %v: no columns", def.Name, index.Name)
			}
			if index.Name != "" && invalidName(index.Name) {
				report("entity %v: invalid index name %v", def.Name, index.Name)
			}
			for _, name := range index.Columns {
				if !columnDeclared(def, name) {
					report("entity %v: index %v: unknown column %v", def.Name, index.Name, name)
				}
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid schema:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

func columnDeclared(def EntityDef, name string) bool {
	for _, column := range def.Columns {
		if column.Name == name || column.Column == name {
			return true
		}
	}
	return false
}

func invalidName(name string) bool {
	return strings.IndexFunc(name, utils.IsValidDBNameChar) >= 0
}
