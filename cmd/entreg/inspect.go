package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/engines/memory"
	"github.com/entreg/entreg/loader"
)

var inspectSchema string

func init() {
	inspectCmd.Flags().StringVar(&inspectSchema, "schema", "", "Schema file or directory (default from entreg.yml)")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show resolved entities, columns, associations and indexes",
	Long:  "Load entity declarations, resolve them and print every entity with its finalized columns, associations and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		doc, err := loader.Load(cfg.schemaPath(inspectSchema))
		if err != nil {
			return err
		}

		registry := newRegistry(cfg, false)
		entities, err := doc.Apply(registry)
		if err != nil {
			return err
		}

		// Registering against the in-memory engine finalizes table names,
		// timestamp columns and resolved foreign keys.
		models, err := registry.Register(context.Background(), memory.NewEngine())
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		yellow := color.New(color.FgYellow)
		for i, entity := range entities {
			if i > 0 {
				fmt.Println()
			}
			bold.Print(entity.Name)
			fmt.Printf("  (table %s)\n", entity.Table)
			fmt.Println(strings.Repeat("-", 60))

			for _, column := range entity.Columns {
				fmt.Printf("  %-24s %-20s %s\n", column.DBName, columnType(column), strings.Join(columnAttrs(column), ", "))
			}
			for _, assoc := range entity.Associations {
				line := fmt.Sprintf("  %-24s %-20s %s", assoc.Name, assoc.Kind, targetName(assoc))
				model := models.Get(entity.Name)
				if model != nil && model.Accessor(assoc.Name) == nil {
					yellow.Printf("%s (skipped, not declared)\n", line)
					continue
				}
				fmt.Println(line)
			}
			for _, index := range entity.Indexes {
				class := "index"
				if index.Class != "" {
					class = strings.ToLower(index.Class) + " index"
				}
				fmt.Printf("  %-24s %-20s %s\n", index.Name, class, strings.Join(indexColumns(index), ", "))
			}
		}
		return nil
	},
}

func columnType(column *entreg.Column) string {
	switch {
	case column.Precision > 0:
		return fmt.Sprintf("%s(%d,%d)", column.DataType, column.Precision, column.Scale)
	case column.Size > 0:
		return fmt.Sprintf("%s(%d)", column.DataType, column.Size)
	}
	return string(column.DataType)
}

func columnAttrs(column *entreg.Column) []string {
	var attrs []string
	if column.PrimaryKey {
		attrs = append(attrs, "primary key")
	}
	if column.AutoIncrement {
		attrs = append(attrs, "auto increment")
	}
	if column.NotNull && !column.PrimaryKey {
		attrs = append(attrs, "not null")
	}
	if column.Unique {
		attrs = append(attrs, "unique")
	}
	if column.HasDefaultValue && column.DefaultValue != "" {
		attrs = append(attrs, "default "+column.DefaultValue)
	}
	return attrs
}

func indexColumns(index *entreg.Index) []string {
	names := make([]string, 0, len(index.Fields))
	for _, field := range index.Fields {
		names = append(names, field.DBName)
	}
	return names
}
