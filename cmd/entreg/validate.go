package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/engines/memory"
	"github.com/entreg/entreg/loader"
)

var (
	validateSchema string
	validateStrict bool
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Schema file or directory (default from entreg.yml)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when an association targets an undeclared entity")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check entity declarations without touching a database",
	Long:  "Load entity declarations and register them against an in-memory engine, reporting declaration problems and skipped associations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		doc, err := loader.Load(cfg.schemaPath(validateSchema))
		if err != nil {
			return err
		}

		registry := newRegistry(cfg, validateStrict)
		entities, err := doc.Apply(registry)
		if err != nil {
			return err
		}

		models, err := registry.Register(context.Background(), memory.NewEngine())
		if err != nil {
			return err
		}

		// An association without an accessor was skipped because its target
		// never made it into the registry.
		skipped := 0
		yellow := color.New(color.FgYellow)
		for _, entity := range entities {
			model := models.Get(entity.Name)
			if model == nil {
				continue
			}
			for _, assoc := range entity.Associations {
				if model.Accessor(assoc.Name) != nil {
					continue
				}
				skipped++
				if _, ok := registry.Lookup(targetName(assoc)); !ok {
					yellow.Printf("! %v.%v skipped, target %v is not declared\n", entity.Name, assoc.Name, targetName(assoc))
				} else {
					yellow.Printf("! %v.%v skipped, join entity %v is not declared\n", entity.Name, assoc.Name, assoc.JoinEntity)
				}
			}
		}

		green := color.New(color.FgGreen, color.Bold)
		green.Printf("✓ %d entities valid", len(models))
		if skipped > 0 {
			fmt.Printf(" (%d associations skipped)", skipped)
		}
		fmt.Println()
		return nil
	},
}

func targetName(assoc *entreg.Association) string {
	if assoc.Target.Name != "" {
		return assoc.Target.Name
	}
	if assoc.Target.Type != nil {
		return assoc.Target.Type.Name()
	}
	return "?"
}
