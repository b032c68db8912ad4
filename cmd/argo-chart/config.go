package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-chart/internal/config"
	"github.com/rxtech-lab/argo-chart/pkg/utils"
)

const (
	schemaTitle = "argo-chart configuration"
	schemaName  = "argo-chart-config.json"
	sampleName  = "argo-chart-config.yaml"
)

func configSchemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := utils.GetSchemaFromConfig(config.Config{}, schemaTitle)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout(cmd), schema)

	return nil
}

func configShowAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}

	_, err = stdout(cmd).Write(out)

	return err
}

// configInitAction writes the schema and, unless one exists, a sample configuration next to it.
func configInitAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")

	schemaPath := filepath.Join(dir, schemaName)
	if err := generateSchemaFile(schemaPath); err != nil {
		return err
	}

	fmt.Fprintf(stdout(cmd), "schema written to %s\n", schemaPath)

	samplePath := filepath.Join(dir, sampleName)

	written, err := generateSampleConfig(config.Default(), samplePath, schemaName)
	if err != nil {
		return err
	}

	if written {
		fmt.Fprintf(stdout(cmd), "sample config written to %s\n", samplePath)
	}

	return nil
}

func generateSchemaFile(path string) error {
	schema, err := utils.GetSchemaFromConfig(config.Config{}, schemaTitle)
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	return nil
}

// generateSampleConfig never overwrites an existing file and reports whether it wrote one.
func generateSampleConfig(cfg config.Config, path string, schema string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to marshal sample config: %w", err)
	}

	body = append([]byte(getSchemaReference(schema)), body...)

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return false, fmt.Errorf("failed to write sample config: %w", err)
	}

	return true, nil
}

func getSchemaReference(schema string) string {
	return "# yaml-language-server: $schema=" + schema + "\n"
}
