package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/chrissnell/isomodel/pkg/config"
)

var secretKeys = map[string]bool{"password": true, "token": true}

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := convert(os.Stdout, *yamlFile, *sqliteFile, *force, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convert(out io.Writer, yamlFile, sqliteFile string, force, dryRun bool) error {
	if _, err := os.Stat(yamlFile); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("YAML file does not exist: %s", yamlFile)
	}

	if _, err := os.Stat(sqliteFile); err == nil && !force {
		return fmt.Errorf("SQLite file already exists: %s (use -force to overwrite)", sqliteFile)
	}

	fmt.Fprintf(out, "Converting YAML configuration to SQLite...\n")
	fmt.Fprintf(out, "  Source: %s\n", yamlFile)
	fmt.Fprintf(out, "  Target: %s\n", sqliteFile)

	configData, err := config.NewYAMLProvider(yamlFile).LoadConfig()
	if err != nil {
		return fmt.Errorf("loading YAML configuration: %w", err)
	}

	printConfigSummary(out, configData)

	if dryRun {
		fmt.Fprintln(out, "DRY RUN complete - no database created")
		return nil
	}

	if force {
		if err := os.Remove(sqliteFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing existing SQLite file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(sqliteFile), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	provider, err := config.NewSQLiteProvider(sqliteFile)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer provider.Close()

	if err := provider.Import(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "Conversion completed successfully!\n")
	fmt.Fprintf(out, "You can now use the SQLite backend with: --config-backend sqlite --config %s\n", sqliteFile)
	return nil
}

func printConfigSummary(out io.Writer, configData *config.ConfigData) {
	sections := config.Sections(configData)

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "\nConfiguration Summary (%d sections):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(out, "  [%s]\n", name)

		keys := make([]string, 0, len(sections[name]))
		for k := range sections[name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := sections[name][k]
			if secretKeys[k] {
				v = "********"
			}
			fmt.Fprintf(out, "    %s = %s\n", k, v)
		}
	}
	fmt.Fprintln(out)
}
