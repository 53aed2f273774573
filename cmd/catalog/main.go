package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datacatalog/internal/analyzer"
	"datacatalog/internal/config"
	"datacatalog/internal/connector"
	"datacatalog/internal/diagram"
	"datacatalog/internal/importer"
	"datacatalog/internal/models"
)

var (
	configPath string
	dbType     string
	dsn        string
	dbSchema   string

	primaryTable  string
	maxDepth      int
	maxRecords    int
	includeTables []string
	excludeTables []string
	followReverse bool

	mermaidOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Relational data catalog tools",
		Long:  "Analyzes relational schemas and imports rows as nested documents by following foreign-key relationships.",
	}

	diagramCmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the relationship diagram for a primary table",
		Run:   runDiagram,
	}
	diagramCmd.Flags().BoolVar(&mermaidOutput, "mermaid", false, "render as a Mermaid ER diagram")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import rows from the primary table as nested JSON documents",
		Run:   runImport,
	}

	for _, cmd := range []*cobra.Command{diagramCmd, importCmd} {
		cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (replaces connection/import flags)")
		cmd.Flags().StringVar(&dbType, "type", "postgres", "source type (postgres/mysql/sqlserver)")
		cmd.Flags().StringVar(&dsn, "dsn", "", "source connection string")
		cmd.Flags().StringVar(&dbSchema, "schema", "", "source schema (database name for MySQL)")
		cmd.Flags().StringVar(&primaryTable, "table", "", "primary table to start from")
		cmd.Flags().IntVar(&maxDepth, "max-depth", models.DefaultMaxDepth, "forward expansion depth limit")
		cmd.Flags().IntVar(&maxRecords, "max-records", models.DefaultMaxRecords, "root row sample size")
		cmd.Flags().StringSliceVar(&includeTables, "include", nil, "tables to include (all when empty)")
		cmd.Flags().StringSliceVar(&excludeTables, "exclude", nil, "tables to exclude")
		cmd.Flags().BoolVar(&followReverse, "follow-reverse", false, "also follow one-to-many (reverse) relationships")
	}

	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(importCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runDiagram(cmd *cobra.Command, args []string) {
	ctx, conn, opts := setup()
	defer conn.Close()

	schema, err := analyzer.NewSchemaAnalyzer(conn).Analyze(ctx, opts)
	if err != nil {
		log.Fatalf("schema analysis failed: %v", err)
	}

	if mermaidOutput {
		fmt.Print(diagram.Mermaid(schema))
		return
	}
	fmt.Print(diagram.Format(schema))
}

func runImport(cmd *cobra.Command, args []string) {
	ctx, conn, opts := setup()
	defer conn.Close()

	if count, err := conn.CountRows(ctx, opts.PrimaryTable); err == nil {
		log.Printf("%s holds about %d rows, sampling up to %d", opts.PrimaryTable, count, opts.MaxRecords)
	}

	records, err := importer.NewRelationalImporter(conn).Import(ctx, opts)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		log.Fatalf("failed to encode documents: %v", err)
	}
}

// setup resolves flags or the YAML config into a live connector plus import
// options. Ctrl-C cancels the returned context so a long import can be
// abandoned mid-run.
func setup() (context.Context, connector.Connector, models.ImportOptions) {
	srcType, srcDSN, srcSchema := dbType, dsn, dbSchema
	opts := models.ImportOptions{
		PrimaryTable:   primaryTable,
		MaxDepth:       maxDepth,
		MaxRecords:     maxRecords,
		IncludedTables: includeTables,
		ExcludedTables: excludeTables,
		FollowReverse:  followReverse,
	}

	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		srcType, srcDSN, srcSchema = cfg.Source.Type, cfg.Source.DSN, cfg.Source.Schema
		opts = cfg.Import
	}

	if srcDSN == "" {
		log.Fatal("a source DSN is required (--dsn or --config)")
	}
	if opts.PrimaryTable == "" {
		log.Fatal("a primary table is required (--table or import.primaryTable)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	conn, err := connector.New(ctx, srcType, srcDSN, srcSchema)
	if err != nil {
		log.Fatalf("failed to connect to source: %v", err)
	}
	return ctx, conn, opts
}
