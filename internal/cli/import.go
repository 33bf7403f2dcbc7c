package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Andrei800/booknest/internal/config"
	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/importers"
)

// ImportCommand imports a catalog file straight into the database without
// running the server.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
	Format       string
	Verbose      bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the file to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.Format, "format", "csv", "Import format: tracker, csv or json")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every per-record error")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a Book Tracker export, a generic CSV or a JSON file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file export.csv -format tracker\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file books.json -format json -db ./booknest.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	switch strings.ToLower(cmd.Format) {
	case "tracker", "csv", "json":
		cmd.Format = strings.ToLower(cmd.Format)
	default:
		return fmt.Errorf("unknown format %q, expected tracker, csv or json", cmd.Format)
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	content, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var records []importers.Record
	switch cmd.Format {
	case "tracker":
		records, err = importers.ParseBookTrackerCSV(importers.DetectAndDecode(content))
	case "csv":
		var text string
		text, err = importers.DecodeWithFallback(content)
		if err == nil {
			records, err = importers.ParseGenericCSV(text)
		}
	case "json":
		records, err = importers.ParseJSONBooks(content)
	}
	if err != nil {
		return fmt.Errorf("parse %s file: %w", cmd.Format, err)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	result, err := importers.NewPipeline(db.DB).Run(records)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Imported: %d, failed: %d, skipped: %d\n", result.Success, result.Failed, result.Skipped)
	if cmd.Verbose {
		for _, message := range result.Errors {
			fmt.Println("  " + message)
		}
	} else if len(result.Errors) > 0 {
		fmt.Printf("%d records reported errors, rerun with -verbose to list them\n", len(result.Errors))
	}
	return nil
}
