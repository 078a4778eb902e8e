package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/lifei6671/cliloc"
	"github.com/lifei6671/cliloc/cmd/clilint/checker"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns 0 on success, 1 when --fail is set and issues were found, and
// 2 on usage or load errors.
func run(argv []string, stdout, stderr io.Writer) int {
	cfg, err := cliloc.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "error: config: %v\n", err)
		return 2
	}

	var (
		file        string
		id          int32
		args        string
		exportPath  string
		format      string
		failOnIssue bool
		logLevel    string
	)
	flagSet := pflag.NewFlagSet("clilint", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&file, "file", "f", "", "resource file (default: CLILOC_FILE searched in CLILOC_DATA_DIRS)")
	flagSet.Int32Var(&id, "id", 0, "resolve and print this entry instead of the report")
	flagSet.StringVar(&args, "args", "", `tab-delimited arguments for --id; "\t" is accepted for a tab`)
	flagSet.StringVar(&exportPath, "export", "", `write all entries to this file ("-" for stdout)`)
	flagSet.StringVar(&format, "format", checker.FormatYAML, "export format: yaml, json or cbor")
	flagSet.BoolVar(&failOnIssue, "fail", false, "exit with code 1 if any issue is found")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (default: LOG_LEVEL or info)")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		fmt.Fprintf(stderr, "error: unexpected argument: %s\n", rest[0])
		return 2
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.Kitchen,
	}))

	var store *cliloc.Store
	if file != "" {
		store = cliloc.NewStore(file, cliloc.WithLogger(logger))
	} else {
		store = cfg.Store(cliloc.WithLogger(logger))
	}

	table, err := store.Table()
	if err != nil {
		if errors.Is(err, cliloc.ErrUnavailable) {
			fmt.Fprintf(stderr, "error: %s does not exist\n", store.Path())
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 2
	}
	res := checker.Check(store.Path(), table)

	if flagSet.Changed("id") {
		text, status := store.ResolveArgs(id, strings.ReplaceAll(args, `\t`, "\t"))
		if status != cliloc.StatusFound {
			fmt.Fprintf(stderr, "error: %d: %v\n", id, cliloc.ErrNotFound)
			return 2
		}
		fmt.Fprintln(stdout, text)
	} else {
		printResult(stdout, res)
	}

	if exportPath != "" {
		if err := export(exportPath, stdout, table, format); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 2
		}
	}

	if failOnIssue && res.HasIssues() {
		return 1
	}
	return 0
}

func export(path string, stdout io.Writer, table *cliloc.Table, format string) error {
	if path == "-" {
		return checker.Export(stdout, table, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := checker.Export(f, table, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printResult(w io.Writer, res *checker.Result) {
	fmt.Fprintln(w, "=== CLILOC CHECK RESULT ===")
	fmt.Fprintln(w, "File:", res.Path)
	fmt.Fprintln(w, "Entries:", res.Entries)
	fmt.Fprintf(w, "Templates: %d (max %d placeholders)\n", res.Templates, res.MaxPlaceholders)

	if res.Outcome != cliloc.OutcomeComplete {
		fmt.Fprintf(w, "Decode: %s (%v)\n", res.Outcome, res.ReadError)
	} else {
		fmt.Fprintln(w, "Decode: complete")
	}

	if res.Duplicates > 0 {
		fmt.Fprintln(w, "Duplicate records:", res.Duplicates)
	} else {
		fmt.Fprintln(w, "Duplicate records: None")
	}

	if ids := res.UnpairedIDs(); len(ids) > 0 {
		fmt.Fprintln(w, "Unpaired markers:")
		for _, id := range ids {
			fmt.Fprintf(w, "  - %d: %v\n", id, res.UnpairedMarkers[id])
		}
	} else {
		fmt.Fprintln(w, "Unpaired markers: None")
	}
}
