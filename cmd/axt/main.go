package main

import (
	"os"
	"strconv"

	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
	"github.com/arxml-community/arxml-dev-tools/internal/config"
	"github.com/arxml-community/arxml-dev-tools/internal/index"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/refs"
	"github.com/arxml-community/arxml-dev-tools/internal/report"
	"github.com/arxml-community/arxml-dev-tools/internal/rules"
	"github.com/arxml-community/arxml-dev-tools/internal/schema"
	"github.com/arxml-community/arxml-dev-tools/internal/validation"
)

func main() {
	if len(os.Args) < 2 {
		logger.Println("Usage: axt <command> [arguments]")
		logger.Println("Commands: check, stats, refs, history")
		logger.Println("  check [-db findings.db] <input_files...>")
		logger.Println("  stats <input_files...>")
		logger.Println("  refs [-to path | -from path | -cycles] <input_files...>")
		logger.Println("  history [-db findings.db] [-n count]")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "check":
		runCheck(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	case "refs":
		runRefs(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	default:
		logger.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func loadModel(files []string) (*index.Index, *refs.Resolver) {
	ix := index.New()
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			logger.Printf("Error reading %s: %v\n", file, err)
			continue
		}
		doc, err := arxml.Parse(f, file)
		f.Close()
		if err != nil {
			logger.Printf("%s: %v\n", file, err)
			continue
		}
		ix.IndexDocument(doc)
	}

	resolver := refs.NewResolver(ix)
	resolver.ReanalyzeAll()
	return ix, resolver
}

func runCheck(args []string) {
	var dbPath string
	var inputFiles []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-db" {
			if i+1 < len(args) {
				dbPath = args[i+1]
				i++
			} else {
				logger.Println("Error: -db requires a file path")
				os.Exit(1)
			}
		} else {
			inputFiles = append(inputFiles, args[i])
		}
	}
	if len(inputFiles) < 1 {
		logger.Println("Usage: axt check [-db findings.db] <input_files...>")
		os.Exit(1)
	}

	cfg := config.Load(".")
	if dbPath == "" {
		dbPath = cfg.ReportDB
	}

	ix, resolver := loadModel(inputFiles)

	engine := rules.NewEngine()
	for _, r := range rules.Defaults() {
		engine.Register(r)
	}
	cfg.Apply(engine)

	checker := schema.NewChecker(schema.LoadFullSchema("."))
	v := validation.New(ix, resolver, engine, checker)

	findings := v.ValidateAll(true)
	for _, f := range findings {
		logger.Printf("%s: %s [%s] %s\n", f.Path, levelName(f.Severity), f.RuleID, f.Message)
	}

	summary := v.ErrorSummary()
	if len(findings) > 0 {
		logger.Printf("\nFound %d issues (%d errors, %d warnings, %d infos).\n",
			len(findings), summary.Errors, summary.Warnings, summary.Infos)
	} else {
		logger.Println("No issues found.")
	}

	if dbPath != "" {
		store, err := report.Open(dbPath)
		if err != nil {
			logger.Printf("Error opening report db: %v\n", err)
		} else {
			defer store.Close()
			if runID, err := store.RecordRun(ix.Statistics().TotalElements, findings); err != nil {
				logger.Printf("Error recording run: %v\n", err)
			} else {
				logger.Printf("Recorded run %d in %s\n", runID, dbPath)
			}
		}
	}

	if summary.Errors > 0 {
		os.Exit(1)
	}
}

func runStats(args []string) {
	if len(args) < 1 {
		logger.Println("Usage: axt stats <input_files...>")
		os.Exit(1)
	}

	ix, resolver := loadModel(args)
	is := ix.Statistics()
	rs := resolver.Statistics()

	logger.Printf("Elements:          %d\n", is.TotalElements)
	logger.Printf("  with UUID:       %d\n", is.ElementsWithUUID)
	logger.Printf("  unique names:    %d\n", is.UniqueShortNames)
	logger.Printf("  unique types:    %d\n", is.UniqueTypes)
	logger.Printf("Files:             %d\n", is.Files)
	logger.Printf("References:        %d\n", rs.Total)
	logger.Printf("  resolved:        %d\n", rs.Resolved)
	logger.Printf("  unresolved:      %d\n", rs.Unresolved)
	logger.Printf("  type mismatches: %d\n", rs.Invalid-rs.Unresolved)
}

func runRefs(args []string) {
	var toPath, fromPath string
	var cycles bool
	var inputFiles []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-to":
			if i+1 >= len(args) {
				logger.Println("Error: -to requires a path")
				os.Exit(1)
			}
			toPath = args[i+1]
			i++
		case "-from":
			if i+1 >= len(args) {
				logger.Println("Error: -from requires a path")
				os.Exit(1)
			}
			fromPath = args[i+1]
			i++
		case "-cycles":
			cycles = true
		default:
			inputFiles = append(inputFiles, args[i])
		}
	}
	if len(inputFiles) < 1 {
		logger.Println("Usage: axt refs [-to path | -from path | -cycles] <input_files...>")
		os.Exit(1)
	}

	_, resolver := loadModel(inputFiles)

	switch {
	case cycles:
		found := resolver.FindCycles()
		for _, cycle := range found {
			logger.Println(joinArrow(cycle))
		}
		if len(found) == 0 {
			logger.Println("No reference cycles found.")
		}
	case toPath != "":
		for _, ref := range resolver.ReferencesTo(toPath) {
			logger.Printf("%s -> %s (%s)\n", ref.SourcePath, ref.TargetPath, ref.Kind)
		}
	case fromPath != "":
		for _, ref := range resolver.ReferencesFrom(fromPath) {
			logger.Printf("%s -> %s (%s)\n", ref.SourcePath, ref.TargetPath, ref.Kind)
		}
	default:
		unresolved := resolver.Unresolved()
		for _, ref := range unresolved {
			logger.Printf("%s: unresolved %s\n", ref.SourcePath, ref.RawValue)
		}
		if len(unresolved) == 0 {
			logger.Println("All references resolved.")
		}
	}
}

func runHistory(args []string) {
	dbPath := config.Load(".").ReportDB
	limit := 20
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-db":
			if i+1 >= len(args) {
				logger.Println("Error: -db requires a file path")
				os.Exit(1)
			}
			dbPath = args[i+1]
			i++
		case "-n":
			if i+1 >= len(args) {
				logger.Println("Error: -n requires a number")
				os.Exit(1)
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				logger.Printf("Error: invalid count %q\n", args[i+1])
				os.Exit(1)
			}
			limit = n
			i++
		default:
			logger.Printf("Unknown argument: %s\n", args[i])
			os.Exit(1)
		}
	}

	store, err := report.Open(dbPath)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer store.Close()

	runs, err := store.Runs(limit)
	if err != nil {
		logger.Fatalf("Error listing runs: %v", err)
	}
	if len(runs) == 0 {
		logger.Println("No recorded runs.")
		return
	}
	for _, r := range runs {
		logger.Printf("run %d  %s  elements=%d errors=%d warnings=%d infos=%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Elements, r.Errors, r.Warnings, r.Infos)
	}
}

func levelName(s validation.Severity) string {
	switch s {
	case validation.SeverityError:
		return "ERROR"
	case validation.SeverityWarning:
		return "WARNING"
	}
	return "INFO"
}

func joinArrow(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
