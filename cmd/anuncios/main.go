package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"anuncios/internal/config"
	"anuncios/internal/pipeline"
	"anuncios/internal/profile"
	"anuncios/internal/storage"
	"anuncios/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := util.NewLogger(cfg.Verbose)

	cmd := os.Args[1]
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		profilePath := fs.String("profile", "", "agency profile json")
		input := fs.String("input", "", "feed file or directory")
		workers := fs.Int("workers", cfg.Workers, "parallel documents")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		prof := loadProfile(cfg, *profilePath)
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		svc := pipeline.NewService(db, log, prof)
		info, err := os.Stat(*input)
		must(err)
		if info.IsDir() {
			results, merged, err := svc.ProcessDir(*input, *workers)
			must(err)
			docs, listings := 0, 0
			for _, res := range results {
				if res.Err == nil {
					docs++
					listings += res.Listings
				}
			}
			fmt.Printf("parsed documents=%d listings=%d noise=%d merges=%d splits=%d\n",
				docs, listings, merged.NoiseLines, merged.BrokenTitleMerges, merged.InlineSplits)
			return
		}
		res, err := svc.ProcessFile(*input)
		must(err)
		fmt.Printf("parsed documentId=%d listings=%d\n", res.DocumentID, res.Listings)
	case "export:csv", "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		docID := fs.Int("documentId", 0, "internal document id")
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])
		if *docID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--documentId and --out are required"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		rows, err := db.GetExportRows(*docID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for documentId=%d", *docID))
		}
		if cmd == "export:csv" {
			must(pipeline.ExportRowsToCSV(rows, *out))
		} else {
			must(pipeline.ExportRowsToXLSX(rows, *out))
		}
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "profile:check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		profilePath := fs.String("profile", "", "agency profile json")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*profilePath) == "" {
			must(fmt.Errorf("--profile is required"))
		}
		prof, err := profile.Load(*profilePath)
		must(err)
		fmt.Printf("profile ok: agency=%s cue=%s aliases=%d header_rules=%d\n",
			prof.Agency, prof.Cue, prof.Aliases().Len(), len(prof.HeaderRules))
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		profilePath := fs.String("profile", "", "agency profile json")
		input := fs.String("input", "", "feed file")
		output := fs.String("output", "", "output csv or xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		prof := loadProfile(cfg, *profilePath)
		lines, err := pipeline.LinesFromFile(*input)
		must(err)
		result := pipeline.NewProcessor(prof).ProcessLines(lines)
		rows := pipeline.RowsFromListings(0, result.Listings)
		if strings.HasSuffix(strings.ToLower(*output), ".xlsx") {
			must(pipeline.ExportRowsToXLSX(rows, *output))
		} else {
			must(pipeline.ExportRowsToCSV(rows, *output))
		}
		fmt.Printf("run done listings=%d rows=%d output=%s\n", len(result.Listings), len(rows), *output)
	default:
		usage()
		os.Exit(1)
	}
}

// loadProfile falls back to the stock profile when no path is given, and
// resolves bare names against the configured profile directory.
func loadProfile(cfg config.Config, path string) *profile.Profile {
	if strings.TrimSpace(path) == "" {
		return profile.Default()
	}
	if !strings.ContainsRune(path, os.PathSeparator) && filepath.Ext(path) == "" {
		path = filepath.Join(cfg.ProfileDir, path+".json")
	}
	prof, err := profile.Load(path)
	must(err)
	return prof
}

func usage() {
	fmt.Println("usage: anuncios <command>")
	fmt.Println("commands:")
	fmt.Println("  parse --input=<file|dir> [--profile=agency] [--workers=4]")
	fmt.Println("  export:csv --documentId=1 --out=./out/listings.csv")
	fmt.Println("  export:xlsx --documentId=1 --out=./out/listings.xlsx")
	fmt.Println("  profile:check --profile=./profiles/agency.json")
	fmt.Println("  run --input=<file> --output=<csv|xlsx> [--profile=agency]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
