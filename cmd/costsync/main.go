package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"costsync/internal"
	"costsync/internal/config"
	"costsync/internal/logging"
	"costsync/internal/pipeline"
	"costsync/internal/report"
)

// sourceFlags collects repeated --source values in command-line order.
type sourceFlags []config.SourceJob

func (s *sourceFlags) String() string {
	return fmt.Sprintf("%d sources", len(*s))
}

func (s *sourceFlags) Set(value string) error {
	src, err := config.ParseSourceSpec(value)
	if err != nil {
		return err
	}
	*s = append(*s, src)
	return nil
}

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	cmd := os.Args[1]
	switch cmd {
	case "reconcile":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		jobPath := fs.String("job", "", "YAML job file")
		master := fs.String("master", "", "master inventory xlsx")
		masterSheet := fs.String("master-sheet", "", "master sheet name (default: first)")
		masterHeader := fs.Int("master-header", 1, "1-based header row of the master")
		codeCol := fs.String("code-col", cfg.MasterCodeColumn, "master code column")
		costCol := fs.String("cost-col", cfg.MasterCostColumn, "master current cost column")
		newCol := fs.String("new-col", cfg.MasterNewCostColumn, "master new cost column")
		out := fs.String("out", "", "output xlsx path")
		var sources sourceFlags
		fs.Var(&sources, "source", "price list: path;sheet=..;header=N;code=..;price=..;discount=..;name=..;attachment=.. (repeatable, order matters)")
		_ = fs.Parse(os.Args[2:])

		var job config.Job
		if strings.TrimSpace(*jobPath) != "" {
			job, err = config.LoadJob(*jobPath)
			must(err)
		} else {
			job = config.Job{
				Master: config.MasterJob{
					Path:          *master,
					Sheet:         *masterSheet,
					Header:        *masterHeader,
					CodeColumn:    *codeCol,
					CostColumn:    *costCol,
					NewCostColumn: *newCol,
				},
				Sources: sources,
			}
		}
		if strings.TrimSpace(*out) != "" {
			job.Output = *out
		}

		processor := pipeline.NewProcessingService(cfg, log)
		res, err := processor.Run(job)
		must(err)
		must(report.Run(os.Stdout, res))
	case "preview":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "xlsx, html or eml file")
		sheetName := fs.String("sheet", "", "sheet name (default: first)")
		attachment := fs.String("attachment", "", "attachment name for eml input")
		rows := fs.Int("rows", cfg.PreviewRows, "rows to show")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		lines, err := pipeline.PreviewInput(internal.TableRef{Path: *input, Sheet: *sheetName, Attachment: *attachment}, *rows)
		must(err)
		must(report.Preview(os.Stdout, lines))
	case "columns":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "xlsx, html or eml file")
		sheetName := fs.String("sheet", "", "sheet name (default: first)")
		attachment := fs.String("attachment", "", "attachment name for eml input")
		header := fs.Int("header", 0, "1-based header row, 0 to detect")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		info, err := pipeline.InspectColumns(internal.TableRef{Path: *input, Sheet: *sheetName, HeaderRow: *header, Attachment: *attachment}, cfg.HeaderScanRows)
		must(err)
		how := "given"
		if *header == 0 {
			how = "assumed"
			if info.Detected {
				how = "detected"
			}
		}
		fmt.Printf("header row %d (%s)\n", info.HeaderRow, how)
		must(report.Columns(os.Stdout, info.Columns, info.Code, info.Price))
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: costsync <command>")
	fmt.Println("commands:")
	fmt.Println("  reconcile --master=maestro.xlsx --source='lista.xlsx;header=3;code=ISBN;price=PVP;discount=10' [--source=...] [--out=...xlsx]")
	fmt.Println("  reconcile --job=job.yaml [--out=...xlsx]")
	fmt.Println("  preview --input=lista.xlsx [--sheet=...] [--rows=20]")
	fmt.Println("  columns --input=lista.xlsx [--sheet=...] [--header=0]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
