package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"costsync/internal"
	"costsync/internal/config"
	"costsync/internal/pricing"
	"costsync/internal/sheet"
)

type ProcessingService struct {
	cfg config.Config
	log zerolog.Logger
}

func NewProcessingService(cfg config.Config, log zerolog.Logger) *ProcessingService {
	return &ProcessingService{cfg: cfg, log: log}
}

// Run loads the master and every source of job, reconciles the costs and
// writes the updated master to job.Output.
func (s *ProcessingService) Run(job config.Job) (internal.RunReport, error) {
	start := time.Now()
	job.ApplyDefaults(s.cfg)
	if err := job.Validate(); err != nil {
		return internal.RunReport{}, err
	}

	master, err := sheet.Load(internal.TableRef{
		Path:      job.Master.Path,
		Sheet:     job.Master.Sheet,
		HeaderRow: job.Master.Header,
	}, "", s.cfg.HeaderScanRows)
	if err != nil {
		return internal.RunReport{}, fmt.Errorf("master: %w", err)
	}
	cols := pricing.MasterColumns{
		Code:    job.Master.CodeColumn,
		Cost:    job.Master.CostColumn,
		NewCost: job.Master.NewCostColumn,
	}
	masterRows, err := pricing.MasterRows(master, cols)
	if err != nil {
		return internal.RunReport{}, err
	}
	s.log.Info().Str("path", job.Master.Path).Int("rows", len(masterRows)).Msg("master loaded")

	sources := make([]pricing.SourceResult, 0, len(job.Sources))
	for _, src := range job.Sources {
		res, err := s.mapSource(masterRows, src)
		if err != nil {
			return internal.RunReport{}, err
		}
		sources = append(sources, res)
	}

	result, err := pricing.Reconcile(master, cols, sources)
	if err != nil {
		return internal.RunReport{}, err
	}
	if err := sheet.WriteXLSX(result.Dataset, job.Output); err != nil {
		return internal.RunReport{}, fmt.Errorf("export: %w", err)
	}

	report := buildReport(job, result, len(masterRows))
	s.log.Info().
		Int("matches", report.TotalMatches).
		Int("modifications", report.TotalModifications).
		Int("final_matches", report.FinalMatches).
		Int("final_modifications", report.FinalModifications).
		Str("output", job.Output).
		Dur("took", time.Since(start)).
		Msg("master updated")
	return report, nil
}

func (s *ProcessingService) mapSource(master []pricing.MasterRow, src config.SourceJob) (pricing.SourceResult, error) {
	name := src.Name
	if name == "" {
		name = filepath.Base(src.Path)
	}
	ds, err := sheet.Load(internal.TableRef{
		Path:       src.Path,
		Sheet:      src.Sheet,
		HeaderRow:  src.Header,
		Attachment: src.Attachment,
	}, name, s.cfg.HeaderScanRows)
	if err != nil {
		return pricing.SourceResult{}, fmt.Errorf("source %q: %w", name, err)
	}

	code, price := src.CodeColumn, src.PriceColumn
	if code == "" || price == "" {
		guessCode, guessPrice := sheet.SuggestColumns(ds.Columns)
		if code == "" {
			code = guessCode
		}
		if price == "" {
			price = guessPrice
		}
		s.log.Debug().Str("source", name).Str("code", code).Str("price", price).Msg("columns guessed")
	}
	if code == "" || price == "" {
		return pricing.SourceResult{}, fmt.Errorf("source %q: could not guess the code/price columns among %q, name them explicitly", name, ds.Columns)
	}

	res, err := pricing.MapSource(master, ds, pricing.SourceSpec{
		Name:            name,
		CodeColumn:      code,
		PriceColumn:     price,
		DiscountPercent: src.Discount,
	})
	if errors.Is(err, pricing.ErrNoUsablePrices) {
		return pricing.SourceResult{}, fmt.Errorf("%w; choose another price column or source", err)
	}
	if err != nil {
		return pricing.SourceResult{}, err
	}

	s.log.Info().
		Str("source", name).
		Int("rows", res.Rows).
		Int("mapped", res.Mapped).
		Int("skipped", res.Skipped).
		Int("matches", res.Stats.Matches).
		Int("modifications", res.Stats.Modifications).
		Msg("source mapped")
	return res, nil
}

func buildReport(job config.Job, result pricing.Result, masterRows int) internal.RunReport {
	report := internal.RunReport{
		MasterPath:         job.Master.Path,
		MasterRows:         masterRows,
		OutputPath:         job.Output,
		TotalMatches:       result.Totals.Matches,
		TotalModifications: result.Totals.Modifications,
		FinalMatches:       result.Final.Matches,
		FinalModifications: result.Final.Modifications,
	}
	for i, src := range result.Sources {
		report.Sources = append(report.Sources, internal.SourceReport{
			Name:          src.Spec.Name,
			Path:          job.Sources[i].Path,
			CodeColumn:    src.Spec.CodeColumn,
			PriceColumn:   src.Spec.PriceColumn,
			Discount:      src.Spec.DiscountPercent,
			Rows:          src.Rows,
			Mapped:        src.Mapped,
			Skipped:       src.Skipped,
			Matches:       src.Stats.Matches,
			Modifications: src.Stats.Modifications,
		})
	}
	return report
}
