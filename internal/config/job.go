package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Job describes one reconciliation run: a master inventory, the price
// lists to apply in order, and where to write the result.
type Job struct {
	Master  MasterJob   `yaml:"master"`
	Sources []SourceJob `yaml:"sources"`
	Output  string      `yaml:"output"`
}

type MasterJob struct {
	Path          string `yaml:"path"`
	Sheet         string `yaml:"sheet,omitempty"`
	Header        int    `yaml:"header,omitempty"`
	CodeColumn    string `yaml:"code_column,omitempty"`
	CostColumn    string `yaml:"cost_column,omitempty"`
	NewCostColumn string `yaml:"new_cost_column,omitempty"`
}

type SourceJob struct {
	Name        string  `yaml:"name,omitempty"`
	Path        string  `yaml:"path"`
	Sheet       string  `yaml:"sheet,omitempty"`
	Header      int     `yaml:"header,omitempty"`
	CodeColumn  string  `yaml:"code_column,omitempty"`
	PriceColumn string  `yaml:"price_column,omitempty"`
	Discount    float64 `yaml:"discount,omitempty"`
	Attachment  string  `yaml:"attachment,omitempty"`
}

// LoadJob reads a YAML job file. Relative paths inside it are resolved
// against the file's directory.
func LoadJob(path string) (Job, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := yaml.UnmarshalWithOptions(blob, &job, yaml.Strict()); err != nil {
		return Job{}, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	job.Master.Path = resolve(base, job.Master.Path)
	job.Output = resolve(base, job.Output)
	for i := range job.Sources {
		job.Sources[i].Path = resolve(base, job.Sources[i].Path)
	}
	return job, nil
}

// ApplyDefaults fills master column names and the output path from cfg.
func (j *Job) ApplyDefaults(cfg Config) {
	if j.Master.CodeColumn == "" {
		j.Master.CodeColumn = cfg.MasterCodeColumn
	}
	if j.Master.CostColumn == "" {
		j.Master.CostColumn = cfg.MasterCostColumn
	}
	if j.Master.NewCostColumn == "" {
		j.Master.NewCostColumn = cfg.MasterNewCostColumn
	}
	if j.Master.Header == 0 {
		j.Master.Header = 1
	}
	if j.Output == "" && j.Master.Path != "" {
		name := strings.TrimSuffix(filepath.Base(j.Master.Path), filepath.Ext(j.Master.Path))
		j.Output = filepath.Join(cfg.OutputDir, name+"_actualizado.xlsx")
	}
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.Master.Path) == "" {
		return fmt.Errorf("job: master path is required")
	}
	if len(j.Sources) == 0 {
		return fmt.Errorf("job: at least one source is required")
	}
	for i, src := range j.Sources {
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("job: source %d has no path", i+1)
		}
		if src.Header < 0 {
			return fmt.Errorf("job: source %d: header must be >= 0", i+1)
		}
		if src.Discount < 0 || src.Discount > 100 {
			return fmt.Errorf("job: source %d: discount %g is outside 0..100", i+1, src.Discount)
		}
	}
	return nil
}

// ParseSourceSpec reads the command-line form of a source:
//
//	path;sheet=Hoja1;header=3;code=ISBN;price=PVP;discount=10;name=norte
func ParseSourceSpec(spec string) (SourceJob, error) {
	parts := strings.Split(spec, ";")
	src := SourceJob{Path: strings.TrimSpace(parts[0])}
	if src.Path == "" {
		return SourceJob{}, fmt.Errorf("source %q: path is empty", spec)
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return SourceJob{}, fmt.Errorf("source %q: expected key=value, got %q", spec, part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "sheet":
			src.Sheet = value
		case "header":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return SourceJob{}, fmt.Errorf("source %q: bad header %q", spec, value)
			}
			src.Header = n
		case "code":
			src.CodeColumn = value
		case "price":
			src.PriceColumn = value
		case "discount":
			d, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
			if err != nil {
				return SourceJob{}, fmt.Errorf("source %q: bad discount %q", spec, value)
			}
			src.Discount = d
		case "name":
			src.Name = value
		case "attachment":
			src.Attachment = value
		default:
			return SourceJob{}, fmt.Errorf("source %q: unknown key %q", spec, key)
		}
	}
	return src, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
