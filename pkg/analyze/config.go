package analyze

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/idptools/loopscan/pkg/fileiter"
	"github.com/idptools/loopscan/pkg/grep"
	"github.com/idptools/loopscan/pkg/parser"
	"github.com/idptools/loopscan/pkg/sequence"
	"github.com/idptools/loopscan/pkg/util"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type AnalyzerConfig struct {
	BufferSize util.SizeFlag
	Compare    []string
	Filter     grep.Filter
	Format     FormatFlag
	Key        string
	LogOutput  string
	MaxStatus  int
	NoColor    bool
	Parser     string
	Progress   ProgressFlag
	SkipPaths  []string
	Sort       bool
	Threshold  time.Duration
	Verbose    bool
	Where      map[string]string
}

func (c *AnalyzerConfig) InstallFlags(flags *pflag.FlagSet) {
	flags.Var(&c.BufferSize, "buffer-size", "Longest accepted log line")
	flags.StringSliceVarP(&c.Compare, "compare", "c", c.Compare, "Fields two events are compared by (default: whole request line)")
	flags.VarP(&c.Format, "format", "f", "Output format (text|table|json)")
	flags.StringVarP(&c.Key, "key", "k", c.Key, "Group events by (client|id)")
	flags.StringVarP(&c.LogOutput, "outlog", "o", c.LogOutput, "Write diagnostics to this file")
	flags.IntVar(&c.MaxStatus, "max-status", c.MaxStatus, "Drop lines with a status at or above this (0 to keep all)")
	flags.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")
	flags.StringVarP(&c.Parser, "parser", "p", c.Parser, "Log parser (see \"loopscan list parsers\")")
	flags.Var(&c.Progress, "progress", "Show load progress (auto|always|never)")
	flags.StringArrayVar(&c.SkipPaths, "skip-path", c.SkipPaths, "Request path to drop (can be specified multiple times)")
	flags.BoolVar(&c.Sort, "sort", c.Sort, "Sort events of all files by time before grouping")
	flags.DurationVarP(&c.Threshold, "threshold", "t", c.Threshold, "Inactivity gap that ends a sequence")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Print a summary of each loaded file")
	flags.VarP(newWhereValue(&c.Where), "where", "w", `Only compare events with field=value (can be specified multiple times, "" for none)`)
	c.Filter.InstallFlags(flags)
}

func DefaultConfig() AnalyzerConfig {
	return AnalyzerConfig{
		BufferSize: util.SizeFlag(fileiter.DefaultBufferSize),
		Format:     FormatText,
		Key:        "id",
		MaxStatus:  400,
		Parser:     "tomcat",
		Progress:   ProgressAuto,
		SkipPaths:  slices.Clone(parser.DefaultSkipPaths),
		Threshold:  sequence.DefaultThreshold,
		Where: map[string]string{
			"method": "POST",
			"status": "200",
		},
	}
}

func (c *AnalyzerConfig) SkipConfig() parser.SkipConfig {
	return parser.SkipConfig{
		Paths:     c.SkipPaths,
		MaxStatus: c.MaxStatus,
	}
}

// FileConfig is the YAML form of the settings that make sense to keep per
// log source.
type FileConfig struct {
	Parser    string            `yaml:"parser"`
	Key       string            `yaml:"key"`
	Threshold string            `yaml:"threshold"`
	Where     map[string]string `yaml:"where"`
	Compare   []string          `yaml:"compare"`
	SkipPaths []string          `yaml:"skip_paths"`
	MaxStatus *int              `yaml:"max_status"`
	Sort      *bool             `yaml:"sort"`
	Format    string            `yaml:"format"`
}

func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var fc FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &fc, nil
}

// ApplyFile copies the values set in fc onto c, except for those whose
// flag changed reports as given on the command line.
func (c *AnalyzerConfig) ApplyFile(fc *FileConfig, changed func(flag string) bool) error {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if fc.Parser != "" && !changed("parser") {
		c.Parser = fc.Parser
	}
	if fc.Key != "" && !changed("key") {
		c.Key = fc.Key
	}
	if fc.Threshold != "" && !changed("threshold") {
		d, err := time.ParseDuration(fc.Threshold)
		if err != nil {
			return fmt.Errorf("threshold: %w", err)
		}
		c.Threshold = d
	}
	if fc.Where != nil && !changed("where") {
		c.Where = maps.Clone(fc.Where)
	}
	if fc.Compare != nil && !changed("compare") {
		c.Compare = slices.Clone(fc.Compare)
	}
	if fc.SkipPaths != nil && !changed("skip-path") {
		c.SkipPaths = slices.Clone(fc.SkipPaths)
	}
	if fc.MaxStatus != nil && !changed("max-status") {
		c.MaxStatus = *fc.MaxStatus
	}
	if fc.Sort != nil && !changed("sort") {
		c.Sort = *fc.Sort
	}
	if fc.Format != "" && !changed("format") {
		if err := c.Format.Set(fc.Format); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	return nil
}
