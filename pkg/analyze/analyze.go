package analyze

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"github.com/idptools/loopscan/pkg/fileiter"
	"github.com/idptools/loopscan/pkg/loop"
	"github.com/idptools/loopscan/pkg/parser"
	"github.com/idptools/loopscan/pkg/sequence"
	"github.com/idptools/loopscan/pkg/util"
	"github.com/schollz/progressbar/v3"
)

type LoadStats struct {
	Lines   int
	Events  int
	Dropped int
	Failed  int
}

// Analyzer owns every event loaded from the log files given to Load, in
// arrival order, and runs sequence and loop detection over them.
type Analyzer struct {
	Config AnalyzerConfig

	events    []parser.Event
	sequences *sequence.Set
	stats     LoadStats

	lineParser  *parser.LineParser
	keyFunc     sequence.KeyFunc
	detector    loop.Detector
	logger      *log.Logger
	logFile     *os.File
	errorTag    string
	progressOut *os.File
}

func NewAnalyzer(c AnalyzerConfig) (*Analyzer, error) {
	decoder, err := parser.GetParser(c.Parser)
	if err != nil {
		return nil, fmt.Errorf("invalid parser: %w", err)
	}
	keyFunc, err := sequence.GetKeyFunc(c.Key)
	if err != nil {
		return nil, err
	}
	constraints := loop.Constraints(c.Where)
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraint: %w", err)
	}
	projection, err := loop.FieldProjection(c.Compare...)
	if err != nil {
		return nil, fmt.Errorf("invalid comparison: %w", err)
	}
	if c.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %s", c.Threshold)
	}

	logger := log.New(os.Stderr, "", 0)
	var logFile *os.File
	if c.LogOutput != "" {
		logFile, err = os.OpenFile(c.LogOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file error: %w", err)
		}
		logger.SetOutput(logFile)
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if c.NoColor || c.LogOutput != "" {
		errorColor.DisableColor()
	}

	return &Analyzer{
		Config:      c,
		lineParser:  parser.NewLineParser(decoder, c.SkipConfig().Validator()),
		keyFunc:     keyFunc,
		detector:    loop.NewDetector(constraints, projection),
		logger:      logger,
		logFile:     logFile,
		errorTag:    errorColor.Sprint("ERROR:"),
		progressOut: os.Stderr,
	}, nil
}

// SetLogOutput redirects diagnostics unless a log file was configured.
func (a *Analyzer) SetLogOutput(w io.Writer) {
	if a.Config.LogOutput == "" {
		a.logger.SetOutput(w)
	}
}

// Close releases the --outlog file, if any. Later diagnostics are discarded.
func (a *Analyzer) Close() error {
	if a.logFile == nil {
		return nil
	}
	a.logger.SetOutput(io.Discard)
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// Load appends the events of one (possibly compressed) file. Open and read
// errors are returned; unusable lines are not.
func (a *Analyzer) Load(filename string) error {
	var observer io.Writer
	var bar *progressbar.ProgressBar
	if a.Config.Progress.Enabled(a.progressOut) {
		stat, err := os.Stat(filename)
		if err != nil {
			return err
		}
		bar = progressbar.NewOptions64(stat.Size(),
			progressbar.OptionSetWriter(a.progressOut),
			progressbar.OptionSetDescription(filepath.Base(filename)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		observer = bar
	}

	f, err := util.OpenFileObserved(filename, observer)
	if err != nil {
		return err
	}
	before := a.stats
	err = a.RunLoop(fileiter.NewWithScannerSize(f, int(a.Config.BufferSize)))
	err = errors.Join(err, f.Close())
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if a.Config.Verbose {
		a.logger.Printf("%s: %d lines, %d events, %d dropped, %d unparseable",
			filename,
			a.stats.Lines-before.Lines,
			a.stats.Events-before.Events,
			a.stats.Dropped-before.Dropped,
			a.stats.Failed-before.Failed)
	}
	return nil
}

func (a *Analyzer) RunLoop(iter fileiter.Iterator) error {
	for {
		line, err := iter.Next()
		if err != nil {
			return err
		}
		if line == nil {
			break
		}
		a.handleLine(line)
	}
	// new events invalidate any grouping done before
	a.sequences = nil
	return nil
}

func (a *Analyzer) handleLine(line []byte) {
	a.stats.Lines++
	e, err := a.lineParser.Parse(line)
	if err != nil {
		if errors.Is(err, parser.ErrIgnored) {
			a.stats.Dropped++
			return
		}
		a.stats.Failed++
		a.logger.Printf("%s can't parse %s (%v)", a.errorTag, line, err)
		return
	}
	if !a.Config.Filter.IsEmpty() && a.Config.Filter.Match(e) != nil {
		a.stats.Dropped++
		return
	}
	a.stats.Events++
	a.events = append(a.events, e)
}

func (a *Analyzer) Stats() LoadStats {
	return a.stats
}

// Events returns a copy of the loaded events in arrival order (or time
// order once FindSequences ran with Sort set).
func (a *Analyzer) Events() []parser.Event {
	return slices.Clone(a.events)
}

// FindSequences groups all loaded events by the configured key.
func (a *Analyzer) FindSequences() *sequence.Set {
	if a.sequences != nil {
		return a.sequences
	}
	if a.Config.Sort {
		slices.SortStableFunc(a.events, func(l, r parser.Event) int {
			return l.Time.Compare(r.Time)
		})
	}
	a.sequences = sequence.Build(a.events, a.keyFunc, a.Config.Threshold)
	return a.sequences
}
