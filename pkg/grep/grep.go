package grep

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/idptools/loopscan/pkg/fileiter"
	"github.com/idptools/loopscan/pkg/parser"
	"github.com/idptools/loopscan/pkg/util"
	"github.com/spf13/pflag"
)

// Grepper prints the raw lines whose events pass a Filter.
type Grepper struct {
	f      *Filter
	p      *parser.LineParser
	out    io.Writer
	logger *log.Logger

	matched int
}

type GrepperConfig struct {
	Filter *Filter
	Parser string
	Quiet  bool
}

func DefaultConfig() GrepperConfig {
	return GrepperConfig{
		Filter: &Filter{},
		Parser: "combined",
	}
}

func (c *GrepperConfig) InstallFlags(flags *pflag.FlagSet) {
	c.Filter.InstallFlags(flags)

	flags.StringVarP(&c.Parser, "parser", "p", c.Parser, "Log parser (see \"loopscan list parsers\")")
	flags.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Do not report unparseable lines")
}

func New(c GrepperConfig, w io.Writer, logOutput io.Writer) (*Grepper, error) {
	d, err := parser.GetParser(c.Parser)
	if err != nil {
		return nil, err
	}
	if c.Filter == nil {
		c.Filter = &Filter{}
	}
	if c.Quiet {
		logOutput = io.Discard
	}
	g := &Grepper{
		f:      c.Filter,
		p:      parser.NewLineParser(d, nil),
		out:    w,
		logger: log.New(logOutput, "", 0),
	}
	return g, nil
}

func (g *Grepper) IsEmpty() bool {
	return g.f.IsEmpty()
}

func (g *Grepper) Matched() int {
	return g.matched
}

func (g *Grepper) RunLoop(iter fileiter.Iterator) error {
	for {
		line, err := iter.Next()
		if err != nil {
			return err
		}
		if line == nil {
			break
		}
		if err := g.handleLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grepper) GrepFile(filename string) error {
	f, err := util.OpenFile(filename)
	if err != nil {
		return err
	}
	err = g.RunLoop(fileiter.NewWithScanner(f))
	return errors.Join(err, f.Close())
}

func (g *Grepper) handleLine(line []byte) error {
	e, err := g.p.Parse(line)
	if err != nil {
		if !errors.Is(err, parser.ErrIgnored) {
			g.logger.Printf("grep error: %v\ngot line: %q", err, line)
		}
		return nil
	}
	if g.f.Match(e) != nil {
		return nil
	}
	g.matched++
	if _, err := fmt.Fprintf(g.out, "%s\n", line); err != nil {
		return err
	}
	return nil
}
