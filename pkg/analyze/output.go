package analyze

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

type OutputContext struct {
	Loops   []LoopReport
	Devices []DeviceReport
	Config  AnalyzerConfig
}

type Outputter interface {
	Print(w io.Writer, ctx *OutputContext) error
}

type OutputterFunc func(w io.Writer, ctx *OutputContext) error

func (f OutputterFunc) Print(w io.Writer, ctx *OutputContext) error {
	return f(w, ctx)
}

var loopOutputters = map[FormatFlag]Outputter{
	FormatText:  OutputterFunc(PrintLoopsText),
	FormatTable: OutputterFunc(PrintLoopsTable),
	FormatJSON:  OutputterFunc(PrintLoopsJSON),
}

var deviceOutputters = map[FormatFlag]Outputter{
	FormatText:  OutputterFunc(PrintDevicesText),
	FormatTable: OutputterFunc(PrintDevicesTable),
	FormatJSON:  OutputterFunc(PrintDevicesJSON),
}

func (a *Analyzer) PrintLoops(w io.Writer) error {
	out, ok := loopOutputters[a.Config.Format]
	if !ok {
		return fmt.Errorf("unsupported format %q", a.Config.Format)
	}
	return out.Print(w, &OutputContext{Loops: a.DetectLoops(), Config: a.Config})
}

func (a *Analyzer) PrintDevices(w io.Writer) error {
	out, ok := deviceOutputters[a.Config.Format]
	if !ok {
		return fmt.Errorf("unsupported format %q", a.Config.Format)
	}
	return out.Print(w, &OutputContext{Devices: a.Devices(), Config: a.Config})
}

// PrintLoopsText writes one line per run:
// client, user agent, start, run length, first event.
func PrintLoopsText(w io.Writer, ctx *OutputContext) error {
	count := color.New(color.Bold)
	if ctx.Config.NoColor {
		count.DisableColor()
	}
	for _, r := range ctx.Loops {
		_, err := fmt.Fprintf(w, "%-15s %-40s %s - %s - %s\n",
			r.Client, r.Useragent, r.Timecode, count.Sprintf("%4d", r.Len()), r.First())
		if err != nil {
			return err
		}
	}
	return nil
}

// NewTable returns a borderless, left-aligned table that never wraps cells.
func NewTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithPadding(tw.Padding{
			Right:     "  ",
			Overwrite: true,
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
	)
}

func PrintLoopsTable(w io.Writer, ctx *OutputContext) error {
	table := NewTable(w)
	table.Header("Client", "User Agent", "Start", "Reqs", "Bytes", "Request")
	for _, r := range ctx.Loops {
		first := r.First()
		row := []string{
			r.Client, r.Useragent, r.Timecode, strconv.Itoa(r.Len()),
			humanize.IBytes(r.Bytes()), strings.TrimSpace(first.Method + " " + first.Request),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

type jsonEvent struct {
	Time    time.Time `json:"time"`
	Method  string    `json:"method"`
	Request string    `json:"request"`
	Status  int       `json:"status"`
	Bytes   uint64    `json:"bytes"`
}

type jsonLoop struct {
	Key       string      `json:"key"`
	Client    string      `json:"client"`
	Useragent string      `json:"user_agent"`
	Start     string      `json:"start"`
	Count     int         `json:"count"`
	Bytes     uint64      `json:"bytes"`
	Size      string      `json:"size"`
	First     string      `json:"first"`
	Events    []jsonEvent `json:"events"`
}

func PrintLoopsJSON(w io.Writer, ctx *OutputContext) error {
	loops := make([]jsonLoop, 0, len(ctx.Loops))
	for _, r := range ctx.Loops {
		events := make([]jsonEvent, 0, r.Len())
		for _, e := range r.Events {
			events = append(events, jsonEvent{
				Time:    e.Time,
				Method:  e.Method,
				Request: e.Request,
				Status:  e.Status,
				Bytes:   e.Bytes,
			})
		}
		loops = append(loops, jsonLoop{
			Key:       r.Key,
			Client:    r.Client,
			Useragent: r.Useragent,
			Start:     r.Timecode,
			Count:     r.Len(),
			Bytes:     r.Bytes(),
			Size:      humanize.IBytes(r.Bytes()),
			First:     r.First().String(),
			Events:    events,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(loops)
}

func PrintDevicesText(w io.Writer, ctx *OutputContext) error {
	for _, d := range ctx.Devices {
		_, err := fmt.Fprintf(w, "Multiple devices detected from %s: %s\n", d.Client, strings.Join(d.Devices, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}

func PrintDevicesTable(w io.Writer, ctx *OutputContext) error {
	table := NewTable(w)
	table.Header("Client", "Devices", "User Agents")
	for _, d := range ctx.Devices {
		agents := make([]string, 0, len(d.Devices))
		for _, dev := range d.Devices {
			agents = append(agents, strings.TrimPrefix(dev, d.Client+":"))
		}
		row := []string{d.Client, strconv.Itoa(len(d.Devices)), strings.Join(agents, " | ")}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func PrintDevicesJSON(w io.Writer, ctx *OutputContext) error {
	type jsonDevice struct {
		Client  string   `json:"client"`
		Devices []string `json:"devices"`
	}
	devices := make([]jsonDevice, 0, len(ctx.Devices))
	for _, d := range ctx.Devices {
		devices = append(devices, jsonDevice{Client: d.Client, Devices: d.Devices})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}
