package cli

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/stream"
)

type outputOptions struct {
	json            bool
	timeZone        string
	allowIncomplete bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.json, "json", false, "Print events as JSON lines")
	f.StringVar(&o.timeZone, "time-zone", "", "Render timestamps in this IANA time zone (default: the stream's)")
	f.BoolVar(&o.allowIncomplete, "allow-incomplete", false, "Treat a stream without end-of-stream token as complete")
}

func newDecodeCommand(a *app) *cobra.Command {
	o := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "decode <input>",
		Short: "Decode an IR stream into log lines",
		Long: `Decode an IR stream into log lines, one event per line.

Example:
  clpir decode app.clp.zst --time-zone America/New_York`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRead(cmd, args[0], o)
		},
	}
	o.register(cmd)

	return cmd
}

// runRead prints the events of input, filtered by any extra reader options.
func (a *app) runRead(cmd *cobra.Command, input string, o *outputOptions, opts ...stream.ReaderOption) error {
	in, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer in.Close()

	opts = append(opts,
		stream.WithAllowIncompleteStream(o.allowIncomplete),
		stream.WithLogger(a.logger),
	)
	r, err := stream.NewReader(in, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	loc, err := a.location(r, o.timeZone)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	p := &eventPrinter{w: out, loc: loc, json: o.json}

	count := 0
	for ev, err := range r.All() {
		if err != nil {
			_ = out.Flush()
			return err
		}
		if err := p.print(ev); err != nil {
			return err
		}
		count++
	}
	a.logger.Debug("printed events", "count", count)

	return out.Flush()
}

// location resolves the zone timestamps are rendered in: the override if given, else the
// stream's own zone, else UTC.
func (a *app) location(r *stream.Reader, override string) (*time.Location, error) {
	if override != "" {
		loc, err := time.LoadLocation(override)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone: %w", err)
		}

		return loc, nil
	}

	loc, err := r.Metadata().Location()
	if err != nil {
		a.logger.Warn("unknown stream time zone, using UTC", "time_zone", r.Metadata().TimeZoneID(), "error", err)
		return time.UTC, nil
	}

	return loc, nil
}

type eventPrinter struct {
	w     io.Writer
	loc   *time.Location
	json  bool
	arena fastjson.Arena
	buf   []byte
}

func (p *eventPrinter) print(ev ir.LogEvent) error {
	if !p.json {
		_, err := fmt.Fprintln(p.w, ev.FormattedMessage(p.loc))
		return err
	}

	p.arena.Reset()
	obj := p.arena.NewObject()
	obj.Set("index", p.arena.NewNumberString(strconv.FormatUint(ev.Index, 10)))
	obj.Set("timestamp", p.arena.NewNumberString(strconv.FormatInt(ev.Timestamp, 10)))
	obj.Set("time", p.arena.NewString(ev.FormattedTimestamp(p.loc)))
	obj.Set("message", p.arena.NewString(ev.Message))
	if len(ev.Fields) > 0 {
		fields := p.arena.NewObject()
		for _, k := range slices.Sorted(maps.Keys(ev.Fields)) {
			fields.Set(k, p.arena.NewString(ev.Fields[k]))
		}
		obj.Set("fields", fields)
	}

	p.buf = obj.MarshalTo(p.buf[:0])
	p.buf = append(p.buf, '\n')
	_, err := p.w.Write(p.buf)

	return err
}
