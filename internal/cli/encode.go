package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/arloliu/clpir/format"
	"github.com/arloliu/clpir/ir"
	"github.com/arloliu/clpir/preamble"
	"github.com/arloliu/clpir/stream"
)

const (
	// epochMillisLayout selects integer epoch milliseconds instead of a time layout.
	epochMillisLayout = "epoch-ms"
	// maxLineSize bounds a single input line.
	maxLineSize = 16 * 1024 * 1024
)

type encodeOptions struct {
	output             string
	compression        string
	inputFormat        string
	timestampLayout    string
	timestampPattern   string
	timeZone           string
	byteOrder          string
	dictionaryCapacity int

	referenceTimestamp    int64
	referenceTimestampSet bool
}

func newEncodeCommand(a *app) *cobra.Command {
	o := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Encode log lines into an IR stream",
		Long: `Encode log lines into an IR stream.

With --input-format text each line is "<timestamp> <message>"; the timestamp is parsed
with --timestamp-layout (a Go time layout, or epoch-ms). With --input-format jsonl each
line is an object with "timestamp" (epoch milliseconds), "message" and optional string
"fields".

Example:
  clpir encode app.log -o app.clp.zst --compression zstd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.referenceTimestampSet = cmd.Flags().Changed("reference-timestamp")
			return a.runEncode(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "-", "Output file, - for stdout")
	f.StringVar(&o.compression, "compression", "none", "Output compression: none, zstd, s2 or lz4")
	f.StringVar(&o.inputFormat, "input-format", "text", "Input format: text or jsonl")
	f.StringVar(&o.timestampLayout, "timestamp-layout", time.RFC3339Nano, "Go time layout of text timestamps, or epoch-ms")
	f.StringVar(&o.timestampPattern, "timestamp-pattern", "yyyy-MM-dd'T'HH:mm:ss.SSSZ", "Timestamp pattern recorded in the metadata")
	f.StringVar(&o.timeZone, "time-zone", "UTC", "IANA time zone recorded in the metadata")
	f.StringVar(&o.byteOrder, "byte-order", "big", "Payload byte order: big or little")
	f.IntVar(&o.dictionaryCapacity, "dictionary-capacity", 0, "Number of variable strings to deduplicate, 0 disables")
	f.Int64Var(&o.referenceTimestamp, "reference-timestamp", 0, "Reference timestamp in epoch ms (default: first event)")

	return cmd
}

func (a *app) runEncode(cmd *cobra.Command, input string, o *encodeOptions) (err error) {
	compression, ok := format.ParseCompressionType(o.compression)
	if !ok {
		return fmt.Errorf("invalid compression %q", o.compression)
	}
	order, ok := format.ParseByteOrder(o.byteOrder)
	if !ok {
		return fmt.Errorf("invalid byte order %q", o.byteOrder)
	}
	if _, err := time.LoadLocation(o.timeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}

	var parse lineParser
	switch o.inputFormat {
	case "text":
		parse = textLineParser(o.timestampLayout)
	case "jsonl":
		parse = jsonLineParser()
	default:
		return fmt.Errorf("invalid input format %q, want text or jsonl", o.inputFormat)
	}

	in, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(cmd, o.output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var w *stream.Writer
	defer func() {
		if err != nil && w != nil {
			w.Abort()
		}
	}()

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		ev, err := parse(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		if w == nil {
			refTs := ev.Timestamp
			if o.referenceTimestampSet {
				refTs = o.referenceTimestamp
			}
			if w, err = a.newStreamWriter(out, refTs, order, compression, o); err != nil {
				return err
			}
		}

		if err := w.Write(ev); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if w == nil {
		// Empty input still produces a valid, empty stream.
		refTs := o.referenceTimestamp
		if !o.referenceTimestampSet {
			refTs = time.Now().UnixMilli()
		}
		if w, err = a.newStreamWriter(out, refTs, order, compression, o); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	stats := w.Stats()
	a.logger.Info("encoded IR stream",
		"records", w.Count(),
		"raw_bytes", stats.OriginalSize,
		"written_bytes", stats.CompressedSize,
		"compression", compression.String(),
	)

	return nil
}

func (a *app) newStreamWriter(out io.Writer, refTs int64, order format.ByteOrder, compression format.CompressionType, o *encodeOptions) (*stream.Writer, error) {
	meta, err := preamble.NewMetadata(refTs, o.timestampPattern, o.timeZone,
		preamble.WithByteOrder(order),
		preamble.WithDictionaryCapacity(o.dictionaryCapacity),
	)
	if err != nil {
		return nil, err
	}

	return stream.NewWriter(out, meta,
		stream.WithWriterCompression(compression),
		stream.WithWriterLogger(a.logger),
	)
}

// lineParser turns one input line into a log event.
type lineParser func(line []byte) (ir.LogEvent, error)

func textLineParser(layout string) lineParser {
	return func(line []byte) (ir.LogEvent, error) {
		tsField, message, _ := bytes.Cut(line, []byte(" "))

		var ts int64
		if layout == epochMillisLayout {
			v, err := strconv.ParseInt(string(tsField), 10, 64)
			if err != nil {
				return ir.LogEvent{}, fmt.Errorf("parse epoch timestamp %q: %w", tsField, err)
			}
			ts = v
		} else {
			t, err := time.Parse(layout, string(tsField))
			if err != nil {
				return ir.LogEvent{}, fmt.Errorf("parse timestamp: %w", err)
			}
			ts = t.UnixMilli()
		}

		return ir.NewLogEvent(ts, string(message)), nil
	}
}

var errMissingJSONKey = errors.New("missing key")

func jsonLineParser() lineParser {
	var p fastjson.Parser

	return func(line []byte) (ir.LogEvent, error) {
		v, err := p.ParseBytes(line)
		if err != nil {
			return ir.LogEvent{}, fmt.Errorf("parse JSON: %w", err)
		}

		tsValue := v.Get("timestamp")
		if tsValue == nil {
			return ir.LogEvent{}, fmt.Errorf("%w: timestamp", errMissingJSONKey)
		}
		ts, err := tsValue.Int64()
		if err != nil {
			return ir.LogEvent{}, fmt.Errorf("timestamp: %w", err)
		}

		msgValue := v.Get("message")
		if msgValue == nil {
			return ir.LogEvent{}, fmt.Errorf("%w: message", errMissingJSONKey)
		}
		msg, err := msgValue.StringBytes()
		if err != nil {
			return ir.LogEvent{}, fmt.Errorf("message: %w", err)
		}

		ev := ir.NewLogEvent(ts, string(msg))

		if fieldsValue := v.Get("fields"); fieldsValue != nil {
			obj, err := fieldsValue.Object()
			if err != nil {
				return ir.LogEvent{}, fmt.Errorf("fields: %w", err)
			}

			ev.Fields = make(map[string]string, obj.Len())
			obj.Visit(func(key []byte, fv *fastjson.Value) {
				if err != nil {
					return
				}
				var b []byte
				if b, err = fv.StringBytes(); err != nil {
					err = fmt.Errorf("field %q: %w", key, err)
					return
				}
				ev.Fields[string(key)] = string(b)
			})
			if err != nil {
				return ir.LogEvent{}, err
			}
		}

		return ev, nil
	}
}
