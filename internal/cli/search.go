package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/clpir/query"
	"github.com/arloliu/clpir/stream"
)

type searchOptions struct {
	outputOptions

	from       string
	to         string
	patterns   []string
	ignoreCase bool
	margin     int64
	earlyStop  bool
}

func newSearchCommand(a *app) *cobra.Command {
	o := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <input>",
		Short: "Print the events of an IR stream that match a query",
		Long: `Print the events of an IR stream that match a time range and wildcard patterns.

Patterns match the whole message: '*' matches any run of characters, '?' a single
character and '\' escapes the next one. An event matches if any pattern matches.
Time bounds are inclusive and accept epoch milliseconds or RFC 3339 timestamps.

--early-stop ends the search at the first event later than --to plus --margin. Only use
it on streams whose timestamps never decrease.

Example:
  clpir search app.clp.zst --from 2024-05-01T00:00:00Z --pattern '*ERROR*' -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := o.buildQuery()
			if err != nil {
				return err
			}
			a.logger.Debug("built query", "query", q.String())

			return a.runRead(cmd, args[0], &o.outputOptions,
				stream.WithQuery(q),
				stream.WithEarlyTermination(o.earlyStop),
			)
		},
	}

	o.register(cmd)
	f := cmd.Flags()
	f.StringVar(&o.from, "from", "", "Inclusive lower time bound")
	f.StringVar(&o.to, "to", "", "Inclusive upper time bound")
	f.StringArrayVarP(&o.patterns, "pattern", "p", nil, "Wildcard pattern, repeatable")
	f.BoolVarP(&o.ignoreCase, "ignore-case", "i", false, "Match patterns case-insensitively")
	f.Int64Var(&o.margin, "margin", 0, "Termination margin in milliseconds past --to")
	f.BoolVar(&o.earlyStop, "early-stop", false, "Stop at the first event past --to plus --margin")

	return cmd
}

func (o *searchOptions) buildQuery() (*query.Query, error) {
	b := query.NewBuilder()

	if o.from != "" {
		ts, err := parseTimeBound(o.from)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		b.SetSearchTimeLowerBound(ts)
	}
	if o.to != "" {
		ts, err := parseTimeBound(o.to)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		b.SetSearchTimeUpperBound(ts)
	}
	if _, err := b.SetSearchTimeTerminationMargin(o.margin); err != nil {
		return nil, fmt.Errorf("--margin: %w", err)
	}

	for _, p := range o.patterns {
		b.AddWildcardQuery(query.NewWildcardQuery(p, !o.ignoreCase))
	}

	return b.BuildQuery(), nil
}

// parseTimeBound accepts epoch milliseconds or an RFC 3339 timestamp.
func parseTimeBound(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("want epoch milliseconds or RFC 3339: %w", err)
	}

	return t.UnixMilli(), nil
}
