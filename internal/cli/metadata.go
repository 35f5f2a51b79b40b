package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/arloliu/clpir/stream"
)

func newMetadataCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metadata <input>",
		Short: "Print the metadata of an IR stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			r, err := stream.NewReader(in, stream.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer r.Close()

			meta := r.Metadata()
			out := cmd.OutOrStdout()

			if asJSON {
				var arena fastjson.Arena
				obj := arena.NewObject()
				obj.Set("compression", arena.NewString(r.Compression().String()))
				obj.Set("version", arena.NewString(meta.Version()))
				obj.Set("reference_timestamp", arena.NewNumberString(strconv.FormatInt(meta.ReferenceTimestamp(), 10)))
				obj.Set("timestamp_pattern", arena.NewString(meta.TimestampPattern()))
				obj.Set("timestamp_pattern_syntax", arena.NewString(meta.TimestampPatternSyntax()))
				obj.Set("time_zone", arena.NewString(meta.TimeZoneID()))
				obj.Set("byte_order", arena.NewString(meta.ByteOrder().String()))
				obj.Set("dictionary_capacity", arena.NewNumberInt(meta.DictionaryCapacity()))
				_, err = fmt.Fprintln(out, string(obj.MarshalTo(nil)))

				return err
			}

			_, err = fmt.Fprintf(out,
				"compression:         %s\nversion:             %s\nreference timestamp: %d\n"+
					"timestamp pattern:   %s\ntime zone:           %s\nbyte order:          %s\n"+
					"dictionary capacity: %d\n",
				r.Compression(), meta.Version(), meta.ReferenceTimestamp(),
				meta.TimestampPattern(), meta.TimeZoneID(), meta.ByteOrder(),
				meta.DictionaryCapacity())

			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metadata as JSON")

	return cmd
}
