package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"github.com/calebcase/morgue"
	"github.com/calebcase/morgue/payload"
)

// Error is the class of errors reported by the command.
var Error = errs.Class("morgue-unpack")

type options struct {
	strict     bool
	maxObjects uint64
	output     string
	format     string
	logLevel   string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "morgue-unpack",
		Short: "Decode a saved crash-report query response",
		Long: `morgue-unpack decodes a columnar query response saved from the crash-report
service and prints the reconstructed records.

Supported files:
  .json, .json.zst          JSON responses
  .msgpack, .msgpack.zst    msgpack responses
  -                         standard input (see --format)

Example:
  morgue-unpack fields response.json
  morgue-unpack flat response.json
  morgue-unpack objects --strict response.msgpack.zst
  morgue-unpack row 0 response.json --output dump`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.strict, "strict", false, "fail on unknown groups and duplicate factors")
	flags.Uint64Var(&opts.maxObjects, "max-objects", morgue.DefaultMaxObjects, "maximum objects to materialize (0 for no limit)")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format (json, dump)")
	flags.StringVar(&opts.format, "format", "auto", "input format (auto, json, msgpack)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "fields <file>",
			Short: "Print the column types",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := opts.decoder(args[0], stderr)
				if err != nil {
					return err
				}

				return opts.print(stdout, d.Fields())
			},
		},
		&cobra.Command{
			Use:   "flat <file>",
			Short: "Print records keyed by factor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := opts.decoder(args[0], stderr)
				if err != nil {
					return err
				}

				records, err := d.UnpackFlat()
				if err != nil {
					return err
				}

				out, err := stringKeys(records)
				if err != nil {
					return err
				}

				return opts.print(stdout, out)
			},
		},
		&cobra.Command{
			Use:   "objects <file>",
			Short: "Print object records grouped by label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := opts.decoder(args[0], stderr)
				if err != nil {
					return err
				}

				groups, err := d.UnpackObjects()
				if err != nil {
					return err
				}

				out, err := stringKeys(groups)
				if err != nil {
					return err
				}

				return opts.print(stdout, out)
			},
		},
		&cobra.Command{
			Use:   "row <index> <file>",
			Short: "Print one flat row with unique aggregates unwrapped",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return Error.New("invalid index %q: %v", args[0], err)
				}

				d, err := opts.decoder(args[1], stderr)
				if err != nil {
					return err
				}

				key, rec, err := d.Row(index)
				if err != nil {
					return err
				}

				return opts.print(stdout, map[string]any{
					"key":    key,
					"record": rec,
				})
			},
		},
	)

	return root
}

func (o *options) logger(w io.Writer) (log.Logger, error) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	switch strings.ToLower(o.logLevel) {
	case "debug":
		return level.NewFilter(logger, level.AllowDebug()), nil
	case "info":
		return level.NewFilter(logger, level.AllowInfo()), nil
	case "warn":
		return level.NewFilter(logger, level.AllowWarn()), nil
	case "error":
		return level.NewFilter(logger, level.AllowError()), nil
	}

	return nil, Error.New("invalid log level %q", o.logLevel)
}

func (o *options) decoder(path string, stderr io.Writer) (*morgue.Decoder, error) {
	logger, err := o.logger(stderr)
	if err != nil {
		return nil, err
	}

	f, err := payload.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	var p *payload.Payload

	switch {
	case path == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		p, err = payload.Unmarshal(data, f)
		if err != nil {
			return nil, err
		}
	case f == payload.Auto:
		p, err = payload.ReadFile(path)
		if err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		p, err = payload.Unmarshal(data, f)
		if err != nil {
			return nil, err
		}
	}

	level.Debug(logger).Log("msg", "loaded response", "path", path, "columns", len(p.Columns), "values", len(p.Values))

	d := morgue.New(p,
		morgue.WithLogger(logger),
		morgue.WithStrict(o.strict),
		morgue.WithMaxObjects(o.maxObjects),
	)

	return d, nil
}

func (o *options) print(w io.Writer, v any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "dump":
		spew.Fdump(w, v)
		return nil
	}

	return Error.New("invalid output %q", o.output)
}

// stringKeys converts result maps keyed by factor or group label into maps
// JSON can encode. Distinct keys with the same text, such as 1 and "1", are
// an error.
func stringKeys[V any](m map[any]V) (out map[string]V, err error) {
	out = make(map[string]V, len(m))
	from := make(map[string]any, len(m))

	for k, v := range m {
		s := fmt.Sprint(k)
		if prev, ok := from[s]; ok {
			return nil, Error.New("keys %#v and %#v both print as %q", prev, k, s)
		}

		from[s] = k
		out[s] = v
	}

	return out, nil
}
