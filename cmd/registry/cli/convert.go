package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcit/lawregistry/internal/calendar"
)

// DateConverter is the engine surface used by the convert command.
type DateConverter interface {
	Detect(raw string) (calendar.Detection, error)
	NormalizeFrom(system calendar.System, raw string) (string, error)
	Convert(d calendar.Date, target calendar.System) (calendar.Date, error)
}

// ConvertOptions defines the flags of the convert command.
type ConvertOptions struct {
	From       string
	To         string
	JSONOutput bool
	Dates      []string
	Stdout     io.Writer
	Stderr     io.Writer
}

// ConvertResult is one converted input in JSON output.
type ConvertResult struct {
	Input     string `json:"input"`
	Source    string `json:"source,omitempty"`
	Ambiguous bool   `json:"ambiguous,omitempty"`
	Target    string `json:"target"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ConvertCommand converts every date in opts and prints the outcome. It
// returns 1 when any input fails, 2 on usage errors, and 0 otherwise.
func ConvertCommand(ctx context.Context, svc DateConverter, opts ConvertOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Dates) == 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "convert: at least one date is required")
		return 2
	}
	target := calendar.LunarHijri
	if opts.To != "" {
		sys, err := calendar.ParseSystem(opts.To)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "convert: --to: %v\n", err)
			return 2
		}
		target = sys
	}
	var from calendar.System
	if opts.From != "" {
		sys, err := calendar.ParseSystem(opts.From)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "convert: --from: %v\n", err)
			return 2
		}
		from = sys
	}

	results := make([]ConvertResult, 0, len(opts.Dates))
	failed := false
	for _, raw := range opts.Dates {
		if ctx.Err() != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "convert: %v\n", ctx.Err())
			return 1
		}
		res := convertOne(svc, from, target, raw)
		if res.Error != "" {
			failed = true
			if !opts.JSONOutput {
				_, _ = fmt.Fprintf(opts.Stderr, "convert: %s: %s\n", raw, res.Error)
			}
		} else if !opts.JSONOutput {
			renderConvertHuman(opts.Stdout, res)
		}
		results = append(results, res)
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(results); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "convert: encode json: %v\n", err)
			return 1
		}
	}
	if failed {
		return 1
	}
	return 0
}

func convertOne(svc DateConverter, from, target calendar.System, raw string) ConvertResult {
	res := ConvertResult{Input: raw, Target: target.String()}
	source := from
	if source == 0 {
		det, err := svc.Detect(raw)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		source, res.Ambiguous = det.System, det.Ambiguous
	}
	res.Source = source.String()

	if target == calendar.LunarHijri {
		out, err := svc.NormalizeFrom(source, raw)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Output = out
		return res
	}
	d, err := calendar.Parse(source, raw)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	out, err := svc.Convert(d, target)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Output = out.String()
	return res
}

func renderConvertHuman(out io.Writer, res ConvertResult) {
	note := ""
	if res.Ambiguous {
		note = "  (ambiguous year, pass --from to be exact)"
	}
	_, _ = fmt.Fprintf(out, "%s %s -> %s %s%s\n", strings.TrimSpace(res.Input), res.Source, res.Output, res.Target, note)
}

// NewConvertCommand builds `registry convert`.
func NewConvertCommand(svc DateConverter) *cobra.Command {
	opts := ConvertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [flags] DATE...",
		Short: "Convert dates between Gregorian, Solar Hijri and Lunar Hijri",
		Long: "Convert YYYY-MM-DD dates. Without --from the source calendar is detected from the year;\n" +
			"the default target is Lunar Hijri.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Dates = args
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			if code := ConvertCommand(cmd.Context(), svc, opts); code != 0 {
				return ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "source calendar (gregorian, solar_hijri, lunar_hijri); detected when empty")
	cmd.Flags().StringVar(&opts.To, "to", calendar.LunarHijri.String(), "target calendar")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "print results as JSON")
	return cmd
}
