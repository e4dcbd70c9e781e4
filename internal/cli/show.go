package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/normalizer"
	"github.com/akolanti/FormFlow/internal/workspace"
)

type ShowOptions struct {
	GlobalOptions
	View string
}

func DefaultShowOptions() *ShowOptions {
	return &ShowOptions{
		GlobalOptions: DefaultGlobalOptions(),
		View:          string(workspace.ViewTable),
	}
}

func NewCmdShow() *cobra.Command {
	o := DefaultShowOptions()
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a completed extraction.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ShowOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.View, "view", o.View, "View: table, form, json or raw")
}

func (o *ShowOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	_, err := workspace.ParseView(o.View)
	return err
}

func (o *ShowOptions) Run(ctx context.Context, args []string) error {
	kind, _ := workspace.ParseView(o.View)
	svc, err := o.Workspace(ctx, nil)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	v, err := svc.View(ctx, args[0], kind)
	if err != nil {
		return fmt.Errorf("reading extraction %s: %w", args[0], err)
	}
	if v.ShapeWarning != "" {
		fmt.Fprintf(o.errOut, "warning: %s\n", v.ShapeWarning)
	}

	switch kind {
	case workspace.ViewForm:
		return writeIndented(o.out, v.Form)
	case workspace.ViewJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, v.Document, "", "  "); err != nil {
			return fmt.Errorf("formatting document: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(o.out)
		return err
	case workspace.ViewRaw:
		if v.RawText == "" {
			fmt.Fprintln(o.out, v.Notice)
			return nil
		}
		fmt.Fprintln(o.out, v.RawText)
		return nil
	default:
		fmt.Fprintf(o.errOut, "%d fields extracted\n", v.FieldCount)
		if v.ReviewItems {
			fmt.Fprintln(o.errOut, "review items detected")
		}
		w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
		printRowsTable(w, v.Rows)
		return w.Flush()
	}
}

func printRowsTable(w *tabwriter.Writer, rows []normalizer.Row) {
	fmt.Fprintln(w, "FIELD\tVALUE\tCONFIDENCE")
	for _, r := range rows {
		confidence := ""
		if r.Confidence != nil {
			confidence = fmt.Sprint(r.Confidence)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Field, r.Value, confidence)
	}
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
