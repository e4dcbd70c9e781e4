package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/domain/formModel"
	"github.com/akolanti/FormFlow/internal/history"
)

type HistoryOptions struct {
	GlobalOptions
	Query  string
	Output string
}

func DefaultHistoryOptions() *HistoryOptions {
	return &HistoryOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        tableFormat,
	}
}

func NewCmdHistory() *cobra.Command {
	o := DefaultHistoryOptions()
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List processed documents.",
		Args:  cobra.NoArgs,
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

func (o *HistoryOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.Query, "query", "q", "", "Only show file names containing this text")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: table or json")
}

func (o *HistoryOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *HistoryOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	entries, err := c.History(ctx)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	snap := history.Snapshot{Entries: entries, Count: len(entries)}.Filter(o.Query)

	if o.Output == jsonFormat {
		return json.NewEncoder(o.out).Encode(snap)
	}
	w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
	printHistoryTable(w, snap.Entries)
	fmt.Fprintf(w, "\n%d of %d documents\n", len(snap.Entries), snap.Count)
	return w.Flush()
}

func printHistoryTable(w *tabwriter.Writer, entries []formModel.HistoryEntry) {
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tUPLOADED\tCONFIDENCE")
	for _, e := range entries {
		confidence := "-"
		if e.ExtractionResults != nil && e.ExtractionResults.ConfidenceScore != nil {
			confidence = fmt.Sprintf("%.0f%%", *e.ExtractionResults.ConfidenceScore*100)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Id, e.FileName, e.Status, e.UploadedAt, confidence)
	}
}
