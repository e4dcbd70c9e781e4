package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/export"
)

const stdoutTarget = "-"

type ExportOptions struct {
	GlobalOptions
	OutputDir string
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		OutputDir:     ".",
	}
}

func NewCmdExport() *cobra.Command {
	o := DefaultExportOptions()
	cmd := &cobra.Command{
		Use:   "export ID FORMAT",
		Short: "Download an extraction as json, csv or xlsx.",
		Args:  cobra.ExactArgs(2),
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

func (o *ExportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.OutputDir, "output-dir", "d", o.OutputDir, "Directory to write the file to, - for stdout")
}

func (o *ExportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	_, err := export.ParseFormat(args[1])
	return err
}

func (o *ExportOptions) Run(ctx context.Context, args []string) error {
	svc, err := o.Workspace(ctx, nil)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	f, err := svc.Export(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("exporting %s: %w", args[0], err)
	}
	if o.OutputDir == stdoutTarget {
		_, err := o.out.Write(f.Data)
		return err
	}

	path := filepath.Join(o.OutputDir, f.Name)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintln(o.out, path)
	return nil
}
