package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/domain/jobModel"
)

type UploadOptions struct {
	GlobalOptions
	Wait bool
}

func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdUpload() *cobra.Command {
	o := DefaultUploadOptions()
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image or PDF for extraction.",
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

func (o *UploadOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.BoolVarP(&o.Wait, "wait", "w", false, "Poll until the extraction finishes")
}

func (o *UploadOptions) Run(ctx context.Context, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var onUpdate func(jobModel.Job)
	if o.Wait {
		onUpdate = func(job jobModel.Job) {
			fmt.Fprintf(o.errOut, "%s %s %d%%\n", job.Id, job.Status, job.Progress)
		}
	}
	svc, err := o.Workspace(ctx, onUpdate)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	job, err := svc.Upload(ctx, filepath.Base(args[0]), content)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", args[0], err)
	}
	if !o.Wait {
		fmt.Fprintf(o.out, "%s\t%s\n", job.Id, job.Status)
		return nil
	}

	job, err = svc.Wait(ctx, job.Id)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", job.Id, err)
	}
	if job.Status == jobModel.JobStatusError {
		msg := "extraction failed"
		if job.Error != nil {
			msg = job.Error.Message
		}
		return errors.New(msg)
	}
	fmt.Fprintf(o.out, "%s\t%s\n", job.Id, job.Status)
	return nil
}
