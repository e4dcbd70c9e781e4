package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akolanti/FormFlow/internal/mcpserver"
)

type MCPOptions struct {
	GlobalOptions
}

func DefaultMCPOptions() *MCPOptions {
	return &MCPOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdMCP() *cobra.Command {
	o := DefaultMCPOptions()
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve extraction history and results as MCP tools on stdio.",
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

func (o *MCPOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
}

func (o *MCPOptions) Run(ctx context.Context, args []string) error {
	svc, err := o.Workspace(ctx, nil)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	svc.Start(ctx)
	return mcpserver.Serve(ctx, svc)
}
