package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Run builds the command tree and executes it with args.
//
// Command output goes to stdout, logs to stderr. The --verbose (-v) flag
// switches the logger to debug level before any command runs, which makes
// every HTTP request and response visible.
//
// Example:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
//	    os.Exit(1)
//	}
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return New(stderr, LogInfo).Execute(ctx, args, stdout, stderr)
}

// Execute runs the root command of c with args.
func (c *CLI) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return nil
	}

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	// main prints the error with its user message.
	root.SilenceErrors = true

	return root.ExecuteContext(ctx)
}
