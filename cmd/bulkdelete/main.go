package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bulkdelete/internal/bulkdelete/model"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// notifyContext is signal.NotifyContext that releases the signals once the
// context is done, so a second interrupt terminates the process even while a
// run is still blocked reading stdin.
func notifyContext(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, sigs...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "Error:", describe(err))
	return 1
}

func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrConfiguration):
		return err.Error()
	case errors.Is(err, model.ErrInputParse):
		return err.Error() + " (remaining identifiers were not processed)"
	case errors.Is(err, model.ErrUnauthorizedHalt):
		return err.Error() + "; refresh the token and rerun with the unprocessed identifiers"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "bulkdelete",
		Short: "Delete remote resources listed in a CSV or JSON stream",
		Long: `bulkdelete reads resource identifiers (the first CSV field of each record,
or results[].id of a JSON document) and issues an authenticated DELETE for each
one against BULKDELETE_API_URL + <escaped id>.

One line is written to stdout per identifier:
  O: <url>                     deleted (200)
  X: <url>                     not found (404)
  F: Need to grab a new token  unauthorized (401), the run halts
  E: <summary>                 anything else

Credentials come from BULKDELETE_API_KEY and BULKDELETE_API_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(stdin, stdout, stderr))
	root.AddCommand(newExtractCmd(stdin, stdout))
	return root
}
