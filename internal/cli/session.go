package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Read and remove session values",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <type> <key>",
		Short: "Print a decoded session value",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			value, found, err := a.sessions().Get(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			result := map[string]any{"type": args[0], "key": args[1], "found": found, "value": value}
			return a.out.emit(result, func(w io.Writer) error {
				if !found {
					_, err := fmt.Fprintln(w, "not found")
					return err
				}
				_, err := fmt.Fprintln(w, compact(value))
				return err
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <type> <key>",
		Short: "Remove a session value",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			if err := a.sessions().Delete(ctx, args[0], args[1]); err != nil {
				return err
			}
			return a.out.emit(map[string]any{"type": args[0], "key": args[1], "deleted": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "deleted")
				return err
			})
		}),
	})

	return cmd
}
