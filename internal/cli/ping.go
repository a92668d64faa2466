package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the cluster",
		Args:  cobra.NoArgs,
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, _ []string) error {
			version, err := a.conn.Backend().Ping(ctx)
			if err != nil {
				return err
			}
			health := a.registry.HealthAll(ctx)
			descriptions := a.registry.Describe()
			result := map[string]any{
				"release_version": version,
				"components":      descriptions,
				"health":          health,
			}
			err = a.out.emit(result, func(w io.Writer) error {
				fmt.Fprintf(w, "release_version: %s\n", version)
				for _, d := range descriptions {
					fmt.Fprintf(w, "%s (%s): %s\n", d.Name, d.Type, d.Details)
				}
				for _, h := range health {
					fmt.Fprintf(w, "%s: %s", h.Name, h.Status)
					if h.Message != "" {
						fmt.Fprintf(w, " (%s)", h.Message)
					}
					fmt.Fprintln(w)
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, h := range health {
				if !h.OK() {
					return fmt.Errorf("%s is %s", h.Name, h.Status)
				}
			}
			return nil
		}),
	}
}
