package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/cassandrastore/errors"
)

func newEntityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Inspect and maintain single entities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <feed> <entityid>",
		Short: "Print an enabled entity",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			e, err := store.LookupEntity(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if e == nil {
				return errors.NotFound("entity", args[1])
			}
			return a.out.emit(e, func(w io.Writer) error {
				fmt.Fprintf(w, "entityid: %s\nfeed: %s\nreg: %s\n", e.EntityID, e.Feed, e.RegistrationAuthority)
				if e.Created != nil {
					fmt.Fprintf(w, "created: %d\n", *e.Created)
				}
				if e.Updated != nil {
					fmt.Fprintf(w, "updated: %d\n", *e.Updated)
				}
				_, err := fmt.Fprintf(w, "metadata: %s\n", compact(e.Metadata))
				return err
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable <feed> <entityid>",
		Short: "Soft-delete an entity, keeping its metadata",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			if err := store.SoftDelete(ctx, args[0], args[1]); err != nil {
				return err
			}
			return a.out.emit(map[string]any{"entityid": args[1], "enabled": false}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "disabled %s\n", args[1])
				return err
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <feed> <entityid>",
		Short: "Remove an entity row",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, args[0], args[1]); err != nil {
				return err
			}
			return a.out.emit(map[string]any{"entityid": args[1], "deleted": true}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted %s\n", args[1])
				return err
			})
		}),
	})

	var logoFile string
	logo := &cobra.Command{
		Use:   "logo <feed> <entityid>",
		Short: "Show or replace an entity logo",
		Args:  cobra.ExactArgs(2),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			if logoFile != "" {
				data, err := os.ReadFile(logoFile)
				if err != nil {
					return err
				}
				etag, err := store.UpdateLogo(ctx, args[0], args[1], data)
				if err != nil {
					return err
				}
				return a.out.emit(map[string]any{"entityid": args[1], "logo_etag": etag}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "logo_etag: %s\n", etag)
					return err
				})
			}

			l, err := store.GetLogo(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if l == nil {
				return errors.NotFound("entity", args[1])
			}
			result := map[string]any{"enabled": l.Enabled, "bytes": len(l.Data), "logo_etag": l.ETag, "logo_updated": l.Updated}
			return a.out.emit(result, func(w io.Writer) error {
				fmt.Fprintf(w, "enabled: %v\nbytes: %d\nlogo_etag: %s\n", l.Enabled, len(l.Data), l.ETag)
				if l.Updated != nil {
					fmt.Fprintf(w, "logo_updated: %d\n", *l.Updated)
				}
				return nil
			})
		}),
	}
	logo.Flags().StringVar(&logoFile, "set", "", "replace the logo with this file")
	cmd.AddCommand(logo)

	return cmd
}
