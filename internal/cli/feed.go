package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kbukum/cassandrastore/metadata"
)

type feedListOptions struct {
	regAuth       string
	excludeHidden bool
}

func newFeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Inspect metadata feeds",
	}

	opts := &feedListOptions{}
	list := &cobra.Command{
		Use:   "list <feed>",
		Short: "List the entities of a feed",
		Long: `List the enabled entities of a feed. With --reg, list every entity
registered by that authority instead, disabled ones included.`,
		Args: cobra.ExactArgs(1),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			var entities map[string]*metadata.Entity
			if opts.regAuth != "" {
				entities, err = store.GetRegAuthUI(ctx, args[0], opts.regAuth, opts.excludeHidden)
			} else {
				entities, err = store.GetFeed(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return a.out.emit(entities, func(w io.Writer) error {
				for _, id := range sortedKeys(entities) {
					e := entities[id]
					state := "enabled"
					if !e.Enabled {
						state = "disabled"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", id, state, e.RegistrationAuthority)
				}
				_, err := fmt.Fprintf(w, "%d entities\n", len(entities))
				return err
			})
		}),
	}
	list.Flags().StringVar(&opts.regAuth, "reg", "", "registration authority filter")
	list.Flags().BoolVar(&opts.excludeHidden, "exclude-hidden", false, "skip entities hidden from discovery (with --reg)")
	cmd.AddCommand(list)

	return cmd
}

func newMetadataSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata-set [set]",
		Short: "Print the entity ids of a metadata set",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(rootOpts, false, func(ctx context.Context, a *app, args []string) error {
			set := metadata.SupportedSet
			if len(args) == 1 {
				set = args[0]
			}
			store, err := a.metadata(ctx)
			if err != nil {
				return err
			}
			entries, err := store.GetMetadataSet(ctx, set)
			if err != nil {
				return err
			}
			ids := sortedKeys(entries)
			return a.out.emit(map[string]any{"set": set, "feed": store.Feed(), "entities": ids}, func(w io.Writer) error {
				for _, id := range ids {
					fmt.Fprintln(w, id)
				}
				_, err := fmt.Fprintf(w, "%d entities in %s\n", len(ids), set)
				return err
			})
		}),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
