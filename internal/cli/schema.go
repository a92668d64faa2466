package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/cassandrastore/cassandra"
)

type schemaOptions struct {
	factor      int
	datacenters []string
	print       bool
}

func newSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &schemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the keyspace and tables",
		Long: `Create the keyspace, the session table and the entities table if they do
not exist. Replication comes from the replication section of the config
unless --replication-factor or --dc is given.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().IntVar(&opts.factor, "replication-factor", 0, "SimpleStrategy replication factor")
	cmd.Flags().StringSliceVar(&opts.datacenters, "dc", nil, "NetworkTopologyStrategy datacenter as name=factor (repeatable)")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the statements instead of applying them")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if opts.print {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			repl, err := opts.replication(cfg.Replication)
			if err != nil {
				return err
			}
			ddl := cassandra.Schema(cfg.Cassandra.Keyspace, repl)
			return newOutput(rootOpts.Format, cmd.OutOrStdout()).emit(ddl, func(w io.Writer) error {
				for _, stmt := range ddl {
					if _, err := fmt.Fprintln(w, stmt+";"); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return run(rootOpts, true, func(ctx context.Context, a *app, _ []string) error {
			repl, err := opts.replication(a.cfg.Replication)
			if err != nil {
				return err
			}
			if err := cassandra.ApplySchema(ctx, a.conn.Backend(), a.cfg.Cassandra.Keyspace, repl); err != nil {
				return err
			}
			return a.out.emit(map[string]any{"keyspace": a.cfg.Cassandra.Keyspace, "applied": true}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "schema applied to keyspace %s\n", a.cfg.Cassandra.Keyspace)
				return err
			})
		})(cmd, args)
	}
	return cmd
}

func (o *schemaOptions) replication(base cassandra.Replication) (cassandra.Replication, error) {
	if len(o.datacenters) > 0 {
		dcs := make(map[string]int, len(o.datacenters))
		for _, spec := range o.datacenters {
			name, value, ok := strings.Cut(spec, "=")
			factor, err := strconv.Atoi(value)
			if !ok || name == "" || err != nil || factor < 1 {
				return cassandra.Replication{}, fmt.Errorf("invalid --dc %q: want name=factor", spec)
			}
			dcs[name] = factor
		}
		return cassandra.Replication{DataCenters: dcs}, nil
	}
	if o.factor > 0 {
		return cassandra.Replication{Factor: o.factor}, nil
	}
	return base, nil
}
