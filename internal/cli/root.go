// Package cli implements the cassandrastore operator commands.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvFile    string
	Hosts      []string
	Keyspace   string
	Verbose    bool
	Format     string // "json" | "text"

	// Connect opens the cluster connection. Tests replace it.
	Connect Connector
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command with the gocql connector.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Connect: ConnectCassandra})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cassandrastore",
		Short: "Operate the Cassandra session and metadata store",
		Long: `Inspect and maintain the session and federation metadata tables.

Configuration is read from config.yml, .env and CASSANDRASTORE_* environment
variables; --hosts and --keyspace override the cassandra section.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: search standard locations)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", ".env file (default: search standard locations)")
	cmd.PersistentFlags().StringSliceVar(&opts.Hosts, "hosts", nil, "contact points, host or host:port")
	cmd.PersistentFlags().StringVarP(&opts.Keyspace, "keyspace", "k", "", "keyspace")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newPingCommand(opts))
	cmd.AddCommand(newSessionCommand(opts))
	cmd.AddCommand(newFeedCommand(opts))
	cmd.AddCommand(newEntityCommand(opts))
	cmd.AddCommand(newMetadataSetCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}
