package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/config"
	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/metrics"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

// app carries what every subcommand shares once the root command has loaded the config.
type app struct {
	configPath string
	dbDir      string
	logLevel   string

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "owlgraph",
		Short: "Materialize OWL class hierarchies into a property graph",
		Long: `owlgraph loads OWL ontologies, classifies them, and writes every named class as a node
linked to its direct superclasses. The owl:Thing root anchors the hierarchy.

Settings come from an optional YAML file (--config) and OWLGRAPH_* environment
variables; flags override both. Run "owlgraph env" for the variable list.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if l, ok := a.logger.(*logging.JSONLogger); ok {
				_ = l.Sync()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.dbDir, "db", "", "Embedded store directory (overrides store.dir)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "List the environment variables owlgraph reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(a.stdout, config.Usage())
			return err
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "owlgraph %s\n", version)
		},
	}

	rootCmd.AddCommand(
		newImportCommand(a),
		newQueryCommand(a),
		newBrowseCommand(a),
		newVerifyCommand(a),
		newExportCommand(a),
		newBackupCommand(a),
		newServeCommand(a),
		newWatchCommand(a),
		envCmd,
		versionCmd,
	)
	return rootCmd
}

// setup loads the configuration, applies the persistent flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbDir != "" {
		cfg.Store.Dir = a.dbDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewJSONLogger(a.stderr, cfg.LogLevel())
	a.metrics = metrics.NewRegistry()
	return nil
}

// openStore opens the embedded store. With mustExist, a missing directory is an error instead
// of a fresh empty database.
func (a *app) openStore(mustExist bool) (*storage.GraphStorage, error) {
	dir := a.cfg.Store.Dir
	if mustExist {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("no database at %s: %w", dir, err)
		}
	}
	gs, err := storage.NewGraphStorageWithConfig(storage.StorageConfig{
		DataDir:           dir,
		CompressSnapshots: !a.cfg.Store.DisableCompression,
		IndexedProperties: []string{materialize.PropName},
		Metrics:           a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dir, err)
	}
	return gs, nil
}

// subjectConfigured reports whether the subject flag is part of the configured graph shape.
func (a *app) subjectConfigured() bool {
	channels, err := a.cfg.Channels.ChannelConfig()
	return err == nil && channels.Subject != nil
}
