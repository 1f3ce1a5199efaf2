package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/padlinkapp/padlink-server/internal/config"
	"github.com/padlinkapp/padlink-server/internal/etherpad"
	"github.com/padlinkapp/padlink-server/internal/journal"
	"github.com/padlinkapp/padlink-server/internal/logger"
	"github.com/padlinkapp/padlink-server/internal/reconcile"
	"github.com/padlinkapp/padlink-server/internal/service"
	"github.com/padlinkapp/padlink-server/internal/store/sqlite"
	"github.com/padlinkapp/padlink-server/internal/validation"
)

// globalFlags are forwarded to config.Load.
type globalFlags struct {
	dataPath   string
	envFile    string
	logLevel   string
	authorName string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "padctl",
		Short: "Operator tool for padlink",
		Long: `padctl inspects and repairs the mapping between local records and
Etherpad without going through the HTTP API.

It opens the padlink data directory directly. The journal can only be opened
by one process, so stop the server before running commands that call Etherpad.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataPath, "data-path", "", "padlink data directory (default: $DATA_PATH or ~/Padlink/data)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Path to .env file")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.authorName, "author-name", "", "Author name mapper: display_name, email or username")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newServersCmd(flags),
		newCheckCmd(flags),
		newLinkCmd(flags),
		newSyncAuthorCmd(flags),
		newJournalCmd(flags),
	)
	return root
}

// loadConfig builds the configuration the server would use, with the CLI
// flags taking precedence.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	args := []string{"--env-file", f.envFile}
	if f.dataPath != "" {
		args = append(args, "--data-path", f.dataPath)
	}
	if f.logLevel != "" {
		args = append(args, "--log-level", f.logLevel)
	}
	if f.authorName != "" {
		args = append(args, "--author-name", f.authorName)
	}
	return config.Load(args)
}

// env is the set of components a command works with.
type env struct {
	cfg     *config.Config
	store   *sqlite.Store
	journal *journal.Journal
	pool    *etherpad.Pool

	servers  *service.ServerService
	authors  *service.AuthorService
	pads     *service.PadService
	journals *service.JournalService
}

// openEnv opens the store and journal under the configured data directory
// and wires the services on top of them.
func (f *globalFlags) openEnv() (*env, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.Discard()
	if f.verbose {
		log = logger.New(logger.Config{
			Writer:      os.Stderr,
			Level:       logger.ParseLevel(cfg.Logger.Level),
			Environment: cfg.App.Environment,
		})
	}

	if _, err := os.Stat(cfg.Data.DatabasePath()); err != nil {
		return nil, fmt.Errorf("no padlink database at %s: %w", cfg.Data.DatabasePath(), err)
	}

	e := &env{cfg: cfg}
	e.store, err = sqlite.Open(cfg.Data.DatabasePath(), log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	e.journal, err = journal.Open(cfg.Data.JournalPath(), log.Component("journal").Logger)
	if err != nil {
		_ = e.store.Close()
		return nil, fmt.Errorf("%w (is the padlink server running?)", err)
	}

	e.pool = etherpad.NewPool(etherpad.Config{
		APIVersion: cfg.Etherpad.APIVersion,
		Timeout:    cfg.Etherpad.CallTimeout,
		RPS:        cfg.Etherpad.RPS,
		Burst:      cfg.Etherpad.Burst,
	}, log.Component("etherpad").Logger)

	authorName, err := reconcile.AuthorNameMapper(cfg.Mapping.AuthorName)
	if err != nil {
		e.Close()
		return nil, err
	}
	rec, err := reconcile.New(e.store, reconcile.Config{
		AuthorName:  authorName,
		CallTimeout: cfg.Etherpad.CallTimeout,
		Remotes:     reconcile.PoolFactory(e.pool),
		Recorder:    e.journal,
	}, log.Component("reconcile").Logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	v := validation.New()
	e.servers = service.NewServerService(e.store, rec, e.pool, v, log.Logger)
	e.authors = service.NewAuthorService(e.store, rec, v, log.Logger)
	e.pads = service.NewPadService(e.store, rec, rec, nil, v, log.Logger)
	e.journals = service.NewJournalService(e.journal, log.Logger)
	return e, nil
}

// Close releases everything openEnv opened.
func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.journal != nil {
		_ = e.journal.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
}
