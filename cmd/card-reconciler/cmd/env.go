package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/boltstore"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/config"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/db"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/extraction"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/ignore"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/pathutil"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/session"
)

// environment holds what every command needs: configuration, paths, the
// SQLite connection and the configured ignore store.
type environment struct {
	cfg      *config.Config
	paths    *pathutil.PathResolver
	conn     *db.Connection
	ignore   ignore.Store
	keywords params.KeywordTable
	bolt     *boltstore.Store
}

func openEnvironment() *environment {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	err = cfg.Validate([]string{"storage", "dbPath"}, []string{"output", "dir"})
	exitOnError(err, "invalid configuration")

	paths := pathutil.New(pathutil.Config{
		OutputDir:    cfg.Output.Dir,
		DatabasePath: cfg.Storage.DBPath,
	})

	slog.Debug("Opening database", "path", paths.GetDatabasePath())
	conn, err := db.Open(paths.GetDatabasePath())
	exitOnError(err, "failed to open database")

	env := &environment{
		cfg:      cfg,
		paths:    paths,
		conn:     conn,
		ignore:   db.NewIgnoreStore(conn),
		keywords: params.DefaultKeywords(),
	}

	if cfg.Storage.IgnoreBackend == config.BackendBolt {
		slog.Debug("Opening bolt ignore store", "path", cfg.Storage.BoltPath)
		err := paths.EnsureParentDir(cfg.Storage.BoltPath)
		exitOnError(err, "failed to create bolt directory")
		env.bolt, err = boltstore.New(cfg.Storage.BoltPath)
		exitOnError(err, "failed to open bolt store")
		env.ignore = env.bolt
	}

	if cfg.Output.KeywordsFile != "" {
		env.keywords, err = params.LoadKeywords(cfg.Output.KeywordsFile)
		exitOnError(err, "failed to load keywords file")
	}

	return env
}

func (e *environment) Close() {
	if e.bolt != nil {
		if err := e.bolt.Close(); err != nil {
			slog.Error("Failed to close bolt store", "error", err)
		}
	}
	if err := e.conn.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// sessionFlags are shared by the commands that work on one card/competency.
type sessionFlags struct {
	card         string
	competency   string
	transactions string
	allocations  string
}

func (f *sessionFlags) register(c *pflag.FlagSet, withDocuments bool) {
	c.StringVar(&f.card, "card", "", "Card name (required)")
	c.StringVar(&f.competency, "competency", "", "Competency (YYYY-MM) (required)")
	if withDocuments {
		c.StringVar(&f.transactions, "transactions", "", "Statement transactions JSON file (required)")
		c.StringVar(&f.allocations, "allocations", "", "Allocation report JSON file (required)")
	}
}

func (f *sessionFlags) parseCompetency() model.Competency {
	competency, err := model.ParseCompetency(f.competency)
	exitOnError(err, "invalid competency")
	return competency
}

// openSession loads the documents, parameters and ignore list and opens a session.
func (e *environment) openSession(ctx context.Context, f *sessionFlags) *session.Session {
	competency := f.parseCompetency()

	txs, err := extraction.LoadTransactions(f.transactions)
	exitOnError(err, "failed to load transactions")

	allocs, err := extraction.LoadAllocations(f.allocations)
	exitOnError(err, "failed to load allocations")

	parameters, err := db.NewParameterStore(e.conn).ListParameters(ctx)
	exitOnError(err, "failed to load accounting parameters")

	slog.Debug("Loaded documents",
		"transactions", len(txs),
		"allocations", len(allocs),
		"parameters", len(parameters),
	)

	s, err := session.Open(ctx, e.ignore, session.Options{
		CardName:     f.card,
		Competency:   competency,
		Transactions: txs,
		Allocations:  allocs,
		Parameters:   parameters,
		Keywords:     e.keywords,
		NarrativeMax: e.cfg.Output.NarrativeMax,
		PageSize:     e.cfg.Output.ReportPageSize,
	})
	exitOnError(err, "failed to open session")

	return s
}
