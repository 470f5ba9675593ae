package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/shibukawa/flowquery"
	"github.com/shibukawa/flowquery/dataflow"
	"github.com/shibukawa/flowquery/loader"
	"github.com/shibukawa/flowquery/store"
)

// DataSource selects where flows come from. Shared by commands that read a
// flow collection.
type DataSource struct {
	Data []string `short:"d" help:"Trace files (JSON/YAML, globs allowed)"`
	DB   string   `long:"db" help:"Flow store URL (sqlite://, postgres://, mysql://)"`
	Env  string   `long:"env" help:"Flow store environment from config"`
}

// load reads the flow collection from trace files or a flow store. Without
// flags it falls back to the configured traces, then to the configured store.
func (s *DataSource) load(ctx context.Context, appCtx *Context, config *flowquery.Config) (*dataflow.Database, error) {
	if len(s.Data) > 0 && (s.DB != "" || s.Env != "") {
		return nil, ErrConflictingSources
	}

	patterns := s.Data
	if len(patterns) == 0 && s.DB == "" && s.Env == "" {
		patterns = config.Traces
	}

	if len(patterns) > 0 {
		paths, err := expandGlobs(patterns)
		if err != nil {
			return nil, err
		}

		appCtx.logf("Loading traces: %v", paths)

		return loader.LoadFiles(paths...)
	}

	st, err := openStore(ctx, appCtx, config, s.DB, s.Env)
	if err != nil {
		if len(config.Databases) == 0 && s.DB == "" && s.Env == "" {
			return nil, ErrNoDataSource
		}

		return nil, err
	}
	defer st.Close()

	return st.Load(ctx)
}

// openStore connects to the flow store named by dbURL, or by env in the
// configuration.
func openStore(ctx context.Context, appCtx *Context, config *flowquery.Config, dbURL, env string) (*store.Store, error) {
	pool := store.DefaultPoolSettings()

	if dbURL == "" {
		if len(config.Databases) == 0 {
			return nil, ErrNoDatabaseConfigured
		}

		db, err := config.Database(env)
		if err != nil {
			return nil, err
		}

		dbURL = db.Connection
		pool = store.PoolSettings{
			MaxOpenConns:    db.MaxOpenConns,
			MaxIdleConns:    db.MaxIdleConns,
			ConnMaxLifetime: db.ConnMaxLifetime,
		}
	}

	appCtx.logf("Connecting to flow store: %s", dbURL)

	st, err := store.Open(ctx, dbURL, pool)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return st, nil
}

// expandGlobs resolves glob patterns. A pattern without matches is kept as is
// so the loader reports the missing file.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid trace pattern '%s': %w", pattern, err)
		}

		if len(matches) == 0 {
			paths = append(paths, pattern)
			continue
		}

		paths = append(paths, matches...)
	}

	return paths, nil
}
