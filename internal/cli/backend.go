package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/neo4jstore"
	"github.com/Makepad-fr/tada/internal/store/pgstore"
	"github.com/Makepad-fr/tada/internal/store/remote"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
)

// openStore opens the configured backend.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	sc := cfg.Store
	log.Info("open store", "backend", sc.Backend)
	switch sc.Backend {
	case "json":
		s, err := jsonstore.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlitestore.Open(ctx, sqlitePath(sc.Path))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		if sc.DSN == "" {
			return nil, usagef("postgres backend needs --dsn or store.dsn")
		}
		s, err := pgstore.Open(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "neo4j":
		s, err := neo4jstore.Open(ctx, sc.Neo4j.URI, sc.Neo4j.User, sc.Neo4j.Password)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "remote":
		ti, err := auth.GetToken()
		if err != nil {
			return nil, fmt.Errorf("token: %w", err)
		}
		token := ""
		if ti != nil {
			token = ti.Token
		}
		return remote.New(sc.URL, token), nil
	case "memory":
		return store.NewMemory(), nil
	}
	return nil, usagef("unknown backend %q", sc.Backend)
}

// sqlitePath swaps the default tasks.json file name for tasks.db so the two
// backends never share a file.
func sqlitePath(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return strings.TrimSuffix(p, filepath.Ext(p)) + ".db"
	}
	return p
}
