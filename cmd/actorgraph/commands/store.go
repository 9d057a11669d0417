package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/internal/httpclient"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/repository"
	"github.com/teranos/actorgraph/store"
	"github.com/teranos/actorgraph/store/mongo"
	"github.com/teranos/actorgraph/store/sqlite"
)

// proxyTimeout bounds one request to a remote proxy
const proxyTimeout = 10 * time.Second

// dbPathOverride is the --db-path flag shared by every command that opens the store
var dbPathOverride string

// dropper is implemented by stores that can be emptied before an import
type dropper interface {
	Drop(ctx context.Context) error
}

// loadConfig loads the configuration and applies --db-path
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if dbPathOverride != "" {
		cfg.Database.Backend = am.BackendSQLite
		cfg.Database.Path = dbPathOverride
	}
	return cfg, nil
}

// openStore opens the configured backend and describes where it lives for
// banners and status lines. SQLite databases are migrated on open.
func openStore(ctx context.Context, cfg *am.Config) (store.Store, string, error) {
	switch cfg.Database.Backend {
	case am.BackendSQLite, "":
		path := cfg.GetDatabasePath()
		st, err := sqlite.Open(path, logger.ComponentLogger("store.sqlite"))
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to open database %s", path)
		}
		return st, path, nil

	case am.BackendMongo:
		st, err := mongo.Open(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase, logger.ComponentLogger("store.mongo"))
		if err != nil {
			return nil, "", err
		}
		return st, fmt.Sprintf("%s (database %s)", cfg.Database.MongoURI, cfg.Database.MongoDatabase), nil

	default:
		return nil, "", errors.NewInvalidRequestError("unknown database.backend %q (supported: %s, %s)",
			cfg.Database.Backend, am.BackendSQLite, am.BackendMongo)
	}
}

// newRepository builds the repository sessions read through: the REST proxy
// at explore.proxy_url when set, st otherwise. The second result names the
// source for status lines.
func newRepository(cfg *am.Config, st store.Reader) (*repository.Repository, string, error) {
	opts := []repository.Option{
		repository.WithFetchConcurrency(cfg.GetFetchConcurrency()),
		repository.WithLogger(logger.ComponentLogger("repository")),
	}

	if cfg.Explore.ProxyURL == "" {
		return repository.New(st, opts...), "local store", nil
	}

	client, err := httpclient.New(cfg.Explore.ProxyURL, proxyTimeout)
	if err != nil {
		return nil, "", errors.Wrap(err, "invalid explore.proxy_url")
	}
	backend := repository.NewHTTPBackend(client.BaseURL(), client.Client)
	return repository.New(backend, opts...), client.BaseURL(), nil
}
