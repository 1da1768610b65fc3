package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/airport-lookup/internal/model"
	"github.com/sells-group/airport-lookup/internal/query"
	"github.com/sells-group/airport-lookup/internal/store"
)

// openStore builds the configured storage backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newService wires the query service with configured options.
func newService(st store.Store) *query.Service {
	types := make([]model.AirportType, 0, len(cfg.Query.NearbyTypes))
	for _, t := range cfg.Query.NearbyTypes {
		typ := model.AirportType(t)
		if model.ValidAirportType(typ) {
			types = append(types, typ)
		}
	}
	return query.New(st, query.WithNearbyTypes(types))
}
