package serve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/boltdb"
	"github.com/techwm-project/techwm/pkg/catalog"
	catalogbolt "github.com/techwm-project/techwm/pkg/catalog/boltdb"
	catalogmemory "github.com/techwm-project/techwm/pkg/catalog/inmemory"
	"github.com/techwm-project/techwm/pkg/config/types"
	"github.com/techwm-project/techwm/pkg/ledger"
	ledgerbolt "github.com/techwm-project/techwm/pkg/ledger/boltdb"
	ledgermemory "github.com/techwm-project/techwm/pkg/ledger/inmemory"
	"github.com/techwm-project/techwm/pkg/policy"
	"github.com/techwm-project/techwm/pkg/publicapi"
	"github.com/techwm-project/techwm/pkg/scheduler"
	"github.com/techwm-project/techwm/pkg/system"
)

// Node is a fully wired server: catalog, ledger, scheduler and the API in
// front of them. Everything it opens is released through the cleanup
// manager it was built with.
type Node struct {
	Catalog   *catalog.Catalog
	Scheduler *scheduler.Scheduler
	APIServer *publicapi.Server
}

func NewNode(
	ctx context.Context,
	cfg types.TechwmConfig,
	serverConfig publicapi.Config,
	cm *system.CleanupManager,
) (*Node, error) {
	catalogStore, jobLedger, err := newStores(ctx, cfg.Store, cm)
	if err != nil {
		return nil, err
	}

	table, err := policy.TableFromConfig(cfg.Policy)
	if err != nil {
		return nil, err
	}

	resourceCatalog := catalog.NewCatalog(catalog.Params{Store: catalogStore})
	cm.RegisterCallbackWithContext(resourceCatalog.Close)
	cm.RegisterCallbackWithContext(jobLedger.Close)

	// jobs do not outlive the process, so neither do their allocations
	released, err := resourceCatalog.ReleaseAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim resources: %w", err)
	}
	if released > 0 {
		log.Ctx(ctx).Warn().Int("Released", released).Msg("reclaimed resources held by jobs of a previous run")
	}

	jobScheduler, err := scheduler.NewScheduler(scheduler.Params{
		Catalog: resourceCatalog,
		Ledger:  jobLedger,
		Policy:  policy.NewPolicy(table),
	})
	if err != nil {
		return nil, err
	}
	cm.RegisterCallbackWithContext(jobScheduler.Close)

	apiServer, err := publicapi.NewServer(publicapi.ServerParams{
		Catalog:   resourceCatalog,
		Scheduler: jobScheduler,
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Config:    serverConfig,
	})
	if err != nil {
		return nil, err
	}

	return &Node{
		Catalog:   resourceCatalog,
		Scheduler: jobScheduler,
		APIServer: apiServer,
	}, nil
}

func newStores(
	ctx context.Context, cfg types.StoreConfig, cm *system.CleanupManager) (catalog.Store, ledger.Ledger, error) {
	switch cfg.Type {
	case types.InMemory:
		log.Ctx(ctx).Warn().Msg("using in-memory stores, resources and job history are lost on restart")
		return catalogmemory.NewStore(), ledgermemory.NewLedger(), nil
	case types.BoltDB:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), os.FileMode(0o755)); err != nil { //nolint:gomnd
			return nil, nil, err
		}
		db, err := boltdb.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		cm.RegisterCallback(db.Close)

		catalogStore, err := catalogbolt.NewStore(db)
		if err != nil {
			return nil, nil, err
		}
		jobLedger, err := ledgerbolt.NewLedger(db)
		if err != nil {
			return nil, nil, err
		}
		log.Ctx(ctx).Debug().Str("Path", cfg.Path).Msg("opened bolt stores")
		return catalogStore, jobLedger, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
