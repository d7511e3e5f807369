package policy

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/adapters/memory"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/commands"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/queries"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/workers"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// Module is the policy-engine composition root exposed to runtime wiring.
// The CRUD layers call the Sync* hooks on every relevant mutation; request
// handling calls Authorize.
type Module struct {
	Authorize      queries.AuthorizeUseCase
	ListUserGrants queries.ListUserGrantsUseCase
	ListRoleGrants queries.ListRoleGrantsUseCase

	SyncRoleGrants   commands.SyncRoleGrantsUseCase
	SyncRoleDeletion commands.SyncRoleDeletionUseCase
	SyncUserGrant    commands.SyncUserGrantUseCase
	RemoveUserGrant  commands.RemoveUserGrantUseCase
	SyncOrgScope     commands.SyncOrganizationScopeUseCase
	RemoveOrgScope   commands.RemoveOrganizationScopeUseCase
	BootstrapRoles   commands.BootstrapDefaultRolesUseCase
	MigratePolicies  commands.MigrateLegacyPoliciesUseCase
	ImportUsers      commands.ImportUsersUseCase

	Reconciler workers.Reconciler

	Engine *engine.Engine
	Store  *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	GrantStore ports.GrantStore
	Directory  ports.Directory
	Catalog    *catalog.Catalog
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Registry   *prometheus.Registry
	Logger     *slog.Logger
}

// NewModule wires the engine, synchronizer, and queries using explicit
// ports. The engine performs its initial cache load here; a load failure is
// fatal and the caller must not serve authorization decisions.
func NewModule(ctx context.Context, deps Dependencies) (Module, error) {
	eng, err := engine.New(ctx, engine.Config{
		Store:   deps.GrantStore,
		Logger:  deps.Logger,
		Metrics: engine.NewMetrics(deps.Registry),
	})
	if err != nil {
		return Module{}, err
	}

	syncRoleGrants := commands.SyncRoleGrantsUseCase{
		Engine:    eng,
		Directory: deps.Directory,
		Catalog:   deps.Catalog,
		Logger:    deps.Logger,
	}
	bootstrapRoles := commands.BootstrapDefaultRolesUseCase{
		SyncRoleGrants: syncRoleGrants,
		Directory:      deps.Directory,
		IDGenerator:    deps.IDGen,
		Logger:         deps.Logger,
	}

	return Module{
		Authorize: queries.AuthorizeUseCase{
			Engine: eng,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		ListUserGrants: queries.ListUserGrantsUseCase{Engine: eng},
		ListRoleGrants: queries.ListRoleGrantsUseCase{Engine: eng},

		SyncRoleGrants: syncRoleGrants,
		SyncRoleDeletion: commands.SyncRoleDeletionUseCase{
			Engine:    eng,
			Directory: deps.Directory,
			Logger:    deps.Logger,
		},
		SyncUserGrant: commands.SyncUserGrantUseCase{
			Engine:    eng,
			Directory: deps.Directory,
			Logger:    deps.Logger,
		},
		RemoveUserGrant: commands.RemoveUserGrantUseCase{
			Engine: eng,
			Logger: deps.Logger,
		},
		SyncOrgScope: commands.SyncOrganizationScopeUseCase{
			Engine:    eng,
			Directory: deps.Directory,
			Bootstrap: bootstrapRoles,
			Logger:    deps.Logger,
		},
		RemoveOrgScope: commands.RemoveOrganizationScopeUseCase{
			Engine:    eng,
			Directory: deps.Directory,
			Logger:    deps.Logger,
		},
		BootstrapRoles: bootstrapRoles,
		MigratePolicies: commands.MigrateLegacyPoliciesUseCase{
			Store:  deps.GrantStore,
			Engine: eng,
			Logger: deps.Logger,
		},
		ImportUsers: commands.ImportUsersUseCase{
			SyncUserGrant: commands.SyncUserGrantUseCase{
				Engine:    eng,
				Directory: deps.Directory,
				Logger:    deps.Logger,
			},
			Logger: deps.Logger,
		},

		Reconciler: workers.Reconciler{
			Engine:    eng,
			Directory: deps.Directory,
			Catalog:   deps.Catalog,
			Logger:    deps.Logger,
		},

		Engine: eng,
	}, nil
}

// NewInMemoryModule builds a development/testing module with the in-memory
// adapter and the embedded default catalog.
func NewInMemoryModule(logger *slog.Logger) (Module, error) {
	store := memory.NewStore()
	cat, err := catalog.Load()
	if err != nil {
		return Module{}, err
	}
	module, err := NewModule(context.Background(), Dependencies{
		GrantStore: store,
		Directory:  store,
		Catalog:    cat,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	if err != nil {
		return Module{}, err
	}
	module.Store = store
	return module, nil
}
