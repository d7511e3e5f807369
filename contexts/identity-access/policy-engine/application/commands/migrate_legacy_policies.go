package commands

import (
	"context"
	"log/slog"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// MigrateLegacyPoliciesResult reports one migration pass.
type MigrateLegacyPoliciesResult struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
}

// MigrateLegacyPoliciesUseCase rewrites six-field permission rows to the
// current seven-field shape, stamping the schema version. Runs at every boot
// before decisions are served; rows already at the current version are left
// untouched, so the pass is idempotent. The field-count check backs up the
// version stamp as a structural guard.
type MigrateLegacyPoliciesUseCase struct {
	Store  ports.GrantStore
	Engine *engine.Engine
	Logger *slog.Logger
}

func (u MigrateLegacyPoliciesUseCase) Execute(ctx context.Context) (MigrateLegacyPoliciesResult, error) {
	logger := application.ResolveLogger(u.Logger)

	rows, err := u.Store.ScanPermissionRows(ctx)
	if err != nil {
		return MigrateLegacyPoliciesResult{}, err
	}

	var delta entities.Delta
	for _, row := range rows {
		if row.SchemaVersion >= entities.PermissionSchemaCurrent && !row.IsLegacyPermission() {
			continue
		}
		if !row.IsLegacyPermission() && len(row.Fields) != 7 {
			logger.Warn("permission row has unexpected shape, left untouched",
				"event", "authz_migration_shape_warning",
				"module", "identity-access/policy-engine",
				"layer", "application",
				"fields", len(row.Fields),
				"schema_version", row.SchemaVersion,
			)
			continue
		}
		delta.Remove = append(delta.Remove, row.Relation)
		delta.Add = append(delta.Add, row.Relation.NormalizePermission())
	}

	result := MigrateLegacyPoliciesResult{Scanned: len(rows), Migrated: len(delta.Add)}
	if delta.IsEmpty() {
		logger.Info("legacy policy migration: nothing to do",
			"event", "authz_migration_noop",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"scanned", result.Scanned,
		)
		return result, nil
	}

	if err := u.Store.Apply(ctx, delta); err != nil {
		return MigrateLegacyPoliciesResult{}, err
	}
	// Structural rewrite: rebuild the cache rather than patching it row by row.
	if err := u.Engine.Reload(ctx); err != nil {
		return MigrateLegacyPoliciesResult{}, err
	}

	logger.Info("legacy policies migrated",
		"event", "authz_migration_completed",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"scanned", result.Scanned,
		"migrated", result.Migrated,
	)
	return result, nil
}
