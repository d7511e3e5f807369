package commands

import (
	"context"
	"log/slog"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
)

// UserImportRow is one row of a bulk user upload, already parsed upstream.
type UserImportRow struct {
	UserID         string `json:"user_id"`
	RoleKey        string `json:"role_key"`
	OrganizationID string `json:"organization_id"`
}

// ImportRowError records a failed row without aborting the batch.
type ImportRowError struct {
	Index  int    `json:"index"`
	UserID string `json:"user_id"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// ImportUsersResult is a partial-success summary.
type ImportUsersResult struct {
	Processed int              `json:"processed"`
	Succeeded int              `json:"succeeded"`
	Failed    []ImportRowError `json:"failed,omitempty"`
}

// ImportUsersUseCase processes bulk-upload rows independently and
// sequentially. A failing row is collected and the loop continues; ensure
// semantics in the grant sync make reprocessing an unchanged row a no-op.
type ImportUsersUseCase struct {
	SyncUserGrant SyncUserGrantUseCase
	Logger        *slog.Logger
}

func (u ImportUsersUseCase) Execute(ctx context.Context, rows []UserImportRow) (ImportUsersResult, error) {
	logger := application.ResolveLogger(u.Logger)
	result := ImportUsersResult{Processed: len(rows)}

	for index, row := range rows {
		err := u.SyncUserGrant.Execute(ctx, SyncUserGrantCommand{
			UserID:         row.UserID,
			RoleKey:        row.RoleKey,
			OrganizationID: row.OrganizationID,
		})
		if err != nil {
			logger.Warn("user import row failed",
				"event", "authz_import_row_failed",
				"module", "identity-access/policy-engine",
				"layer", "application",
				"row", index,
				"user_id", row.UserID,
				"role_key", row.RoleKey,
				"organization_id", row.OrganizationID,
				"error", err.Error(),
			)
			result.Failed = append(result.Failed, ImportRowError{
				Index:  index,
				UserID: row.UserID,
				Err:    err,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	logger.Info("user import completed",
		"event", "authz_import_completed",
		"module", "identity-access/policy-engine",
		"layer", "application",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", len(result.Failed),
	)
	return result, nil
}
