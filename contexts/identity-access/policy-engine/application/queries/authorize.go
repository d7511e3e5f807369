package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	domainerrors "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/errors"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/ports"
)

// AuthorizeQuery is the request model for one enforcement evaluation.
type AuthorizeQuery struct {
	UserID         string
	Resource       string
	Action         string
	OrganizationID string
	Portal         entities.Portal
}

// AuthorizeUseCase evaluates enforcement requests against the engine cache.
// Deny-by-default: invalid input and internal failures both resolve to deny,
// never to an implicit allow.
type AuthorizeUseCase struct {
	Engine *engine.Engine
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u AuthorizeUseCase) Execute(_ context.Context, query AuthorizeQuery) (entities.Decision, error) {
	now := u.now()
	denied := entities.Decision{
		UserID:         query.UserID,
		Resource:       query.Resource,
		Action:         query.Action,
		OrganizationID: query.OrganizationID,
		Portal:         query.Portal,
		Reason:         entities.ReasonDenyByDefault,
		CheckedAt:      now,
	}

	if strings.TrimSpace(query.UserID) == "" {
		return denied, domainerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(query.Resource) == "" {
		return denied, domainerrors.ErrInvalidResource
	}
	if strings.TrimSpace(query.Action) == "" {
		return denied, domainerrors.ErrInvalidAction
	}
	if strings.TrimSpace(query.OrganizationID) == "" {
		return denied, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(string(query.Portal)) == "" {
		return denied, domainerrors.ErrInvalidPortal
	}

	decision := u.Engine.Authorize(
		query.UserID, query.Resource, query.Action,
		query.OrganizationID, query.Portal, now,
	)

	logger := application.ResolveLogger(u.Logger)
	if decision.Allowed {
		logger.Debug("authorize allowed",
			"event", "authz_check_allowed",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"user_id", query.UserID,
			"resource", query.Resource,
			"action", query.Action,
			"organization_id", query.OrganizationID,
			"portal", string(query.Portal),
		)
	} else {
		logger.Warn("authorize denied",
			"event", "authz_check_denied",
			"module", "identity-access/policy-engine",
			"layer", "application",
			"user_id", query.UserID,
			"resource", query.Resource,
			"action", query.Action,
			"organization_id", query.OrganizationID,
			"portal", string(query.Portal),
			"reason", decision.Reason,
		)
	}
	return decision, nil
}

func (u AuthorizeUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
