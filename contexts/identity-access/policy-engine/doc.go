// Package policy implements the authorization/policy engine for the
// identity-access context.
//
// Layering:
// - domain: entities, pure policy computations, error taxonomy
// - engine: the in-memory grant cache and enforcement evaluator
// - application: synchronizer commands, enforcement queries, audit worker
// - ports: stable boundaries for grant persistence and directory records
// - adapters: concrete gorm and in-memory implementations
// - catalog: static permission vocabulary and default role archetypes
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application.
// - Enforcement is fail-closed: missing or erroring state always denies.
package policy
