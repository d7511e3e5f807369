// Package gormstore persists grant relations and directory records through
// GORM. All ORM usage is confined to this package; domain types stay ORM-free.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
)

const maxTupleFields = 7

type grantRuleModel struct {
	ID            uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Kind          string `gorm:"column:kind;index:idx_grant_rules_kind;uniqueIndex:ux_grant_rules_tuple"`
	V0            string `gorm:"column:v0;uniqueIndex:ux_grant_rules_tuple"`
	V1            string `gorm:"column:v1;uniqueIndex:ux_grant_rules_tuple"`
	V2            string `gorm:"column:v2;uniqueIndex:ux_grant_rules_tuple"`
	V3            string `gorm:"column:v3;uniqueIndex:ux_grant_rules_tuple"`
	V4            string `gorm:"column:v4;uniqueIndex:ux_grant_rules_tuple"`
	V5            string `gorm:"column:v5;uniqueIndex:ux_grant_rules_tuple"`
	V6            string `gorm:"column:v6;uniqueIndex:ux_grant_rules_tuple"`
	SchemaVersion int    `gorm:"column:schema_version"`
}

func (grantRuleModel) TableName() string {
	return "grant_rules"
}

// Store implements ports.GrantStore over a relational grant_rules table.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore builds the adapter and migrates its tables.
func NewStore(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&grantRuleModel{}, &roleModel{}, &organizationModel{}, &userModel{}); err != nil {
		return nil, fmt.Errorf("migrate grant store tables: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Add(ctx context.Context, relation entities.Relation) error {
	return s.create(s.db.WithContext(ctx), relation)
}

func (s *Store) Remove(ctx context.Context, relation entities.Relation) error {
	return s.delete(s.db.WithContext(ctx), relation)
}

func (s *Store) RemoveFiltered(ctx context.Context, kind entities.RelationKind, fieldIndex int, value string) error {
	if fieldIndex < 0 || fieldIndex >= maxTupleFields {
		return fmt.Errorf("field index %d out of range", fieldIndex)
	}
	return s.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Where(fmt.Sprintf("v%d = ?", fieldIndex), value).
		Delete(&grantRuleModel{}).
		Error
}

func (s *Store) Query(ctx context.Context, kind entities.RelationKind, filter []string) ([]entities.Relation, error) {
	if len(filter) > maxTupleFields {
		return nil, fmt.Errorf("filter has %d fields, max is %d", len(filter), maxTupleFields)
	}

	tx := s.db.WithContext(ctx).Where("kind = ?", string(kind))
	for index, value := range filter {
		if value == "" {
			continue
		}
		tx = tx.Where(fmt.Sprintf("v%d = ?", index), value)
	}

	var rows []grantRuleModel
	if err := tx.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	relations := make([]entities.Relation, 0, len(rows))
	for _, row := range rows {
		relations = append(relations, row.toRelation())
	}
	return relations, nil
}

func (s *Store) Apply(ctx context.Context, delta entities.Delta) error {
	if delta.IsEmpty() {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, relation := range delta.Remove {
			if err := s.delete(tx, relation); err != nil {
				return err
			}
		}
		for _, relation := range delta.Add {
			if err := s.create(tx, relation); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ScanPermissionRows(ctx context.Context) ([]entities.StoredRelation, error) {
	var rows []grantRuleModel
	err := s.db.WithContext(ctx).
		Where("kind = ?", string(entities.RelationPermission)).
		Order("id").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	stored := make([]entities.StoredRelation, 0, len(rows))
	for _, row := range rows {
		stored = append(stored, entities.StoredRelation{
			Relation:      row.toRelation(),
			SchemaVersion: row.SchemaVersion,
		})
	}
	return stored, nil
}

func (s *Store) create(tx *gorm.DB, relation entities.Relation) error {
	row := modelFromRelation(relation)
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil && isUniqueViolation(err) {
		// Concurrent writer beat us to an identical tuple; adds are idempotent.
		return nil
	}
	return err
}

func (s *Store) delete(tx *gorm.DB, relation entities.Relation) error {
	fields := padFields(relation.Fields)
	return tx.
		Where("kind = ?", string(relation.Kind)).
		Where("v0 = ? AND v1 = ? AND v2 = ? AND v3 = ? AND v4 = ? AND v5 = ? AND v6 = ?",
			fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]).
		Delete(&grantRuleModel{}).
		Error
}

func modelFromRelation(relation entities.Relation) grantRuleModel {
	fields := padFields(relation.Fields)
	version := 0
	if relation.Kind == entities.RelationPermission {
		version = entities.PermissionSchemaCurrent
		if relation.IsLegacyPermission() {
			version = entities.PermissionSchemaLegacy
		}
	}
	return grantRuleModel{
		Kind:          string(relation.Kind),
		V0:            fields[0],
		V1:            fields[1],
		V2:            fields[2],
		V3:            fields[3],
		V4:            fields[4],
		V5:            fields[5],
		V6:            fields[6],
		SchemaVersion: version,
	}
}

func (m grantRuleModel) toRelation() entities.Relation {
	fields := []string{m.V0, m.V1, m.V2, m.V3, m.V4, m.V5, m.V6}
	arity := 3
	if m.Kind == string(entities.RelationPermission) {
		arity = 7
		if m.SchemaVersion < entities.PermissionSchemaCurrent {
			arity = 6
		}
	}
	return entities.Relation{
		Kind:   entities.RelationKind(m.Kind),
		Fields: fields[:arity],
	}
}

func padFields(fields []string) [maxTupleFields]string {
	var padded [maxTupleFields]string
	copy(padded[:], fields)
	return padded
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
