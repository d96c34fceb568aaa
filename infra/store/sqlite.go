// Package store persists plan snapshots, committed tasks and transport
// settings. The SQLite implementation keeps entities as JSON documents so
// the schema follows the domain model without per-column migrations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/platotv/plato/core/engine"
	"github.com/platotv/plato/core/model"
)

const (
	kindContestant   = "contestant"
	kindTemplate     = "template"
	kindTask         = "task"
	kindZone         = "zone"
	kindResourceType = "resource_type"
	kindItem         = "item"
	kindPlanItem     = "plan_item"
	kindStaff        = "staff"
	kindTeam         = "team"
)

// SQLiteStore implements the engine persistence interfaces on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS plans (
        id  TEXT PRIMARY KEY,
        doc TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS plan_entities (
        plan_id TEXT NOT NULL,
        kind    TEXT NOT NULL,
        id      TEXT NOT NULL,
        doc     TEXT NOT NULL,
        PRIMARY KEY (plan_id, kind, id)
    );
    CREATE TABLE IF NOT EXISTS transport_settings (
        id  INTEGER PRIMARY KEY CHECK (id = 1),
        doc TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// LoadSnapshot reads the full plan snapshot.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, planID string) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	var planDoc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM plans WHERE id = ?`, planID).Scan(&planDoc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s: not found", planID)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(planDoc), &snap.Plan); err != nil {
		return nil, fmt.Errorf("plan %s: %w", planID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, doc FROM plan_entities WHERE plan_id = ? ORDER BY kind, id`, planID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var kind, doc string
		if err := rows.Scan(&kind, &doc); err != nil {
			return nil, err
		}
		if err := decodeEntity(snap, kind, []byte(doc)); err != nil {
			return nil, fmt.Errorf("plan %s: %w", planID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	transport, err := s.TransportSettings(ctx)
	if err != nil {
		return nil, err
	}
	snap.Transport = transport
	return snap, nil
}

func decodeEntity(snap *model.Snapshot, kind string, doc []byte) error {
	switch kind {
	case kindContestant:
		var v model.Contestant
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Contestants = append(snap.Contestants, v)
	case kindTemplate:
		var v model.TaskTemplate
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Templates = append(snap.Templates, v)
	case kindTask:
		var v model.DailyTask
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Tasks = append(snap.Tasks, v)
	case kindZone:
		var v model.Zone
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Zones = append(snap.Zones, v)
	case kindResourceType:
		var v model.ResourceType
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.ResourceTypes = append(snap.ResourceTypes, v)
	case kindItem:
		var v model.ResourceItem
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Items = append(snap.Items, v)
	case kindPlanItem:
		var v model.PlanResourceItem
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.PlanItems = append(snap.PlanItems, v)
	case kindStaff:
		var v model.StaffAssignment
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Staff = append(snap.Staff, v)
	case kindTeam:
		var v model.ItinerantTeam
		if err := json.Unmarshal(doc, &v); err != nil {
			return err
		}
		snap.Teams = append(snap.Teams, v)
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	return nil
}

// SaveSnapshot writes the plan and all its entities, replacing any previous
// content of the plan. Transport settings are global and saved separately.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	planDoc, err := json.Marshal(snap.Plan)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO plans (id, doc) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		snap.Plan.ID, string(planDoc)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM plan_entities WHERE plan_id = ?`, snap.Plan.ID); err != nil {
		return err
	}

	put := func(kind, id string, v any) error {
		doc, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO plan_entities (plan_id, kind, id, doc) VALUES (?, ?, ?, ?)`,
			snap.Plan.ID, kind, id, string(doc))
		return err
	}
	for _, v := range snap.Contestants {
		if err := put(kindContestant, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Templates {
		if err := put(kindTemplate, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Tasks {
		if err := put(kindTask, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Zones {
		if err := put(kindZone, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.ResourceTypes {
		if err := put(kindResourceType, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Items {
		if err := put(kindItem, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.PlanItems {
		if err := put(kindPlanItem, v.ItemID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Staff {
		if err := put(kindStaff, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range snap.Teams {
		if err := put(kindTeam, v.ID, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CommitTasks upserts the committed task set in one transaction. Either every
// task of the set is written or none.
func (s *SQLiteStore) CommitTasks(ctx context.Context, planID string, tasks []model.DailyTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, t := range tasks {
		doc, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plan_entities (plan_id, kind, id, doc) VALUES (?, ?, ?, ?)
             ON CONFLICT(plan_id, kind, id) DO UPDATE SET doc = excluded.doc`,
			planID, kindTask, t.ID, string(doc)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TransportSettings reads the global transport defaults, applying defaults
// when nothing has been saved yet.
func (s *SQLiteStore) TransportSettings(ctx context.Context) (model.TransportSettings, error) {
	var settings model.TransportSettings
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM transport_settings WHERE id = 1`).Scan(&doc)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return settings, err
	default:
		if err := json.Unmarshal([]byte(doc), &settings); err != nil {
			return settings, err
		}
	}
	settings.SetDefaults()
	return settings, nil
}

// PatchTransportSettings applies the non-nil patch fields and persists the
// result.
func (s *SQLiteStore) PatchTransportSettings(ctx context.Context, patch engine.TransportPatch) (model.TransportSettings, error) {
	settings, err := s.TransportSettings(ctx)
	if err != nil {
		return settings, err
	}
	applyPatch(&settings, patch)
	settings.SetDefaults()
	doc, err := json.Marshal(settings)
	if err != nil {
		return settings, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transport_settings (id, doc) VALUES (1, ?)
         ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`, string(doc))
	return settings, err
}

func applyPatch(settings *model.TransportSettings, patch engine.TransportPatch) {
	if patch.ArrivalTaskTemplateName != nil {
		settings.ArrivalTaskTemplateName = *patch.ArrivalTaskTemplateName
	}
	if patch.DepartureTaskTemplateName != nil {
		settings.DepartureTaskTemplateName = *patch.DepartureTaskTemplateName
	}
	if patch.ArrivalGroupingTarget != nil {
		settings.ArrivalGroupingTarget = *patch.ArrivalGroupingTarget
	}
	if patch.DepartureGroupingTarget != nil {
		settings.DepartureGroupingTarget = *patch.DepartureGroupingTarget
	}
	if patch.VanCapacity != nil {
		settings.VanCapacity = *patch.VanCapacity
	}
	if patch.WeightArrivalDepartureGrouping != nil {
		settings.WeightArrivalDepartureGrouping = *patch.WeightArrivalDepartureGrouping
	}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
