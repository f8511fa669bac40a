package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/source"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection keeps ":memory:" databases alive and shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS organizations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL UNIQUE,
			parent_id INTEGER,
			name TEXT NOT NULL,
			org_type TEXT NOT NULL,
			description TEXT,
			website TEXT,
			email TEXT,
			twitter TEXT,
			facebook TEXT,
			instagram TEXT,
			is_active INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS locations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			is_active INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL UNIQUE,
			location_id INTEGER,
			is_active INTEGER NOT NULL,
			parents TEXT NOT NULL,
			regions TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_organizations_type ON organizations(org_type);
		CREATE INDEX IF NOT EXISTS idx_organizations_parent ON organizations(parent_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces every stored row with the snapshot's contents,
// keeping snapshot order as listing order.
func (s *SQLiteDB) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"organizations", "locations", "events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	for _, o := range snap.Organizations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO organizations (id, parent_id, name, org_type, description, website, email, twitter, facebook, instagram, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.ParentID, o.Name, string(o.Type), o.Description, o.Website, o.Email, o.Twitter, o.Facebook, o.Instagram, o.Active)
		if err != nil {
			return fmt.Errorf("error inserting organization %d: %w", o.ID, err)
		}
	}

	for _, l := range snap.Locations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO locations (id, name, latitude, longitude, is_active)
			VALUES (?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Latitude, l.Longitude, l.Active)
		if err != nil {
			return fmt.Errorf("error inserting location %d: %w", l.ID, err)
		}
	}

	for _, e := range snap.Events {
		parents, err := json.Marshal(nonNil(e.Parents))
		if err != nil {
			return fmt.Errorf("error encoding event %d parents: %w", e.ID, err)
		}
		regions, err := json.Marshal(nonNil(e.Regions))
		if err != nil {
			return fmt.Errorf("error encoding event %d regions: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (id, location_id, is_active, parents, regions)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.LocationID, e.Active, string(parents), string(regions))
		if err != nil {
			return fmt.Errorf("error inserting event %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDB) ListOrganizations(ctx context.Context, p source.Page) ([]models.Organization, error) {
	query := `
		SELECT id, parent_id, name, org_type, description, website, email, twitter, facebook, instagram, is_active
		FROM organizations
		WHERE 1=1
	`
	args := []any{}
	if p.ActiveOnly {
		query += " AND is_active = 1"
	}
	if len(p.Types) > 0 {
		query += " AND org_type IN (" + strings.TrimSuffix(strings.Repeat("?,", len(p.Types)), ",") + ")"
		for _, t := range p.Types {
			args = append(args, string(t))
		}
	}
	query += " ORDER BY seq LIMIT ? OFFSET ?"
	args = append(args, p.Size, p.Index*p.Size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var (
			o       models.Organization
			orgType string
		)
		err := rows.Scan(&o.ID, &o.ParentID, &o.Name, &orgType, &o.Description, &o.Website, &o.Email, &o.Twitter, &o.Facebook, &o.Instagram, &o.Active)
		if err != nil {
			return nil, fmt.Errorf("error scanning organization: %w", err)
		}
		o.Type = models.OrgType(orgType)
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (s *SQLiteDB) ListLocations(ctx context.Context, p source.Page) ([]models.Location, error) {
	query := `SELECT id, name, latitude, longitude, is_active FROM locations`
	if p.ActiveOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY seq LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, p.Size, p.Index*p.Size)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	var locs []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.Active); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func (s *SQLiteDB) ListEvents(ctx context.Context, p source.Page) ([]models.Event, error) {
	query := `SELECT id, location_id, is_active, parents, regions FROM events`
	if p.ActiveOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY seq LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, p.Size, p.Index*p.Size)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e                models.Event
			parents, regions string
		)
		if err := rows.Scan(&e.ID, &e.LocationID, &e.Active, &parents, &regions); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		if err := json.Unmarshal([]byte(parents), &e.Parents); err != nil {
			return nil, fmt.Errorf("error decoding event %d parents: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(regions), &e.Regions); err != nil {
			return nil, fmt.Errorf("error decoding event %d regions: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
