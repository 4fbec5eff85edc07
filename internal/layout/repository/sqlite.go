package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"floor-layout/internal/layout/models"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("not found")

//go:embed migrations/001_init_layout.sql
var initMigration string

// Repository - авторитетное хранилище этажей и столов.
// Реализует CommitGateway (одиночный и пакетный коммит позиций).
type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграции.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initMigration); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Floors
// ============================================================

const floorColumns = `id, name, grid_width, grid_height, snap_to_grid, background_image, width, height`

func scanFloor(row interface{ Scan(...any) error }) (*models.Floor, error) {
	var f models.Floor
	if err := row.Scan(&f.ID, &f.Name, &f.GridSize.Width, &f.GridSize.Height, &f.SnapToGrid,
		&f.BackgroundImage, &f.Dimensions.Width, &f.Dimensions.Height); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *Repository) GetFloor(ctx context.Context, id string) (*models.Floor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+floorColumns+` FROM floors WHERE id = ?`, id)
	f, err := scanFloor(row)
	if err != nil {
		return nil, fmt.Errorf("floor %s: %w", id, err)
	}
	return f, nil
}

func (r *Repository) ListFloors(ctx context.Context) ([]models.Floor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+floorColumns+` FROM floors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var floors []models.Floor
	for rows.Next() {
		f, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		floors = append(floors, *f)
	}
	return floors, rows.Err()
}

func (r *Repository) CreateFloor(ctx context.Context, f models.Floor) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO floors (id, name, grid_width, grid_height, snap_to_grid, background_image, width, height)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, f.ID, f.Name, f.GridSize.Width, f.GridSize.Height, f.SnapToGrid, f.BackgroundImage, f.Dimensions.Width, f.Dimensions.Height)
	if err != nil {
		return fmt.Errorf("insert floor: %w", err)
	}
	return nil
}

// UpdateFloorLayout меняет настройки сетки и фон этажа.
func (r *Repository) UpdateFloorLayout(ctx context.Context, f models.Floor) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE floors
        SET grid_width = ?, grid_height = ?, snap_to_grid = ?, background_image = ?
        WHERE id = ?
    `, f.GridSize.Width, f.GridSize.Height, f.SnapToGrid, f.BackgroundImage, f.ID)
	if err != nil {
		return fmt.Errorf("update floor layout: %w", err)
	}
	return expectOne(res, "floor", f.ID)
}

// ============================================================
// Tables
// ============================================================

func (r *Repository) ListTables(ctx context.Context, floorID string) ([]models.Entity, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, floor_id, name, shape, width, height, capacity, status, x, y, rotation
        FROM tables
        WHERE floor_id = ?
        ORDER BY sort_order, id
    `, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.FloorID, &e.Name, &e.Shape, &e.Width, &e.Height,
			&e.Capacity, &e.Status, &e.Position.X, &e.Position.Y, &e.Rotation); err != nil {
			return nil, err
		}
		tables = append(tables, e)
	}
	return tables, rows.Err()
}

func (r *Repository) CreateTable(ctx context.Context, e models.Entity) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO tables (id, floor_id, name, shape, width, height, capacity, status, x, y, rotation, sort_order)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
                (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tables WHERE floor_id = ?))
    `, e.ID, e.FloorID, e.Name, string(e.Shape), e.Width, e.Height, e.Capacity, string(e.Status),
		e.Position.X, e.Position.Y, e.Rotation, e.FloorID)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

// UpdateEntity записывает абсолютную позицию и поворот одного стола.
func (r *Repository) UpdateEntity(ctx context.Context, u models.Update) error {
	if err := validate(u); err != nil {
		return err
	}
	return r.updatePosition(ctx, r.db, u)
}

// UpdateEntities записывает пакет позиций в одной транзакции: либо все, либо ничего.
func (r *Repository) UpdateEntities(ctx context.Context, updates []models.Update) error {
	for _, u := range updates {
		if err := validate(u); err != nil {
			return err
		}
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if err := r.updatePosition(ctx, tx, u); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) updatePosition(ctx context.Context, db execer, u models.Update) error {
	res, err := db.ExecContext(ctx, `
        UPDATE tables
        SET x = ?, y = ?, rotation = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, u.Position.X, u.Position.Y, u.Rotation, u.ID)
	if err != nil {
		return fmt.Errorf("update table %s: %w", u.ID, err)
	}
	return expectOne(res, "table", u.ID)
}

// ErrInvalidUpdate - позиция не конечна или поворот вне [0, 360).
var ErrInvalidUpdate = errors.New("invalid update")

func validate(u models.Update) error {
	if u.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidUpdate)
	}
	for _, v := range []float64{u.Position.X, u.Position.Y, u.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: table %s: non-finite value", ErrInvalidUpdate, u.ID)
		}
	}
	if u.Rotation < 0 || u.Rotation >= 360 {
		return fmt.Errorf("%w: table %s: rotation %v out of range", ErrInvalidUpdate, u.ID, u.Rotation)
	}
	return nil
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
