package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path, applies pending migrations and returns a ready
// repository. The foreign_keys pragma is set in the DSN so every pooled
// connection enforces the plan_tasks cascade.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetPlot(ctx context.Context, id string) (Plot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, primary_crop, soil_type, dimension, has_plan, plan_start_date, created_at
		FROM plots WHERE id = ?`, id)
	plot, err := scanPlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plot{}, ErrNotFound
		}
		return Plot{}, err
	}
	return plot, nil
}

// DeletePlot removes the plot and its plan. Tasks are deleted explicitly so
// connections opened without the foreign_keys pragma leave no orphans.
func (r *SQLiteRepository) DeletePlot(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks WHERE plot_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM plots WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return checkRowsAffected(res)
	})
}

// ListPlots returns plots in insertion order.
func (r *SQLiteRepository) ListPlots(ctx context.Context, filter PlotListFilter) ([]Plot, error) {
	query := `SELECT id, name, primary_crop, soil_type, dimension, has_plan, plan_start_date, created_at FROM plots`
	args := make([]any, 0, 2)
	if filter.WithPlanOnly {
		query += ` WHERE has_plan = 1`
	}
	query += ` ORDER BY rowid ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Plot, 0)
	for rows.Next() {
		plot, scanErr := scanPlot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, plot)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdatePlanTask(ctx context.Context, in PlanTask) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plan_tasks
		SET text = ?, is_completed = ?, due_date = ?, days_from_start = ?
		WHERE plot_id = ? AND id = ?`,
		in.Text, boolInt(in.IsCompleted), nullTime(in.DueDate), nullInt(in.DaysFromStart), in.PlotID, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListPlanTasks returns the plot's plan ordered by position.
func (r *SQLiteRepository) ListPlanTasks(ctx context.Context, plotID string) ([]PlanTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plot_id, position, text, is_completed, due_date, days_from_start
		FROM plan_tasks WHERE plot_id = ? ORDER BY position ASC`, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PlanTask, 0)
	for rows.Next() {
		task, scanErr := scanPlanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// SavePlots writes every plot row and its whole plan atomically, inserting
// plots that do not exist yet.
func (r *SQLiteRepository) SavePlots(ctx context.Context, plots []PlotRows) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range plots {
			if err := upsertPlotTx(ctx, tx, p.Plot); err != nil {
				return err
			}
			if err := replacePlanTx(ctx, tx, p.Plot.ID, p.Tasks); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertPlotTx(ctx context.Context, tx *sql.Tx, plot Plot) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO plots (id, name, primary_crop, soil_type, dimension, has_plan, plan_start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			primary_crop = excluded.primary_crop,
			soil_type = excluded.soil_type,
			dimension = excluded.dimension,
			has_plan = excluded.has_plan,
			plan_start_date = excluded.plan_start_date`,
		plot.ID, plot.Name, plot.PrimaryCrop, plot.SoilType, plot.Dimension,
		boolInt(plot.HasPlan), nullTime(plot.PlanStartDate), mustTime(plot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert plot %s: %w", plot.ID, err)
	}
	return nil
}

// replacePlanTx rewrites positions from slice order.
func replacePlanTx(ctx context.Context, tx *sql.Tx, plotID string, tasks []PlanTask) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks WHERE plot_id = ?`, plotID); err != nil {
		return fmt.Errorf("clear plan %s: %w", plotID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_tasks (id, plot_id, position, text, is_completed, due_date, days_from_start)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, task := range tasks {
		if _, err := stmt.ExecContext(ctx,
			task.ID, plotID, i, task.Text, boolInt(task.IsCompleted), nullTime(task.DueDate), nullInt(task.DaysFromStart),
		); err != nil {
			return fmt.Errorf("insert plan task %s: %w", task.ID, err)
		}
	}
	return nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlot(s scanner) (Plot, error) {
	var out Plot
	var hasPlan int
	var start sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.PrimaryCrop, &out.SoilType, &out.Dimension, &hasPlan, &start, &created); err != nil {
		return Plot{}, err
	}
	startAt, err := parseNullableTime(start)
	if err != nil {
		return Plot{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Plot{}, err
	}
	out.HasPlan = hasPlan == 1
	out.PlanStartDate = startAt
	out.CreatedAt = createdAt
	return out, nil
}

func scanPlanTask(s scanner) (PlanTask, error) {
	var out PlanTask
	var completed int
	var due sql.NullString
	var days sql.NullInt64
	if err := s.Scan(&out.ID, &out.PlotID, &out.Position, &out.Text, &completed, &due, &days); err != nil {
		return PlanTask{}, err
	}
	dueAt, err := parseNullableTime(due)
	if err != nil {
		return PlanTask{}, err
	}
	out.IsCompleted = completed == 1
	out.DueDate = dueAt
	if days.Valid {
		n := int(days.Int64)
		out.DaysFromStart = &n
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
