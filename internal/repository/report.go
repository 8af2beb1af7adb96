package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/pkg/e"
)

const reportColumns = `
	id,
	creator_id,
	classification,
	description,
	ST_Y(location::geometry) AS latitude,
	ST_X(location::geometry) AS longitude,
	is_valid,
	created_at`

type ReportRepository struct {
	db DB
}

// Create создает новую отметку в бд
func (r *ReportRepository) Create(ctx context.Context, report *models.HazardReport) error {
	query := `
		INSERT INTO hazard_reports (creator_id, classification, description, location, is_valid, created_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		report.CreatorID,
		report.Classification,
		report.Description,
		report.Longitude,
		report.Latitude,
		report.IsValid,
		report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		return e.WrapError(ctx, "create report", err)
	}
	return nil
}

// GetByID возвращает отметку по её UUID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE id = $1;`
	return r.get(ctx, query, id)
}

// GetForUpdate возвращает отметку и блокирует строку до конца транзакции
func (r *ReportRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE id = $1 FOR UPDATE;`
	return r.get(ctx, query, id)
}

func (r *ReportRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.HazardReport, error) {
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.WrapError(ctx, fmt.Sprintf("get report %s", id), err)
	}
	return report, nil
}

// List возвращает все отметки, новые первыми
func (r *ReportRepository) List(ctx context.Context) ([]*models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports ORDER BY created_at DESC;`
	return r.list(ctx, "list reports", query)
}

// ListConfirmed возвращает подтверждённые отметки
func (r *ReportRepository) ListConfirmed(ctx context.Context) ([]*models.HazardReport, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE is_valid ORDER BY created_at;`
	return r.list(ctx, "list confirmed reports", query)
}

func (r *ReportRepository) list(ctx context.Context, op, query string) ([]*models.HazardReport, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	reports := make([]*models.HazardReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, e.WrapError(ctx, op+": scan", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op+": iterate", err)
	}
	return reports, nil
}

// Confirm помечает отметку достоверной, если она ещё не подтверждена
func (r *ReportRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE hazard_reports SET is_valid = TRUE
		WHERE id = $1 AND NOT is_valid;
	`
	return r.pendingOnly(ctx, "confirm report", query, id)
}

// Delete удаляет отметку, если она ещё не подтверждена
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM hazard_reports
		WHERE id = $1 AND NOT is_valid;
	`
	return r.pendingOnly(ctx, "delete report", query, id)
}

// pendingOnly выполняет изменение, допустимое только для неподтверждённой отметки.
// Если строка не затронута, различает отсутствие отметки и уже принятое решение.
func (r *ReportRepository) pendingOnly(ctx context.Context, op, query string, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx, `SELECT TRUE FROM hazard_reports WHERE id = $1;`, id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, e.ErrNotFound)
	}
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	return fmt.Errorf("%s %s: %w", op, id, e.ErrAlreadyResolved)
}

func scanReport(row pgx.Row) (*models.HazardReport, error) {
	report := &models.HazardReport{}
	err := row.Scan(
		&report.ID,
		&report.CreatorID,
		&report.Classification,
		&report.Description,
		&report.Latitude,
		&report.Longitude,
		&report.IsValid,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}
