package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/infra/storage"
)

// HistoryRepo implements storage.HistoryRepository using PostgreSQL.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new PostgreSQL history repository.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type lookupRow struct {
	ID          string    `db:"id"`
	Plate       string    `db:"plate"`
	VehicleType string    `db:"vehicle_type"`
	Error       bool      `db:"error"`
	Message     string    `db:"message"`
	Cached      bool      `db:"cached"`
	DurationMS  int64     `db:"duration_ms"`
	CreatedAt   time.Time `db:"created_at"`
}

type violationRow struct {
	LookupID       string         `db:"lookup_id"`
	Position       int            `db:"position"`
	Plate          string         `db:"plate"`
	PlateColor     string         `db:"plate_color"`
	VehicleType    string         `db:"vehicle_type"`
	ViolationTime  string         `db:"violation_time"`
	Location       string         `db:"location"`
	ViolationType  string         `db:"violation_type"`
	Status         string         `db:"status"`
	DetectingUnit  string         `db:"detecting_unit"`
	ResolvingUnits pq.StringArray `db:"resolving_units"`
}

func toLookupRow(e *domain.LookupEntry) lookupRow {
	return lookupRow{
		ID:          e.ID,
		Plate:       e.Plate,
		VehicleType: string(e.VehicleType),
		Error:       e.Error,
		Message:     e.Message,
		Cached:      e.Cached,
		DurationMS:  e.DurationMS,
		CreatedAt:   e.CreatedAt,
	}
}

func toViolationRow(lookupID string, pos int, v domain.ViolationRecord) violationRow {
	return violationRow{
		LookupID:       lookupID,
		Position:       pos,
		Plate:          v.Plate,
		PlateColor:     v.PlateColor,
		VehicleType:    v.VehicleType,
		ViolationTime:  v.ViolationTime,
		Location:       v.Location,
		ViolationType:  v.ViolationType,
		Status:         v.Status,
		DetectingUnit:  v.DetectingUnit,
		ResolvingUnits: pq.StringArray(v.ResolvingUnit),
	}
}

func (r violationRow) toDomain() domain.ViolationRecord {
	rec := domain.ViolationRecord{
		Plate:         r.Plate,
		PlateColor:    r.PlateColor,
		VehicleType:   r.VehicleType,
		ViolationTime: r.ViolationTime,
		Location:      r.Location,
		ViolationType: r.ViolationType,
		Status:        r.Status,
		DetectingUnit: r.DetectingUnit,
	}
	if len(r.ResolvingUnits) > 0 {
		rec.ResolvingUnit = []string(r.ResolvingUnits)
	}
	return rec
}

func (r lookupRow) toDomain() domain.LookupEntry {
	return domain.LookupEntry{
		ID:          r.ID,
		Plate:       r.Plate,
		VehicleType: domain.VehicleType(r.VehicleType),
		Error:       r.Error,
		Message:     r.Message,
		Cached:      r.Cached,
		DurationMS:  r.DurationMS,
		CreatedAt:   r.CreatedAt,
		Records:     []domain.ViolationRecord{},
	}
}

// Save stores a lookup and its violations in one transaction.
func (r *HistoryRepo) Save(ctx context.Context, entry *domain.LookupEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO lookups (id, plate, vehicle_type, error, message, cached, duration_ms, created_at)
		VALUES (:id, :plate, :vehicle_type, :error, :message, :cached, :duration_ms, :created_at)
	`, toLookupRow(entry))
	if err != nil {
		return fmt.Errorf("failed to save lookup: %w", err)
	}

	for i, rec := range entry.Records {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO violations (
				lookup_id, position, plate, plate_color, vehicle_type, violation_time,
				location, violation_type, status, detecting_unit, resolving_units
			) VALUES (
				:lookup_id, :position, :plate, :plate_color, :vehicle_type, :violation_time,
				:location, :violation_type, :status, :detecting_unit, :resolving_units
			)
		`, toViolationRow(entry.ID, i, rec))
		if err != nil {
			return fmt.Errorf("failed to save violation %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListByPlate returns the newest lookups for a plate with their violations.
func (r *HistoryRepo) ListByPlate(
	ctx context.Context,
	plate string,
	limit int,
) ([]domain.LookupEntry, error) {
	var rows []lookupRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, plate, vehicle_type, error, message, cached, duration_ms, created_at
		FROM lookups
		WHERE plate = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, plate, storage.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var vrows []violationRow
	query, args, err := sqlx.In(`
		SELECT lookup_id, position, plate, plate_color, vehicle_type, violation_time,
		       location, violation_type, status, detecting_unit, resolving_units
		FROM violations
		WHERE lookup_id IN (?)
		ORDER BY lookup_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build violations query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &vrows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	return assembleEntries(rows, vrows), nil
}

// assembleEntries attaches violations to their lookups, keeping lookup order.
func assembleEntries(rows []lookupRow, vrows []violationRow) []domain.LookupEntry {
	byID := make(map[string]int, len(rows))
	out := make([]domain.LookupEntry, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
		byID[row.ID] = i
	}
	for _, v := range vrows {
		if i, ok := byID[v.LookupID]; ok {
			out[i].Records = append(out[i].Records, v.toDomain())
		}
	}
	return out
}

// DeleteOlderThan removes lookups (and their violations) created before cutoff.
func (r *HistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lookups WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune lookups: %w", err)
	}
	return res.RowsAffected()
}
