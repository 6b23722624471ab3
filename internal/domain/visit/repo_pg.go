package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type visitRepoPG struct{ pool *pgxpool.Pool }

// NewVisitRepoPG creates a new PostgreSQL-backed visit repository.
func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

const visitCols = `id, patient_name, doctor_id, visit_date, queue_number, status,
	complaint, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.PatientName, &v.DoctorID, &v.VisitDate, &v.QueueNumber,
		&v.Status, &v.Complaint, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	// The queue number is assigned inside the insert so two concurrent
	// check-ins for the same doctor and date cannot race to the same slot.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO visit (id, patient_name, doctor_id, visit_date, queue_number, status, complaint)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(queue_number), 0) + 1 FROM visit
			 WHERE doctor_id = $3 AND visit_date = $4),
			$5, $6)
		RETURNING queue_number, created_at, updated_at`,
		v.ID, v.PatientName, v.DoctorID, v.VisitDate, v.Status, v.Complaint)
	if err := row.Scan(&v.QueueNumber, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
}

func (r *visitRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx, `
		UPDATE visit SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+visitCols, id, status))
}

func (r *visitRepoPG) ListByDate(ctx context.Context, date, doctorID string, limit, offset int) ([]*Visit, int, error) {
	where := `WHERE visit_date = $1`
	args := []interface{}{date}
	if doctorID != "" {
		where += ` AND doctor_id = $2`
		args = append(args, doctorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visit `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM visit %s ORDER BY queue_number LIMIT $%d OFFSET $%d`,
		visitCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, err
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}
