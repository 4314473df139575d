// ABOUTME: Resident directory persistence, listed by flat number
// ABOUTME: Flat numbers are free text and not unique

package store

import (
	"context"
	"database/sql"
	"fmt"
)

type residentRow struct {
	ID     int64          `db:"id"`
	Name   string         `db:"name"`
	FlatNo string         `db:"flat_no"`
	Phone  sql.NullString `db:"phone"`
	Email  sql.NullString `db:"email"`
}

// ListResidents returns every resident ordered by flat number (text order).
func (s *SQLiteStore) ListResidents(ctx context.Context) ([]*Resident, error) {
	query := `
		SELECT id, name, flat_no, phone, email
		FROM residents
		ORDER BY flat_no ASC, id ASC
	`

	var rows []residentRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying residents: %w", err)
	}

	residents := make([]*Resident, 0, len(rows))
	for _, row := range rows {
		residents = append(residents, &Resident{
			ID:     row.ID,
			Name:   row.Name,
			FlatNo: row.FlatNo,
			Phone:  row.Phone.String,
			Email:  row.Email.String,
		})
	}
	return residents, nil
}

// CreateResident adds a resident. Name and flat number are required.
func (s *SQLiteStore) CreateResident(ctx context.Context, r *Resident) error {
	r.normalize()
	if err := r.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO residents (name, flat_no, phone, email) VALUES (?, ?, ?, ?)`,
		r.Name, r.FlatNo, r.Phone, r.Email)
	if err != nil {
		return fmt.Errorf("inserting resident: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting resident id: %w", err)
	}
	r.ID = id

	s.logger.Debug("created resident", "id", r.ID, "flat_no", r.FlatNo)
	return nil
}
