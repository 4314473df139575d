// ABOUTME: Visitor register persistence: check-in inserts, idempotent check-out, newest-first listing
// ABOUTME: Check-out is a single conditional UPDATE so concurrent requests cannot double-close a visit

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type visitorRow struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Phone     sql.NullString `db:"phone"`
	FlatNo    string         `db:"flat_no"`
	Purpose   sql.NullString `db:"purpose"`
	VehicleNo sql.NullString `db:"vehicle_no"`
	CheckIn   string         `db:"check_in"`
	CheckOut  sql.NullString `db:"check_out"`
}

func (r visitorRow) toVisitor() (*Visitor, error) {
	v := &Visitor{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone.String,
		FlatNo:    r.FlatNo,
		Purpose:   r.Purpose.String,
		VehicleNo: r.VehicleNo.String,
	}

	var err error
	v.CheckIn, err = parseTime(r.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("parsing check_in: %w", err)
	}

	v.CheckOut, err = parseNullTime(r.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("parsing check_out: %w", err)
	}

	return v, nil
}

const visitorColumns = `id, name, phone, flat_no, purpose, vehicle_no, check_in, check_out`

// ListVisitors returns every visitor, newest check-in first.
func (s *SQLiteStore) ListVisitors(ctx context.Context) ([]*Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors ORDER BY check_in DESC, id DESC`

	var rows []visitorRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying visitors: %w", err)
	}

	visitors := make([]*Visitor, 0, len(rows))
	for _, row := range rows {
		v, err := row.toVisitor()
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, nil
}

// GetVisitor retrieves a visitor by ID.
// Returns ErrNotFound if the visitor doesn't exist.
func (s *SQLiteStore) GetVisitor(ctx context.Context, id int64) (*Visitor, error) {
	var row visitorRow
	err := s.db.GetContext(ctx, &row, `SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying visitor: %w", err)
	}
	return row.toVisitor()
}

// CreateVisitor checks a visitor in. Fields are trimmed, name and flat number
// are required (a *ValidationError is returned and nothing is written otherwise).
// On success v.ID and v.CheckIn are set and v.CheckOut is nil.
func (s *SQLiteStore) CreateVisitor(ctx context.Context, v *Visitor) error {
	v.normalize()
	if err := v.Validate(); err != nil {
		return err
	}

	checkIn := s.now()
	query := `
		INSERT INTO visitors (name, phone, flat_no, purpose, vehicle_no, check_in)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		v.Name,
		v.Phone,
		v.FlatNo,
		v.Purpose,
		v.VehicleNo,
		formatTime(checkIn),
	)
	if err != nil {
		return fmt.Errorf("inserting visitor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting visitor id: %w", err)
	}

	v.ID = id
	// Round-trip precision: storage keeps whole seconds
	v.CheckIn, _ = parseTime(formatTime(checkIn))
	v.CheckOut = nil

	s.logger.Debug("visitor checked in", "id", v.ID, "flat_no", v.FlatNo)
	return nil
}

// CheckoutVisitor stamps check_out on an open visit. It only touches the row
// while check_out is still NULL, so a repeat call (or an unknown id) changes
// nothing and is not an error. Returns true if this call closed the visit.
func (s *SQLiteStore) CheckoutVisitor(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE visitors SET check_out = ? WHERE id = ? AND check_out IS NULL`,
		s.timestamp(), id)
	if err != nil {
		return false, fmt.Errorf("checking out visitor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected > 0 {
		s.logger.Debug("visitor checked out", "id", id)
	}
	return rowsAffected > 0, nil
}
