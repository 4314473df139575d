// ABOUTME: Security shift log persistence: open a shift, close it once, list newest-first
// ABOUTME: Ending a shift uses the same conditional UPDATE pattern as visitor check-out

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type securityLogRow struct {
	ID         int64          `db:"id"`
	GuardName  string         `db:"guard_name"`
	ShiftStart string         `db:"shift_start"`
	ShiftEnd   sql.NullString `db:"shift_end"`
	Notes      sql.NullString `db:"notes"`
}

func (r securityLogRow) toSecurityLog() (*SecurityLog, error) {
	l := &SecurityLog{
		ID:        r.ID,
		GuardName: r.GuardName,
		Notes:     r.Notes.String,
	}

	var err error
	l.ShiftStart, err = parseTime(r.ShiftStart)
	if err != nil {
		return nil, fmt.Errorf("parsing shift_start: %w", err)
	}

	l.ShiftEnd, err = parseNullTime(r.ShiftEnd)
	if err != nil {
		return nil, fmt.Errorf("parsing shift_end: %w", err)
	}

	return l, nil
}

const securityLogColumns = `id, guard_name, shift_start, shift_end, notes`

// ListSecurityLogs returns every shift, newest start first.
func (s *SQLiteStore) ListSecurityLogs(ctx context.Context) ([]*SecurityLog, error) {
	query := `SELECT ` + securityLogColumns + ` FROM security_logs ORDER BY shift_start DESC, id DESC`

	var rows []securityLogRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying security logs: %w", err)
	}

	logs := make([]*SecurityLog, 0, len(rows))
	for _, row := range rows {
		l, err := row.toSecurityLog()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// GetSecurityLog retrieves a shift by ID.
// Returns ErrNotFound if the shift doesn't exist.
func (s *SQLiteStore) GetSecurityLog(ctx context.Context, id int64) (*SecurityLog, error) {
	var row securityLogRow
	err := s.db.GetContext(ctx, &row, `SELECT `+securityLogColumns+` FROM security_logs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying security log: %w", err)
	}
	return row.toSecurityLog()
}

// StartShift opens a guard shift starting now. Guard name is required.
func (s *SQLiteStore) StartShift(ctx context.Context, l *SecurityLog) error {
	l.normalize()
	if err := l.Validate(); err != nil {
		return err
	}

	start := s.now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO security_logs (guard_name, shift_start, notes) VALUES (?, ?, ?)`,
		l.GuardName, formatTime(start), l.Notes)
	if err != nil {
		return fmt.Errorf("inserting security log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting security log id: %w", err)
	}

	l.ID = id
	l.ShiftStart, _ = parseTime(formatTime(start))
	l.ShiftEnd = nil

	s.logger.Debug("guard shift started", "id", l.ID, "guard", l.GuardName)
	return nil
}

// EndShift stamps shift_end on an open shift. Closed or unknown shifts are
// left alone without error. Returns true if this call closed the shift.
func (s *SQLiteStore) EndShift(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE security_logs SET shift_end = ? WHERE id = ? AND shift_end IS NULL`,
		s.timestamp(), id)
	if err != nil {
		return false, fmt.Errorf("ending shift: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected > 0 {
		s.logger.Debug("guard shift ended", "id", id)
	}
	return rowsAffected > 0, nil
}
