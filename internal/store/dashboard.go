// ABOUTME: Dashboard figures computed fresh on each call
// ABOUTME: Four independent queries; no snapshot isolation across them

package store

import (
	"context"
	"fmt"
	"time"
)

type recentVisitorRow struct {
	Name    string `db:"name"`
	FlatNo  string `db:"flat_no"`
	CheckIn string `db:"check_in"`
}

// DashboardSummary counts today's visitors (server-local date), visitors
// still inside, total residents, and loads the five newest check-ins.
func (s *SQLiteStore) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	today := s.now().In(time.Local).Format(dateLayout)

	if err := s.db.GetContext(ctx, &summary.DailyCount,
		`SELECT COUNT(*) FROM visitors WHERE date(check_in) = ?`, today); err != nil {
		return nil, fmt.Errorf("counting today's visitors: %w", err)
	}

	if err := s.db.GetContext(ctx, &summary.InsideCount,
		`SELECT COUNT(*) FROM visitors WHERE check_out IS NULL`); err != nil {
		return nil, fmt.Errorf("counting visitors inside: %w", err)
	}

	if err := s.db.GetContext(ctx, &summary.TotalResidents,
		`SELECT COUNT(*) FROM residents`); err != nil {
		return nil, fmt.Errorf("counting residents: %w", err)
	}

	var rows []recentVisitorRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT name, flat_no, check_in FROM visitors ORDER BY check_in DESC, id DESC LIMIT ?`,
		RecentVisitorLimit); err != nil {
		return nil, fmt.Errorf("querying recent visitors: %w", err)
	}

	summary.Recent = make([]RecentVisitor, 0, len(rows))
	for _, row := range rows {
		checkIn, err := parseTime(row.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("parsing check_in: %w", err)
		}
		summary.Recent = append(summary.Recent, RecentVisitor{
			Name:    row.Name,
			FlatNo:  row.FlatNo,
			CheckIn: checkIn,
		})
	}

	return &summary, nil
}
