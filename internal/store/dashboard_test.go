// ABOUTME: Tests for dashboard aggregates
// ABOUTME: Pins the clock to check the "today" boundary and the recent-visitor limit

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary_Empty(t *testing.T) {
	store := setupTestStore(t)

	summary, err := store.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.DailyCount)
	assert.Zero(t, summary.InsideCount)
	assert.Zero(t, summary.TotalResidents)
	assert.Empty(t, summary.Recent)
}

func TestDashboardSummary_Counts(t *testing.T) {
	store, clock := setupClockedStore(t)
	ctx := context.Background()

	// Yesterday: one visitor who never checked out
	clock.Set(time.Date(2025, 3, 13, 22, 0, 0, 0, time.Local))
	require.NoError(t, store.CreateVisitor(ctx, &Visitor{Name: "Yesterday", FlatNo: "A-1"}))

	// Today: three visitors, one checked out
	clock.Set(time.Date(2025, 3, 14, 8, 0, 0, 0, time.Local))
	out := &Visitor{Name: "Left", FlatNo: "A-2"}
	require.NoError(t, store.CreateVisitor(ctx, out))
	clock.Advance(time.Minute)
	require.NoError(t, store.CreateVisitor(ctx, &Visitor{Name: "Inside1", FlatNo: "A-3"}))
	clock.Advance(time.Minute)
	require.NoError(t, store.CreateVisitor(ctx, &Visitor{Name: "Inside2", FlatNo: "A-4"}))
	clock.Advance(time.Minute)
	_, err := store.CheckoutVisitor(ctx, out.ID)
	require.NoError(t, err)

	require.NoError(t, store.CreateResident(ctx, &Resident{Name: "R1", FlatNo: "A-1"}))
	require.NoError(t, store.CreateResident(ctx, &Resident{Name: "R2", FlatNo: "A-2"}))

	summary, err := store.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.DailyCount)
	assert.Equal(t, 3, summary.InsideCount, "inside count spans all days")
	assert.Equal(t, 2, summary.TotalResidents)

	require.Len(t, summary.Recent, 4)
	assert.Equal(t, "Inside2", summary.Recent[0].Name)
	assert.Equal(t, "Yesterday", summary.Recent[3].Name)
}

func TestDashboardSummary_RecentLimit(t *testing.T) {
	store, clock := setupClockedStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		require.NoError(t, store.CreateVisitor(ctx, &Visitor{Name: fmt.Sprintf("V%d", i), FlatNo: "A-1"}))
		clock.Advance(time.Minute)
	}

	summary, err := store.DashboardSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Recent, RecentVisitorLimit)
	assert.Equal(t, "V7", summary.Recent[0].Name)
	assert.Equal(t, "V3", summary.Recent[4].Name)
	assert.Equal(t, "A-1", summary.Recent[0].FlatNo)
}

func TestDashboardSummary_MidnightBoundary(t *testing.T) {
	store, clock := setupClockedStore(t)
	ctx := context.Background()

	clock.Set(time.Date(2025, 3, 14, 23, 59, 59, 0, time.Local))
	require.NoError(t, store.CreateVisitor(ctx, &Visitor{Name: "Late", FlatNo: "A-1"}))

	clock.Set(time.Date(2025, 3, 15, 0, 0, 1, 0, time.Local))
	summary, err := store.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.DailyCount)
	assert.Equal(t, 1, summary.InsideCount)
}
