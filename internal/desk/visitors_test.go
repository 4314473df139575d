// ABOUTME: Tests for the visitor register handlers
// ABOUTME: Covers check-in validation, idempotent check-out and bad ids

package desk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitors_AddAndList(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	resp := env.post("/visitors/add", url.Values{
		"name":       {"  Priya Nair "},
		"phone":      {"98450 00000"},
		"flat_no":    {"A-101"},
		"purpose":    {"Delivery"},
		"vehicle_no": {"KA01AB1234"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/visitors", resp.Header.Get("Location"))

	list := env.follow(resp)
	require.Equal(t, http.StatusOK, list.StatusCode)
	page := readBody(t, list)
	assert.Contains(t, page, "Visitor added successfully")
	assert.Contains(t, page, "Priya Nair")
	assert.Contains(t, page, "KA01AB1234")
	assert.Contains(t, page, "/visitors/checkout/1")

	visitors, err := env.store.ListVisitors(context.Background())
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "Priya Nair", visitors[0].Name)

	assert.Contains(t, scrapeMetrics(t, env.metrics), "frontdesk_visitor_checkins_total 1")
}

func TestVisitors_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	for _, name := range []string{"Visitor-T1", "Visitor-T2", "Visitor-T3"} {
		resp := env.post("/visitors/add", url.Values{"name": {name}, "flat_no": {"B-2"}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		env.clock.Advance(time.Minute)
	}

	page := readBody(t, env.get("/visitors"))
	i1 := strings.Index(page, "Visitor-T1")
	i2 := strings.Index(page, "Visitor-T2")
	i3 := strings.Index(page, "Visitor-T3")
	require.True(t, i1 > 0 && i2 > 0 && i3 > 0)
	assert.Less(t, i3, i2)
	assert.Less(t, i2, i1)
}

func TestVisitors_AddValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing name", url.Values{"flat_no": {"A-1"}}},
		{"missing flat", url.Values{"name": {"Sam"}}},
		{"whitespace only", url.Values{"name": {"   "}, "flat_no": {"  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mustLogin()

			resp := env.post("/visitors/add", tt.form)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)

			page := readBody(t, env.follow(resp))
			assert.Contains(t, page, "Name and Flat No are required")

			visitors, err := env.store.ListVisitors(context.Background())
			require.NoError(t, err)
			assert.Empty(t, visitors)
		})
	}
}

func TestVisitors_CheckoutIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	resp := env.post("/visitors/add", url.Values{"name": {"Arun"}, "flat_no": {"B-12"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	ctx := context.Background()
	visitors, err := env.store.ListVisitors(ctx)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	id := visitors[0].ID

	env.clock.Advance(30 * time.Minute)
	first := env.clock.Now()

	resp = env.post("/visitors/checkout/1", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/visitors", resp.Header.Get("Location"))
	assert.Contains(t, readBody(t, env.follow(resp)), "Visitor checked out")

	env.clock.Advance(time.Hour)
	resp = env.post("/visitors/checkout/1", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, readBody(t, env.follow(resp)), "Visitor checked out")

	v, err := env.store.GetVisitor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, v.CheckOut)
	assert.True(t, first.Equal(*v.CheckOut), "first check-out time must be kept")

	assert.Contains(t, scrapeMetrics(t, env.metrics), "frontdesk_visitor_checkouts_total 1")
}

func TestVisitors_CheckoutUnknownID(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	resp := env.post("/visitors/checkout/999", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, readBody(t, env.follow(resp)), "Visitor checked out")
}

func TestVisitors_CheckoutNonIntegerID(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	for _, id := range []string{"abc", "1.5", "-"} {
		resp := env.post("/visitors/checkout/"+id, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "id %q", id)
	}
}

func TestVisitors_CheckoutRequiresPost(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	resp := env.get("/visitors/checkout/1")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
