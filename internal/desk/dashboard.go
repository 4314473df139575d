// ABOUTME: Dashboard handler
// ABOUTME: Figures are recomputed on every request

package desk

import (
	"net/http"
)

func (d *Desk) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := d.store.DashboardSummary(r.Context())
	if err != nil {
		d.serverError(w, r, "failed to load dashboard", err)
		return
	}
	d.renderDashboard(w, r, summary)
}
