// ABOUTME: Resident directory handlers
// ABOUTME: Insert-only; no edit or delete

package desk

import (
	"net/http"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/store"
)

func (d *Desk) handleResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := d.store.ListResidents(r.Context())
	if err != nil {
		d.serverError(w, r, "failed to list residents", err)
		return
	}
	d.renderResidents(w, r, residents)
}

func (d *Desk) handleAddResident(w http.ResponseWriter, r *http.Request) {
	if !d.checkCSRF(w, r, "/residents") {
		return
	}

	res := &store.Resident{
		Name:   r.FormValue("name"),
		FlatNo: r.FormValue("flat_no"),
		Phone:  r.FormValue("phone"),
		Email:  r.FormValue("email"),
	}

	if err := d.store.CreateResident(r.Context(), res); err != nil {
		if store.IsValidation(err) {
			d.notify(r, auth.NoticeError, err.Error())
			d.redirect(w, r, "/residents")
			return
		}
		d.serverError(w, r, "failed to add resident", err)
		return
	}

	d.metrics.ResidentAdded()
	d.notify(r, auth.NoticeSuccess, "Resident added successfully")
	d.redirect(w, r, "/residents")
}
