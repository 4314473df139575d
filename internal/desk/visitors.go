// ABOUTME: Visitor register handlers: list, check in, check out
// ABOUTME: Check-out of an already closed or unknown visit still reports success

package desk

import (
	"net/http"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/store"
)

func (d *Desk) handleVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := d.store.ListVisitors(r.Context())
	if err != nil {
		d.serverError(w, r, "failed to list visitors", err)
		return
	}
	d.renderVisitors(w, r, visitors)
}

func (d *Desk) handleAddVisitor(w http.ResponseWriter, r *http.Request) {
	if !d.checkCSRF(w, r, "/visitors") {
		return
	}

	v := &store.Visitor{
		Name:      r.FormValue("name"),
		Phone:     r.FormValue("phone"),
		FlatNo:    r.FormValue("flat_no"),
		Purpose:   r.FormValue("purpose"),
		VehicleNo: r.FormValue("vehicle_no"),
	}

	if err := d.store.CreateVisitor(r.Context(), v); err != nil {
		if store.IsValidation(err) {
			d.notify(r, auth.NoticeError, err.Error())
			d.redirect(w, r, "/visitors")
			return
		}
		d.serverError(w, r, "failed to add visitor", err)
		return
	}

	d.metrics.VisitorCheckedIn()
	d.logger.Info("visitor checked in", "id", v.ID, "flat_no", v.FlatNo)
	d.notify(r, auth.NoticeSuccess, "Visitor added successfully")
	d.redirect(w, r, "/visitors")
}

func (d *Desk) handleCheckoutVisitor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if !d.checkCSRF(w, r, "/visitors") {
		return
	}

	closed, err := d.store.CheckoutVisitor(r.Context(), id)
	if err != nil {
		d.serverError(w, r, "failed to check out visitor", err)
		return
	}

	if closed {
		d.metrics.VisitorCheckedOut()
		d.logger.Info("visitor checked out", "id", id)
	}
	d.notify(r, auth.NoticeSuccess, "Visitor checked out")
	d.redirect(w, r, "/visitors")
}
