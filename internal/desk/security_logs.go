// ABOUTME: Security shift log handlers: list, start shift, end shift
// ABOUTME: Ending a closed or unknown shift still reports success

package desk

import (
	"net/http"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/store"
)

func (d *Desk) handleSecurityLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := d.store.ListSecurityLogs(r.Context())
	if err != nil {
		d.serverError(w, r, "failed to list security logs", err)
		return
	}
	d.renderSecurityLogs(w, r, logs)
}

func (d *Desk) handleStartShift(w http.ResponseWriter, r *http.Request) {
	if !d.checkCSRF(w, r, "/security-logs") {
		return
	}

	l := &store.SecurityLog{
		GuardName: r.FormValue("guard_name"),
		Notes:     r.FormValue("notes"),
	}

	if err := d.store.StartShift(r.Context(), l); err != nil {
		if store.IsValidation(err) {
			d.notify(r, auth.NoticeError, err.Error())
			d.redirect(w, r, "/security-logs")
			return
		}
		d.serverError(w, r, "failed to start shift", err)
		return
	}

	d.metrics.ShiftStarted()
	d.logger.Info("guard shift started", "id", l.ID, "guard", l.GuardName)
	d.notify(r, auth.NoticeSuccess, "Guard shift started")
	d.redirect(w, r, "/security-logs")
}

func (d *Desk) handleEndShift(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if !d.checkCSRF(w, r, "/security-logs") {
		return
	}

	closed, err := d.store.EndShift(r.Context(), id)
	if err != nil {
		d.serverError(w, r, "failed to end shift", err)
		return
	}

	if closed {
		d.metrics.ShiftEnded()
		d.logger.Info("guard shift ended", "id", id)
	}
	d.notify(r, auth.NoticeSuccess, "Guard shift ended")
	d.redirect(w, r, "/security-logs")
}
