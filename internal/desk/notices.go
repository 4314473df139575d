// ABOUTME: Per-request state holding one-shot notices
// ABOUTME: Notices queued before a redirect travel in a signed cookie and are shown once

package desk

import (
	"context"
	"net/http"

	"github.com/2389/frontdesk/internal/auth"
)

// requestState is created for every desk request and lives on its context.
type requestState struct {
	// incoming were carried over from the previous response
	incoming []auth.Notice
	// queued were added while handling this request
	queued []auth.Notice
}

type stateContextKey struct{}

// withState attaches a fresh requestState, consuming the notice cookie if present.
// Invalid or expired notice cookies are dropped silently.
func (d *Desk) withState(w http.ResponseWriter, r *http.Request) *http.Request {
	state := &requestState{}

	if cookie, err := r.Cookie(NoticeCookieName); err == nil {
		if cookie.Value != "" {
			notices, err := d.notices.Verify(cookie.Value)
			if err != nil {
				d.logger.Debug("discarding notice cookie", "error", err)
			} else {
				state.incoming = notices
			}
		}
		clearCookie(w, NoticeCookieName)
	}

	return r.WithContext(context.WithValue(r.Context(), stateContextKey{}, state))
}

func stateFrom(r *http.Request) *requestState {
	state, _ := r.Context().Value(stateContextKey{}).(*requestState)
	return state
}

// notify queues a notice for the next rendered page
func (d *Desk) notify(r *http.Request, category, message string) {
	if state := stateFrom(r); state != nil {
		state.queued = append(state.queued, auth.Notice{Category: category, Message: message})
	}
}

// takeNotices returns every notice for a page rendered in this response
func takeNotices(r *http.Request) []auth.Notice {
	state := stateFrom(r)
	if state == nil {
		return nil
	}
	notices := append(state.incoming, state.queued...)
	state.incoming, state.queued = nil, nil
	return notices
}

// redirect answers 303 to target, carrying queued notices in a signed cookie
func (d *Desk) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if state := stateFrom(r); state != nil && len(state.queued) > 0 {
		token, err := d.notices.Sign(state.queued, auth.NoticeTTL)
		if err != nil {
			d.logger.Error("failed to sign notices", "error", err)
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     NoticeCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(auth.NoticeTTL.Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}
		state.queued = nil
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}
