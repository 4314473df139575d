// Package desk provides the front desk web interface.
//
// # Overview
//
// The desk is a server-rendered HTML application for the gate staff of a
// residential complex:
//
//   - Dashboard: today's visitors, visitors inside, resident count, recent check-ins
//   - Visitors: check in, check out, full register
//   - Residents: directory by flat number
//   - Security Logs: guard shifts with notes
//   - Help: embedded Markdown pages
//
// # Authentication
//
// A single role exists: logged in or not. Login checks a bcrypt hash and
// creates a server-side session row; the session cookie holds its random id.
// Every route except login, logout and forgot-password goes through
// requireSession, which redirects to /login when no valid session exists.
//
// The forgot-password form overwrites a password given only a username. It
// can be switched off with Config.AllowPasswordReset and is logged at WARN
// on every use.
//
// # Forms
//
// Every POST form carries a csrf_token field matched against the CSRF
// cookie. Mutating routes answer with 303 See Other to their list page.
//
// # Notices
//
// Handlers queue one-shot notices ("Visitor added successfully") on the
// request state. A redirect moves them into a signed, short-lived cookie;
// the next request consumes and clears it, and the rendered page shows them
// once.
//
// # Errors
//
// Validation problems become error notices and nothing is written.
// Storage failures are logged and answered with 500. Closing a visit or
// shift that is already closed is a silent success.
package desk
