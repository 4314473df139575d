// ABOUTME: Store interfaces and data types for frontdesk persistence
// ABOUTME: Defines User, Session, Visitor, Resident, SecurityLog and the per-entity store interfaces

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ValidationError reports missing or malformed input. No row is written
// when a create operation returns one. Message is safe to show to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Visitor is a single check-in record. CheckOut is nil while the visitor is inside.
type Visitor struct {
	ID        int64
	Name      string
	Phone     string
	FlatNo    string
	Purpose   string
	VehicleNo string
	CheckIn   time.Time
	CheckOut  *time.Time
}

// Inside reports whether the visitor has not checked out yet.
func (v *Visitor) Inside() bool {
	return v.CheckOut == nil
}

// normalize trims every free-text field
func (v *Visitor) normalize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Phone = strings.TrimSpace(v.Phone)
	v.FlatNo = strings.TrimSpace(v.FlatNo)
	v.Purpose = strings.TrimSpace(v.Purpose)
	v.VehicleNo = strings.TrimSpace(v.VehicleNo)
}

// Validate checks the mandatory fields. Call after trimming.
func (v *Visitor) Validate() error {
	if v.Name == "" || v.FlatNo == "" {
		return &ValidationError{Message: "Name and Flat No are required"}
	}
	return nil
}

// Resident is an entry in the resident directory. Several residents may share a flat.
type Resident struct {
	ID     int64
	Name   string
	FlatNo string
	Phone  string
	Email  string
}

func (r *Resident) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.FlatNo = strings.TrimSpace(r.FlatNo)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks the mandatory fields. Call after trimming.
func (r *Resident) Validate() error {
	if r.Name == "" || r.FlatNo == "" {
		return &ValidationError{Message: "Name and Flat No are required"}
	}
	return nil
}

// SecurityLog is one guard shift. ShiftEnd is nil while the shift is open.
type SecurityLog struct {
	ID         int64
	GuardName  string
	ShiftStart time.Time
	ShiftEnd   *time.Time
	Notes      string
}

// Open reports whether the shift has not ended yet.
func (l *SecurityLog) Open() bool {
	return l.ShiftEnd == nil
}

func (l *SecurityLog) normalize() {
	l.GuardName = strings.TrimSpace(l.GuardName)
	l.Notes = strings.TrimSpace(l.Notes)
}

// Validate checks the mandatory fields. Call after trimming.
func (l *SecurityLog) Validate() error {
	if l.GuardName == "" {
		return &ValidationError{Message: "Guard name is required"}
	}
	return nil
}

// RecentVisitor is the slim projection shown on the dashboard
type RecentVisitor struct {
	Name    string
	FlatNo  string
	CheckIn time.Time
}

// DashboardSummary holds the dashboard figures. Each figure is queried
// independently, so they are not a single atomic snapshot.
type DashboardSummary struct {
	DailyCount     int
	InsideCount    int
	TotalResidents int
	Recent         []RecentVisitor
}

// RecentVisitorLimit is how many visitors the dashboard lists
const RecentVisitorLimit = 5

// VisitorStore covers the visitor register
type VisitorStore interface {
	ListVisitors(ctx context.Context) ([]*Visitor, error)
	CreateVisitor(ctx context.Context, v *Visitor) error
	CheckoutVisitor(ctx context.Context, id int64) (bool, error)
	GetVisitor(ctx context.Context, id int64) (*Visitor, error)
}

// ResidentStore covers the resident directory
type ResidentStore interface {
	ListResidents(ctx context.Context) ([]*Resident, error)
	CreateResident(ctx context.Context, r *Resident) error
}

// SecurityLogStore covers the guard shift log
type SecurityLogStore interface {
	ListSecurityLogs(ctx context.Context) ([]*SecurityLog, error)
	StartShift(ctx context.Context, l *SecurityLog) error
	EndShift(ctx context.Context, id int64) (bool, error)
	GetSecurityLog(ctx context.Context, id int64) (*SecurityLog, error)
}

// DashboardStore computes the dashboard figures
type DashboardStore interface {
	DashboardSummary(ctx context.Context) (*DashboardSummary, error)
}

// Store is everything the desk needs from persistence
type Store interface {
	UserStore
	SessionStore
	VisitorStore
	ResidentStore
	SecurityLogStore
	DashboardStore

	Ping(ctx context.Context) error
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
