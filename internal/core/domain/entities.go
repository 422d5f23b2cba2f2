package domain

import (
	"time"
)

// Bin status values.
const (
	BinStatusNormal = "normal"
	BinStatusFull   = "full"
)

// User roles. Exactly two roles exist; there is no wider authorization model.
const (
	RoleAdmin          = "admin"
	RoleWasteCollector = "waste_collector"
)

// Bin is a physical waste-collection point tracked by the system.
// Names are generated sequentially ("bin 1", "bin 2", ...) and are not
// guaranteed unique under concurrent creation.
type Bin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  GeoPoint  `json:"location"`
	Status    string    `json:"status"`
	AddedBy   string    `json:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an account that can sign in as admin or waste collector.
// PasswordHash holds a bcrypt hash, never a plaintext password.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the request-scoped identity resolved from a session cookie.
type Session struct {
	Token    string `json:"-"`
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Candidate rejection reasons reported by the placement filter.
const (
	RejectOutsideRegion = "outside_region"
	RejectTooClose      = "too_close"
	RejectWater         = "water"
	RejectNotOnRoad     = "not_on_road"
	RejectLookupFailed  = "lookup_failed"
)

// CandidateBin is a point along a route geometry evaluated for bin
// placement, annotated with the filter outcome. Transient.
type CandidateBin struct {
	Location GeoPoint `json:"location"`
	Accepted bool     `json:"accepted"`
	Reason   string   `json:"reason,omitempty"`
}

// Address is a reverse-geocoding result reduced to the tags the placement
// filter cares about.
type Address struct {
	Road        string `json:"road,omitempty"`
	Waterway    string `json:"waterway,omitempty"`
	River       string `json:"river,omitempty"`
	Lake        string `json:"lake,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// OnWater reports whether the address carries any water-body tag.
func (a Address) OnWater() bool {
	return a.Waterway != "" || a.River != "" || a.Lake != ""
}

// OnRoad reports whether the address carries a road tag.
func (a Address) OnRoad() bool {
	return a.Road != ""
}
