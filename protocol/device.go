package protocol

import "time"

// Role is the part a node plays in a game.
type Role uint8

const (
	RoleHub Role = iota + 1
	RolePlayer
)

func (r Role) String() string {
	switch r {
	case RoleHub:
		return "hub"
	case RolePlayer:
		return "player"
	}
	return "unknown"
}

// Device is a peer as seen from the other end of the link: where to write to
// reach it and which local pipe its traffic arrives on.
type Device struct {
	Name    string
	Role    Role
	Address Address // the peer's own receive address
	Pipe    uint8   // local reading pipe the peer writes to

	LastSeen time.Time
}

func NewPlayer(name string, addr Address, pipe uint8) *Device {
	return &Device{Name: name, Role: RolePlayer, Address: addr, Pipe: pipe}
}

func NewHub(addr Address) *Device {
	return &Device{Name: "hub", Role: RoleHub, Address: addr}
}

func (d *Device) UpdateLastSeen(now time.Time) { d.LastSeen = now }

// IsAlive reports whether the peer was heard from within timeout.
func (d *Device) IsAlive(now time.Time, timeout time.Duration) bool {
	return !d.LastSeen.IsZero() && now.Sub(d.LastSeen) < timeout
}
