// Package clock provides the injected time sources used by the digest core.
//
// Core packages never call time.Now() or time.LoadLocation directly; they
// receive a Clock and a ZoneProvider so runs are reproducible in tests.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// DefaultZoneID is used when no zone is configured.
const DefaultZoneID = "Europe/Moscow"

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock. Use only at the entry point.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

func (c Fixed) Now() time.Time { return c.T }

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// ZoneProvider supplies the single process-wide time zone.
type ZoneProvider interface {
	ZoneID() string
	Location() *time.Location
}

// StaticZone is an immutable ZoneProvider resolved once at startup.
type StaticZone struct {
	id  string
	loc *time.Location
}

// NewStaticZone loads the named IANA zone. An empty id falls back to
// DefaultZoneID.
func NewStaticZone(id string) (StaticZone, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultZoneID
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return StaticZone{}, fmt.Errorf("load time zone %q: %w", id, err)
	}
	return StaticZone{id: id, loc: loc}, nil
}

// MustStaticZone is NewStaticZone for tests and constants.
func MustStaticZone(id string) StaticZone {
	z, err := NewStaticZone(id)
	if err != nil {
		panic(err)
	}
	return z
}

func (z StaticZone) ZoneID() string { return z.id }

func (z StaticZone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}
