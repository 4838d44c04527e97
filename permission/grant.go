package permission

import (
	"encoding/json"
	"strings"
)

// Capability is a single bit of a [Grant].
type Capability uint8

const (
	// CapConcert allows entering the concert room.
	CapConcert Capability = iota
	// CapPremium allows the premium area.
	CapPremium
	// CapVIP allows the VIP lounge.
	CapVIP
	// CapBackstage allows the backstage room.
	CapBackstage
	// CapStadiumArena allows the stadium arena.
	CapStadiumArena
	// CapComingSoon allows previewing unreleased content.
	CapComingSoon
	// CapTicketPurchase allows buying tickets.
	CapTicketPurchase
	// CapFullAccess marks an all-areas grant.
	CapFullAccess
	capabilityCount
)

// Grant is an immutable set of capabilities.
//
// The zero Grant holds nothing. Grants built by this package always satisfy
// the full-access invariant: FullAccess implies Concert, Premium, VIP,
// Backstage and StadiumArena.
type Grant uint16

// fullAccessImplies lists every capability a full-access grant must carry.
const fullAccessImplies = Grant(1<<CapConcert | 1<<CapPremium | 1<<CapVIP | 1<<CapBackstage | 1<<CapStadiumArena)

// GrantOf builds a grant holding exactly the given capabilities.
func GrantOf(caps ...Capability) Grant {
	var g Grant
	for _, c := range caps {
		g = g.With(c)
	}
	return g
}

// Has reports whether c is granted.
func (g Grant) Has(c Capability) bool {
	if c >= capabilityCount {
		return false
	}
	return g&(1<<c) != 0
}

// With returns a copy of g that also holds c.
func (g Grant) With(c Capability) Grant {
	if c >= capabilityCount {
		return g
	}
	return g | 1<<c
}

// Union returns the capabilities held by either grant.
func (g Grant) Union(other Grant) Grant {
	return normalize(g | other)
}

// Capabilities lists the granted capabilities in declaration order.
func (g Grant) Capabilities() []Capability {
	out := make([]Capability, 0, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		if g.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (g Grant) Concert() bool        { return g.Has(CapConcert) }
func (g Grant) Premium() bool        { return g.Has(CapPremium) }
func (g Grant) VIP() bool            { return g.Has(CapVIP) }
func (g Grant) Backstage() bool      { return g.Has(CapBackstage) }
func (g Grant) StadiumArena() bool   { return g.Has(CapStadiumArena) }
func (g Grant) ComingSoon() bool     { return g.Has(CapComingSoon) }
func (g Grant) TicketPurchase() bool { return g.Has(CapTicketPurchase) }
func (g Grant) FullAccess() bool     { return g.Has(CapFullAccess) }

// String renders the grant as a "+"-joined capability list, or "none".
func (g Grant) String() string {
	caps := g.Capabilities()
	if len(caps) == 0 {
		return "none"
	}
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return strings.Join(names, "+")
}

// grantJSON is the wire shape consumed by route handlers and templates.
type grantJSON struct {
	Concert        bool `json:"concert"`
	Premium        bool `json:"premium"`
	VIP            bool `json:"vip"`
	Backstage      bool `json:"backstage"`
	StadiumArena   bool `json:"stadiumArena"`
	ComingSoon     bool `json:"comingSoon"`
	TicketPurchase bool `json:"ticketPurchase"`
	FullAccess     bool `json:"fullAccess"`
}

// MarshalJSON encodes the grant as eight named booleans.
func (g Grant) MarshalJSON() ([]byte, error) {
	return json.Marshal(grantJSON{
		Concert:        g.Concert(),
		Premium:        g.Premium(),
		VIP:            g.VIP(),
		Backstage:      g.Backstage(),
		StadiumArena:   g.StadiumArena(),
		ComingSoon:     g.ComingSoon(),
		TicketPurchase: g.TicketPurchase(),
		FullAccess:     g.FullAccess(),
	})
}

// UnmarshalJSON decodes the eight-boolean form produced by MarshalJSON.
func (g *Grant) UnmarshalJSON(data []byte) error {
	var raw grantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Grant
	set := func(ok bool, c Capability) {
		if ok {
			out = out.With(c)
		}
	}
	set(raw.Concert, CapConcert)
	set(raw.Premium, CapPremium)
	set(raw.VIP, CapVIP)
	set(raw.Backstage, CapBackstage)
	set(raw.StadiumArena, CapStadiumArena)
	set(raw.ComingSoon, CapComingSoon)
	set(raw.TicketPurchase, CapTicketPurchase)
	set(raw.FullAccess, CapFullAccess)
	*g = normalize(out)
	return nil
}

// normalize restores the full-access invariant.
func normalize(g Grant) Grant {
	if g.Has(CapFullAccess) {
		g |= fullAccessImplies
	}
	return g
}
