package permission

import "errors"

// ErrUnknownCapability is returned by [ParseCapability] for names outside the registry.
var ErrUnknownCapability = errors.New("unknown capability")

// capabilityNames maps each bit to its stable external name. The names are
// used in JSON, logs, audit metadata and route declarations.
var capabilityNames = [capabilityCount]string{
	CapConcert:        "concert",
	CapPremium:        "premium",
	CapVIP:            "vip",
	CapBackstage:      "backstage",
	CapStadiumArena:   "stadium_arena",
	CapComingSoon:     "coming_soon",
	CapTicketPurchase: "ticket_purchase",
	CapFullAccess:     "full_access",
}

var nameToCapability = func() map[string]Capability {
	m := make(map[string]Capability, capabilityCount)
	for _, c := range AllCapabilities() {
		m[c.String()] = c
	}
	return m
}()

// String returns the registered name of c.
func (c Capability) String() string {
	if c >= capabilityCount {
		return "unknown"
	}
	return capabilityNames[c]
}

// ParseCapability resolves a registered capability name.
func ParseCapability(name string) (Capability, error) {
	c, ok := nameToCapability[name]
	if !ok {
		return 0, ErrUnknownCapability
	}
	return c, nil
}

// AllCapabilities lists every registered capability in bit order.
func AllCapabilities() []Capability {
	out := make([]Capability, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out[c] = c
	}
	return out
}
