package permission

import "strings"

// Tier is the kind of a ticket.
type Tier uint8

const (
	// TierUnknown is any tier string this package does not recognise.
	TierUnknown Tier = iota
	TierStandard
	TierVIP
	TierBackstage
	// TierBandPass and TierAdminPass are role-bound passes. They are unranked
	// and never upgrade a fan grant; band and admin access comes from the role.
	TierBandPass
	TierAdminPass
)

var tierNames = map[Tier]string{
	TierUnknown:   "unknown",
	TierStandard:  "standard",
	TierVIP:       "vip",
	TierBackstage: "backstage",
	TierBandPass:  "band_pass",
	TierAdminPass: "admin_pass",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTier maps a stored tier name to a Tier. Matching ignores case and
// separators, so "VIP", "BandPass", "band-pass" and "band_pass" all parse.
func ParseTier(s string) Tier {
	key := normalizeName(s)
	for t, name := range tierNames {
		if normalizeName(name) == key {
			return t
		}
	}
	return TierUnknown
}

// tierOrder is the total order of ranked tiers, lowest first. A tier's rank
// is its index plus one; unranked tiers have rank zero.
var tierOrder = []Tier{TierStandard, TierVIP, TierBackstage}

// capabilityFloors is the lowest tier that unlocks each ticket-derived
// capability. Holding any tier ranked at or above the floor grants it.
var capabilityFloors = []struct {
	cap   Capability
	floor Tier
}{
	{CapStadiumArena, TierStandard},
	{CapVIP, TierVIP},
	{CapBackstage, TierBackstage},
	{CapFullAccess, TierBackstage},
}

// Rank returns the position of t in the tier order, or 0 when t is unranked.
func (t Tier) Rank() int {
	for i, ranked := range tierOrder {
		if ranked == t {
			return i + 1
		}
	}
	return 0
}

// AtLeast reports whether t is ranked and not below floor.
func (t Tier) AtLeast(floor Tier) bool {
	r := t.Rank()
	return r > 0 && r >= floor.Rank()
}

// HighestTier returns the highest ranked tier in tiers, or TierUnknown when
// none of them is ranked.
func HighestTier(tiers []Tier) Tier {
	best := TierUnknown
	for _, t := range tiers {
		if t.Rank() > best.Rank() {
			best = t
		}
	}
	return best
}

// ResolveTiers returns the ticket-derived capabilities unlocked by holding
// tiers. Lower tiers in the set never reduce what a higher tier unlocks.
func ResolveTiers(tiers []Tier) Grant {
	top := HighestTier(tiers)
	if top == TierUnknown {
		return 0
	}

	var g Grant
	for _, f := range capabilityFloors {
		if top.AtLeast(f.floor) {
			g = g.With(f.cap)
		}
	}
	return g
}

var nameSeparators = strings.NewReplacer("_", "", "-", "", " ", "")

func normalizeName(s string) string {
	return nameSeparators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name; unknown names become TierUnknown.
func (t *Tier) UnmarshalText(text []byte) error {
	*t = ParseTier(string(text))
	return nil
}
