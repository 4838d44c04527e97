package permission

// Role is an account role. The set is closed; unknown role strings parse
// to RoleGuest.
type Role uint8

const (
	RoleGuest Role = iota
	RoleFan
	RoleVipFan
	RoleBand
	RoleBenefiz
	RoleAdmin
	RoleModerator
)

var roleNames = map[Role]string{
	RoleGuest:     "guest",
	RoleFan:       "fan",
	RoleVipFan:    "vip_fan",
	RoleBand:      "band",
	RoleBenefiz:   "benefiz",
	RoleAdmin:     "admin",
	RoleModerator: "moderator",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "guest"
}

// ParseRole maps a stored role name to a Role. "VipFan", "vip-fan" and
// "vip_fan" are equivalent. Empty and unknown names yield RoleGuest.
func ParseRole(s string) Role {
	key := normalizeName(s)
	for r, name := range roleNames {
		if normalizeName(name) == key {
			return r
		}
	}
	return RoleGuest
}

// rolePolicy describes how one role is granted access.
type rolePolicy struct {
	baseline Grant
	// ticketed roles have their active tickets resolved on top of the baseline.
	ticketed bool
}

var (
	// publicGrant is what anyone may do without a ticket.
	publicGrant = GrantOf(CapConcert, CapPremium, CapComingSoon, CapTicketPurchase)

	// crewGrant is full operational access without preview or purchase rights.
	crewGrant = GrantOf(CapConcert, CapPremium, CapVIP, CapBackstage, CapStadiumArena, CapFullAccess)
)

// roleTable is the single source of role behaviour. Roles missing from the
// table, including RoleGuest and RoleModerator, fall back to guestPolicy.
var roleTable = map[Role]rolePolicy{
	RoleBenefiz: {baseline: crewGrant},
	RoleBand:    {baseline: crewGrant},
	RoleAdmin:   {baseline: crewGrant.With(CapComingSoon)},
	RoleFan:     {baseline: publicGrant, ticketed: true},
	RoleVipFan:  {baseline: publicGrant, ticketed: true},
}

var guestPolicy = rolePolicy{baseline: publicGrant}

func policyFor(r Role) rolePolicy {
	if p, ok := roleTable[r]; ok {
		return p
	}
	return guestPolicy
}

// Ticketed reports whether tickets held by an account with role r affect its grant.
func (r Role) Ticketed() bool {
	return policyFor(r).ticketed
}

// Baseline returns the grant r receives before any ticket is considered.
func (r Role) Baseline() Grant {
	return policyFor(r).baseline
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name; unknown names become RoleGuest.
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}
