// Package jwt verifies bearer tokens minted by the platform's identity
// provider. A token names the account (sub) and the session (sid); the
// session itself is still checked against the session store.
//
// Only the configured algorithm is accepted, exp is required, and issuer,
// audience and kid are enforced when configured. In jwks mode keys come
// from the provider's key set endpoint, refreshed in the background, and
// only asymmetric algorithms are accepted.
package jwt
