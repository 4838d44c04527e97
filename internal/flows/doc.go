// Package flows contains pure-function orchestrators for the Engine's
// session and authorization operations.
//
// Each flow function (RunAuthorize, RunValidateSession, RunLogoutByToken,
// etc.) accepts a typed dependency struct and returns a result value. The
// Engine turns results into metrics, audit events and log lines; flows never
// do that themselves.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the session store, the token verifier
// and the account store. They do NOT own any of these resources; ownership
// stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGate (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency interfaces.
package flows
