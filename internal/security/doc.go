// Package security builds the posture report the engine exposes through
// Engine.SecurityReport.
//
// # What this package must NOT do
//
//   - Read configuration itself; the engine flattens it into ReportInput.
//   - Import goGate or any sibling internal package.
package security
