// Package security grades hashing parameters against published baselines.
//
// Findings are advisory. The engine never refuses to run because of them; they
// are surfaced through Engine.SecurityReport and logged by the daemon at start.
package security
