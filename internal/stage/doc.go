// Package stage defines the contract each pipeline stage implements and the
// per-run Job the stages read from and write to.
package stage
