// Package dataset loads the launch records CSV once at startup and exposes it
// as an immutable Dataset shared read-only by every chart computation.
//
// Load(path, cols) fails when the file is missing, a required column is absent,
// a value cannot be parsed, a class is outside {0, 1}, a payload is negative or
// the file holds no data rows. These are startup-fatal: the server does not
// start without a dataset.
//
// The Dataset carries the derived payload bounds (MinPayload, MaxPayload) and
// the known site set in order of first appearance.
package dataset
