//go:build !fulcrum_debug

// Package assert holds checks that only run in builds tagged fulcrum_debug.
// Release builds compile them to nothing and the caller degrades by clamping or skipping.
package assert

const Enabled = false

func That(bool, string, ...any) {}
