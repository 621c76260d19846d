//go:build fulcrum_debug

package assert

import "fmt"

const Enabled = true

// That panics with the formatted message when cond is false
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("fulcrum: "+format, args...))
	}
}
