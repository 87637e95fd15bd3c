// Package recovery provides panic recovery for the conversion path.
// A malformed plan must surface as an error, not take the caller down.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns the zero value and an error carrying
// the panic message; the stack trace is logged.
//
// Example:
//
//	node, err := recovery.RecoverToValue(logger, "Convert", func() (plannode.Node, error) {
//	    return c.convertPlanRelations(plan)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()

			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(stack),
			)

			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
