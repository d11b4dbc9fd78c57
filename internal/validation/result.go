// Package validation implements the input rule set shared by every surface
// that accepts user input: field validators with stable diagnostics, input
// sanitisation, and a form-level aggregator.
package validation

// Result is the outcome of running a validator: a pass/fail flag and, on
// failure, a human-readable diagnostic. Validators never panic or error out
// of band; every failure is encoded in the result.
type Result struct {
	OK      bool
	Message string
}

// Valid is the shared success result.
func Valid() Result { return Result{OK: true} }

// Invalid builds a failure result carrying the diagnostic message.
func Invalid(message string) Result { return Result{OK: false, Message: message} }

// Validator evaluates a single input string.
type Validator func(input string) Result

// All composes validators left to right, returning the first failure or
// success when every validator passes.
func All(validators ...Validator) Validator {
	return func(input string) Result {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if res := v(input); !res.OK {
				return res
			}
		}
		return Valid()
	}
}
