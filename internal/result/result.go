// Package result provides Result, a two-variant value holding either a
// successful payload or a failure reason.
//
// The data-access layer returns Result from every fallible operation instead
// of panicking, so callers can fold both outcomes with Match or chain further
// steps with Map and Then.
package result

import (
	"fmt"

	"github.com/goccy/go-json"
)

type tag uint8

const (
	tagFailure tag = iota
	tagSuccess
)

// Result holds exactly one of a success value of type T or a failure of type E.
// Build it with Success or Failure; a Result is never modified after construction.
type Result[T, E any] struct {
	tag   tag
	value T
	err   E
}

// Success wraps v as a successful Result.
func Success[T, E any](v T) Result[T, E] {
	return Result[T, E]{tag: tagSuccess, value: v}
}

// Failure wraps e as a failed Result.
func Failure[T, E any](e E) Result[T, E] {
	return Result[T, E]{tag: tagFailure, err: e}
}

// Failuref is a shorthand for string failures built with fmt.Sprintf.
func Failuref[T any](format string, args ...any) Result[T, string] {
	return Failure[T](fmt.Sprintf(format, args...))
}

func (r Result[T, E]) IsSuccess() bool { return r.tag == tagSuccess }

func (r Result[T, E]) IsError() bool { return r.tag == tagFailure }

// Value returns the success payload, or the zero T for a failure.
func (r Result[T, E]) Value() T { return r.value }

// Error returns the failure payload, or the zero E for a success.
func (r Result[T, E]) Error() E { return r.err }

// Get unpacks r in the comma-ok style.
func (r Result[T, E]) Get() (T, E, bool) {
	return r.value, r.err, r.IsSuccess()
}

// String renders the active payload. Strings are returned verbatim, anything
// else is JSON encoded.
func (r Result[T, E]) String() string {
	var v any = r.err
	if r.IsSuccess() {
		v = r.value
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Map transforms the success payload. Failures pass through untouched.
func Map[T, R, E any](r Result[T, E], f func(T) R) Result[R, E] {
	if r.IsError() {
		return Failure[R](r.err)
	}
	return Success[R, E](f(r.value))
}

// MapError transforms the failure payload. Successes pass through untouched.
func MapError[T, E, F any](r Result[T, E], f func(E) F) Result[T, F] {
	if r.IsSuccess() {
		return Success[T, F](r.value)
	}
	return Failure[T](f(r.err))
}

// Then runs the next fallible step on success.
func Then[T, R, E any](r Result[T, E], f func(T) Result[R, E]) Result[R, E] {
	if r.IsError() {
		return Failure[R](r.err)
	}
	return f(r.value)
}

// Match folds r into a single value.
func Match[T, E, R any](r Result[T, E], onSuccess func(T) R, onError func(E) R) R {
	if r.IsSuccess() {
		return onSuccess(r.value)
	}
	return onError(r.err)
}
