package models

// Result is a two-case outcome: a success value or an error.
// State modules receive adapter completions as Results.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result. A nil err is replaced by an unknown
// DataError so that a failed Result never looks successful.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = NewDataError(CodeUnknown, "")
	}
	return Result[T]{err: err}
}

// ResultOf converts a (value, error) pair into a Result.
func ResultOf[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the Result carries a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Get returns the value and error.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Err returns the error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}
