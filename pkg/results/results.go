// Package results separates domain failures from infrastructure errors.
//
// A service returns (OperationResult, error). A non-nil error means the
// operation could not run (database down, panic) and the message should be
// retried. A Failure means it ran and the request was refused; the caller
// publishes the failure and moves on.
package results

// OperationResult holds exactly one of Success or Failure.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a failure payload.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// Map converts the success payload, leaving a failure untouched.
func Map[S any, F any, T any](r OperationResult[S, F], fn func(S) T) OperationResult[T, F] {
	out := OperationResult[T, F]{Failure: r.Failure}
	if r.Success != nil {
		t := fn(*r.Success)
		out.Success = &t
	}
	return out
}
