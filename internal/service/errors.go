package service

// modelNotAvailableError covers both "never configured" and "configured
// but failed to load". The two causes surface identically to clients so
// load-failure detail does not leak; logs carry the distinction.
type modelNotAvailableError struct{ id string }

func (e modelNotAvailableError) Error() string { return "model not available: " + e.id }

// ErrModelNotAvailable constructs the client-facing unavailable-model error.
func ErrModelNotAvailable(id string) error { return modelNotAvailableError{id: id} }

// IsModelNotAvailable reports whether err indicates a missing or
// failed-to-load model (return 400).
func IsModelNotAvailable(err error) bool {
	_, ok := err.(modelNotAvailableError)
	return ok
}

// inferenceError signals that the encode call itself failed (return 500).
type inferenceError struct {
	id    string
	cause error
}

func (e inferenceError) Error() string { return "inference failed for model " + e.id }

func (e inferenceError) Unwrap() error { return e.cause }

// ErrInference constructs the client-facing failed-inference error.
func ErrInference(id string, cause error) error { return inferenceError{id: id, cause: cause} }

// IsInferenceError reports whether err came from a failed encode call.
func IsInferenceError(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}
