package models

// Response is the envelope returned by every wallet API operation. A successful
// response always carries Data; a failed one always carries Error and never Data.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a successful response.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: &data}
}

// Fail builds a failed response carrying message.
func Fail[T any](message string) Response[T] {
	return Response[T]{Success: false, Error: message}
}

// Value returns the payload and whether the response succeeded.
func (r Response[T]) Value() (T, bool) {
	if !r.Success || r.Data == nil {
		var zero T
		return zero, false
	}
	return *r.Data, true
}
