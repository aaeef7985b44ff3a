package types

// SuccessEnvelope wraps every successful JSON body as {"data": ...}. The
// server writes SuccessEnvelope[any]; the API client decodes into the
// concrete payload type.
type SuccessEnvelope[T any] struct {
	Data T `json:"data"`
}

// APIError is the public part of a typed error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
