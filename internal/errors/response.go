package errors

// Meta carries the outcome of a request in the uniform envelope.
type Meta struct {
	OK      bool         `json:"ok"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError reports a single request-validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the envelope returned by every endpoint.
type Response struct {
	Meta    Meta        `json:"meta"`
	ResData interface{} `json:"resData,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data interface{}) Response {
	return Response{Meta: Meta{OK: true, Message: message}, ResData: data}
}

// Fail builds a failure envelope.
func Fail(message string, fieldErrors ...FieldError) Response {
	return Response{Meta: Meta{OK: false, Message: message, Errors: fieldErrors}}
}
