package domain

// ResponseType classifies one message from the server's asynchronous
// operation stream.
type ResponseType int

const (
	// ResponseSuccess means the operation completed. Terminal.
	ResponseSuccess ResponseType = iota

	// ResponseError means the operation failed on the server. Terminal.
	ResponseError

	// ResponseWarning is an intermediate diagnostic; more responses
	// may follow.
	ResponseWarning

	// ResponseTimeout is synthesised by the client when no terminal
	// response arrived within the polling window. Terminal. The true
	// remote state is unknown, which is why it is reported distinctly
	// from ResponseError.
	ResponseTimeout
)

// Terminal reports whether no further responses follow this type.
func (t ResponseType) Terminal() bool {
	return t != ResponseWarning
}

// String returns the wire name of the response type.
func (t ResponseType) String() string {
	switch t {
	case ResponseSuccess:
		return "SUCCESS"
	case ResponseError:
		return "ERROR"
	case ResponseWarning:
		return "WARNING"
	case ResponseTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ParseResponseType maps a wire name to a ResponseType.
// Unrecognised names are treated as warnings so that an unknown
// intermediate message can never terminate a polling session.
func ParseResponseType(s string) ResponseType {
	switch s {
	case "SUCCESS":
		return ResponseSuccess
	case "ERROR":
		return ResponseError
	case "TIMEOUT":
		return ResponseTimeout
	default:
		return ResponseWarning
	}
}

// ServerResponse is one message from the asynchronous operation stream.
type ServerResponse struct {
	// Type classifies the message.
	Type ResponseType

	// Message is an optional human-readable detail.
	Message string
}
