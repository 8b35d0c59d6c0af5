// Package summary holds the outcome of a summarization call.
package summary

// Kind tags the outcome of a summarization attempt.
type Kind string

const (
	// KindOK is a generated answer.
	KindOK Kind = "ok"
	// KindConfigError means no credential is configured; no call was made.
	KindConfigError Kind = "config_error"
	// KindParseError means candidates were returned without generated text.
	KindParseError Kind = "parse_error"
	// KindUnknownResponse means the response carried neither candidates nor an error.
	KindUnknownResponse Kind = "unknown_response"
	// KindAPIError means the provider answered with a structured error.
	KindAPIError Kind = "api_error"
	// KindTransportError means the call itself failed (network, timeout, decoding).
	KindTransportError Kind = "transport_error"
)

// User-facing texts for outcomes without a detail.
const (
	ConfigErrorText = "Error: The server is not configured with an API key. " +
		"Please set the GEMINI_API_KEY environment variable."
	ParseErrorText      = "Error: Could not parse Gemini response content."
	UnknownResponseText = "Error: Unknown response structure from Gemini."
)

// Result is a tagged summarization outcome.
type Result struct {
	kind   Kind
	text   string
	detail string
}

// OK wraps generated text.
func OK(text string) Result { return Result{kind: KindOK, text: text} }

// ConfigError reports a missing credential.
func ConfigError() Result { return Result{kind: KindConfigError} }

// ParseError reports candidates without generated text.
func ParseError() Result { return Result{kind: KindParseError} }

// UnknownResponse reports a response with neither candidates nor an error.
func UnknownResponse() Result { return Result{kind: KindUnknownResponse} }

// APIError reports a provider-side error message.
func APIError(message string) Result {
	if message == "" {
		message = "Unknown API error"
	}
	return Result{kind: KindAPIError, detail: message}
}

// TransportError reports a failed call.
func TransportError(err error) Result {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return Result{kind: KindTransportError, detail: detail}
}

// Kind returns the outcome tag.
func (r Result) Kind() Kind { return r.kind }

// Detail returns the provider or transport error description, if any.
func (r Result) Detail() string { return r.detail }

// IsOK reports whether the summary is a generated answer.
func (r Result) IsOK() bool { return r.kind == KindOK }

// Text renders the outcome as the string shown to the user.
func (r Result) Text() string {
	switch r.kind {
	case KindOK:
		return r.text
	case KindConfigError:
		return ConfigErrorText
	case KindParseError:
		return ParseErrorText
	case KindAPIError:
		return "Error from AI: " + r.detail
	case KindTransportError:
		return "Error connecting to AI: " + r.detail
	default:
		return UnknownResponseText
	}
}
