package transport

import "fmt"

// Kind classifies the outcome of a single exchange.
type Kind uint8

const (
	// KindNoResponse: nothing came back (DNS, dial, canceled context).
	KindNoResponse Kind = iota + 1
	// KindJSON: a status line and a body that parsed as JSON.
	KindJSON
	// KindNonJSON: a status line and a body that did not parse as JSON.
	KindNonJSON
)

func (k Kind) String() string {
	switch k {
	case KindNoResponse:
		return "no response"
	case KindJSON:
		return "json response"
	case KindNonJSON:
		return "non json response"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Response is the classified outcome of Send. HTTP error statuses are
// ordinary JSON or non-JSON responses; only pre-response failures are
// KindNoResponse.
type Response struct {
	Kind Kind
	// Reason is set for KindNoResponse.
	Reason string
	Status int
	// Body is the decoded JSON for KindJSON. An empty or blank body decodes
	// to the empty string.
	Body any
	// Raw is the undecoded body for KindNonJSON.
	Raw string
}

func NoResponse(reason string) Response {
	return Response{Kind: KindNoResponse, Reason: reason}
}

func JSONResponse(status int, body any) Response {
	return Response{Kind: KindJSON, Status: status, Body: body}
}

func NonJSONResponse(status int, raw string) Response {
	return Response{Kind: KindNonJSON, Status: status, Raw: raw}
}

// Is2xx reports a JSON or non-JSON response with a success status.
func (r Response) Is2xx() bool {
	return r.Kind != KindNoResponse && r.Status/100 == 2
}

// Describe renders the response as a loggable map, keyed the way the
// server's own diagnostics are.
func (r Response) Describe() map[string]any {
	out := map[string]any{"type": r.Kind.String()}
	switch r.Kind {
	case KindNoResponse:
		out["reason"] = r.Reason
	case KindJSON:
		out["status"] = r.Status
		out["response"] = r.Body
	case KindNonJSON:
		out["status"] = r.Status
		out["response"] = r.Raw
	}
	return out
}
