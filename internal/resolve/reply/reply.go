// Package reply classifies raw provider replies.
//
// Every provider call site funnels its raw HTTP outcome through Classify,
// supplying only an extractor for the payload it expects. The result is a
// Reply tagged with exactly one Kind.
package reply

import "fmt"

// Kind is the classification of a provider reply.
type Kind int

const (
	KindSuccess          Kind = iota // Well-formed, expected payload
	KindShapeMismatch                // Parsed, but not the expected payload
	KindThrottled                    // Soft rate limit
	KindGoverned                     // Hard quota or governance block
	KindTransportFailure             // Network or transport failure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindShapeMismatch:
		return "shape_mismatch"
	case KindThrottled:
		return "throttled"
	case KindGoverned:
		return "governed"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reply is a classified provider reply carrying a payload of type T on success.
type Reply[T any] struct {
	Kind    Kind
	Payload T
	Scope   string // only set for KindGoverned
	Detail  string
}

// OK reports whether the reply is a success.
func (r Reply[T]) OK() bool {
	return r.Kind == KindSuccess
}

// Err returns the reply as an error, or nil on success.
func (r Reply[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Kind: r.Kind, Scope: r.Scope, Detail: r.Detail}
}

func Success[T any](payload T) Reply[T] {
	return Reply[T]{Kind: KindSuccess, Payload: payload}
}

func ShapeMismatch[T any](detail string) Reply[T] {
	return Reply[T]{Kind: KindShapeMismatch, Detail: detail}
}

func Throttled[T any](detail string) Reply[T] {
	return Reply[T]{Kind: KindThrottled, Detail: detail}
}

func Governed[T any](scope, detail string) Reply[T] {
	return Reply[T]{Kind: KindGoverned, Scope: scope, Detail: detail}
}

func TransportFailure[T any](detail string) Reply[T] {
	return Reply[T]{Kind: KindTransportFailure, Detail: detail}
}

// Error is the error form of a non-success Reply.
type Error struct {
	Kind   Kind
	Scope  string
	Detail string
}

func (e *Error) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Scope, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
