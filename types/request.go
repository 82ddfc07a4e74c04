//nolint:revive // types is a common Go package naming convention
package types

import "context"

// Action is the request discriminator carried in the "action" field.
type Action string

// Action constants. Values are lowercase snake_case on the wire.
const (
	ActionSave Action = "save"
	ActionPing Action = "ping"
)

// RequestVisitor handles every request variant.
// Adding a variant adds a method here, so each implementation stops
// compiling until it handles the new request kind.
type RequestVisitor interface {
	VisitSave(ctx context.Context, req *SaveRequest) Response
	VisitPing(ctx context.Context, req *PingRequest) Response
}

// Request is the closed set of requests accepted by the host.
// The unexported method seals the set to this package.
type Request interface {
	// Action returns the wire discriminator for the request.
	Action() Action
	// Accept routes the request to the matching visitor method.
	Accept(ctx context.Context, v RequestVisitor) Response

	isRequest()
}

// SaveRequest asks the host to write Content to the absolute Path.
type SaveRequest struct {
	// Path is the target file path. Must be absolute.
	Path string `json:"path"`
	// Content is written verbatim as the full file contents.
	Content string `json:"content"`
}

// Action implements Request.
func (*SaveRequest) Action() Action { return ActionSave }

// Accept implements Request.
func (r *SaveRequest) Accept(ctx context.Context, v RequestVisitor) Response {
	return v.VisitSave(ctx, r)
}

func (*SaveRequest) isRequest() {}

// PingRequest is a liveness check. It carries no data.
type PingRequest struct{}

// Action implements Request.
func (*PingRequest) Action() Action { return ActionPing }

// Accept implements Request.
func (r *PingRequest) Accept(ctx context.Context, v RequestVisitor) Response {
	return v.VisitPing(ctx, r)
}

func (*PingRequest) isRequest() {}
