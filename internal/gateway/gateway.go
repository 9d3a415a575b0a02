// Package gateway defines the agent responder contract: given an agent id
// and an input string, produce a reply on the agent's behalf. The core
// treats the responder as a black box; callers enforce their own timeout and
// substitute a fallback reply on failure.
package gateway

import "context"

// Responder produces a reply for an agent. Implementations should honor ctx
// cancellation; callers bound every call with a deadline.
type Responder interface {
	Respond(ctx context.Context, agentID, input, callerID string) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, agentID, input, callerID string) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, agentID, input, callerID string) (string, error) {
	return f(ctx, agentID, input, callerID)
}
