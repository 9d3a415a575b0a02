// Package dispatch drives agent command invocations through their
// lifecycle: received, logged (command message + activity recorded),
// dispatched (agent set busy, responder call started), settled (response
// recorded, status restored). Settled is the only terminal state; responder
// failures are masked into a fallback reply so the transcript always shows
// a response.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/gateway"
	"github.com/FerryF19999/chatinterface/internal/metrics"
	"github.com/FerryF19999/chatinterface/internal/models"
	"github.com/FerryF19999/chatinterface/internal/store"
)

// DefaultTimeout bounds how long a responder call may run before the
// fallback reply is substituted. The bound is required: the busy status set
// at dispatch must eventually be undone.
const DefaultTimeout = 120 * time.Second

// FallbackReply is posted on the agent's behalf when the responder fails or
// times out.
const FallbackReply = "I'm having trouble connecting right now. Please try again in a moment."

// Dispatcher coordinates command invocations against the store and the
// agent responder gateway.
type Dispatcher struct {
	store     *store.Store
	responder gateway.Responder
	timeout   time.Duration
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// New creates a Dispatcher. A non-positive timeout falls back to
// DefaultTimeout.
func New(st *store.Store, responder gateway.Responder, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		store:     st,
		responder: responder,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch runs a command against an agent on behalf of any participant.
// It returns the id of the recorded command message immediately; settlement
// is asynchronous and observed via fan-out.
func (d *Dispatcher) Dispatch(ctx context.Context, agentID, command, callerID string) (string, error) {
	return d.dispatch(ctx, agentID, command, callerID, models.KindCommand)
}

// DispatchOwner is the owner-only variant. A non-owner caller is rejected
// with ErrForbidden before anything is recorded.
func (d *Dispatcher) DispatchOwner(ctx context.Context, agentID, command, ownerID string) (string, error) {
	caller, err := d.store.Participant(ownerID)
	if err != nil {
		return "", err
	}
	if !caller.IsOwner() {
		return "", fmt.Errorf("caller %q: %w", ownerID, store.ErrForbidden)
	}
	return d.dispatch(ctx, agentID, command, ownerID, models.KindOwnerCall)
}

func (d *Dispatcher) dispatch(ctx context.Context, agentID, command, callerID string, kind models.MessageKind) (string, error) {
	caller, err := d.store.Participant(callerID)
	if err != nil {
		return "", err
	}
	agent, err := d.store.Participant(agentID)
	if err != nil {
		return "", err
	}
	if agent.Role != models.RoleAgent {
		return "", fmt.Errorf("agent %q: %w", agentID, store.ErrNotFound)
	}

	// Logged: the command enters the transcript and the audit log.
	msg, err := d.store.PostMessage(callerID, agentID, command, kind)
	if err != nil {
		return "", err
	}
	meta := map[string]string{
		models.MetaMessageID: msg.ID,
		models.MetaCommand:   command,
	}
	if kind == models.KindOwnerCall {
		meta[models.MetaOwnerCall] = "true"
	}
	if _, err := d.store.RecordActivity(callerID, models.ActivityCommand,
		fmt.Sprintf("%s issued a command to %s", caller.Name, agent.Name), meta); err != nil {
		return "", err
	}

	// Dispatched: the agent goes busy until the call settles.
	priorStatus, priorTask := agent.Status, agent.CurrentTask
	task := fmt.Sprintf("%s: %s", caller.Name, command)
	if _, err := d.store.SetStatus(agentID, models.StatusBusy, &task); err != nil {
		return "", err
	}

	metrics.CommandsDispatched.WithLabelValues(string(kind)).Inc()
	d.logger.Info().
		Str("agent", agentID).
		Str("caller", callerID).
		Str("kind", string(kind)).
		Str("command_message_id", msg.ID).
		Msg("command dispatched")

	d.wg.Add(1)
	go d.settle(agentID, command, callerID, priorStatus, priorTask)

	return msg.ID, nil
}

// settle awaits the responder and applies exactly one of the success path
// or the fallback path, then restores the agent's prior status and task.
func (d *Dispatcher) settle(agentID, command, callerID string, priorStatus models.Status, priorTask string) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	reply, err := d.responder.Respond(ctx, agentID, command, callerID)
	metrics.GatewayDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.GatewayFailures.WithLabelValues(reason).Inc()
		d.logger.Warn().
			Err(err).
			Str("agent", agentID).
			Str("reason", reason).
			Msg("responder failed, using fallback reply")
		reply = FallbackReply
	}

	if _, err := d.store.PostMessage(agentID, callerID, reply, models.KindAgentResponse); err != nil {
		d.logger.Error().Err(err).Str("agent", agentID).Msg("failed to record agent response")
	}
	if _, err := d.store.Restore(agentID, priorStatus, priorTask); err != nil {
		d.logger.Error().Err(err).Str("agent", agentID).Msg("failed to restore agent status")
	}

	d.logger.Info().Str("agent", agentID).Str("caller", callerID).Msg("command settled")
}

// Wait blocks until all in-flight dispatches have settled. Used during
// shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
