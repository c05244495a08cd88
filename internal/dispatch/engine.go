package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/activity"
	"github.com/kaizlabs/kaizbot/internal/capability"
	"github.com/kaizlabs/kaizbot/internal/intent"
	"github.com/kaizlabs/kaizbot/internal/reply"
	"github.com/kaizlabs/kaizbot/internal/session"
)

// Sender delivers outbound messages. Implemented by messenger.Client.
type Sender interface {
	Send(ctx context.Context, recipientID string, msg reply.Message) error
	Typing(ctx context.Context, recipientID string, on bool) error
}

// Engine is the message dispatch state machine. Given one inbound event it
// resolves the sender's registration state, routes the classified intent to
// a handler, and owns every side effect: gating prompts, capability
// invocations, reply sends, and session transitions.
type Engine struct {
	sessions     *session.Store
	caps         capability.Registry
	sender       Sender
	hub          *activity.Hub // may be nil
	log          *zap.Logger
	welcomeDelay time.Duration
}

// NewEngine wires the dispatch engine. hub may be nil to disable the
// activity feed.
func NewEngine(sessions *session.Store, caps capability.Registry, sender Sender, hub *activity.Hub, log *zap.Logger) *Engine {
	return &Engine{
		sessions:     sessions,
		caps:         caps,
		sender:       sender,
		hub:          hub,
		log:          log,
		welcomeDelay: 2 * time.Second,
	}
}

// SetWelcomeDelay adjusts the pause between the registration confirmation
// and the welcome message. Ordering (confirmation first) is guaranteed
// regardless of the delay; tests set it to zero.
func (e *Engine) SetWelcomeDelay(d time.Duration) {
	e.welcomeDelay = d
}

// HandleEvent processes one inbound event to completion. The returned error
// is always a delivery failure; validation and capability errors are
// recovered internally and the event still completes.
func (e *Engine) HandleEvent(ctx context.Context, ev intent.Event) error {
	start := time.Now()
	intents := intent.Classify(ev)
	first := intents[0]

	// The per-user guard makes the read-decide-transition sequence atomic:
	// two concurrent events for one user cannot both observe the same
	// pre-state. Capability calls and sends happen after release.
	release := e.sessions.Guard(ev.SenderID)

	user, isNew := e.sessions.GetOrCreate(ev.SenderID)
	if isNew {
		release()
		// First contact: the triggering intent is discarded, the user only
		// gets the terms prompt.
		e.log.Info("new user registered",
			zap.String("user", user.ID),
			zap.String("reference_code", user.ReferenceCode))
		err := e.sender.Send(ctx, user.ID, reply.TermsPrompt(user.DisplayName, user.ReferenceCode))
		e.publish(ev, first, outcomeFor(err, activity.OutcomeRegistered), start)
		return err
	}

	if !user.Accepted {
		switch first.(type) {
		case intent.AcceptTerms:
			err := e.acceptTerms(ctx, user.ID, release)
			e.publish(ev, first, outcomeFor(err, activity.OutcomeRegistered), start)
			return err
		case intent.DeclineTerms:
			release()
			err := e.sender.Send(ctx, user.ID, reply.DeclineNotice())
			e.publish(ev, first, outcomeFor(err, activity.OutcomeGated), start)
			return err
		default:
			release()
			// Gated: one notice, intent discarded, no capability call.
			err := e.sender.Send(ctx, user.ID, reply.GatingNotice(user.ReferenceCode))
			e.publish(ev, first, outcomeFor(err, activity.OutcomeGated), start)
			return err
		}
	}
	release()

	// Typing indicators wrap text-triggered dispatches only; postbacks and
	// quick replies reply without them.
	typing := ev.Kind == intent.KindText
	if typing {
		if err := e.sender.Typing(ctx, user.ID, true); err != nil {
			e.log.Warn("typing indicator failed", zap.String("user", user.ID), zap.Error(err))
		}
	}

	outcome := activity.OutcomeOK
	var deliveryErr error
	for _, it := range intents {
		o, err := e.handleIntent(ctx, user.ID, it)
		if o != activity.OutcomeOK {
			outcome = o
		}
		if err != nil {
			deliveryErr = err
			outcome = activity.OutcomeDelivery
			break
		}
	}

	if typing {
		if err := e.sender.Typing(ctx, user.ID, false); err != nil {
			e.log.Warn("typing indicator failed", zap.String("user", user.ID), zap.Error(err))
		}
	}

	e.publish(ev, first, outcome, start)
	return deliveryErr
}

// acceptTerms performs the pending->active transition and sends the
// confirmation + welcome pair. A repeat acceptance re-sends the pair; the
// transition itself is idempotent. This mirrors the platform bot's observed
// behavior and is intentional.
func (e *Engine) acceptTerms(ctx context.Context, userID string, release func()) error {
	user, err := e.sessions.AcceptTerms(userID)
	release()
	if err != nil {
		// The user vanished between gating and transition. No-op.
		e.log.Warn("accept terms state error",
			zap.Error(&StateError{Op: "accept_terms", UserID: userID, Cause: err}))
		return nil
	}

	if err := e.sender.Send(ctx, userID, reply.RegistrationConfirmed(user.ReferenceCode)); err != nil {
		return err
	}
	if e.welcomeDelay > 0 {
		select {
		case <-time.After(e.welcomeDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return e.sender.Send(ctx, userID, reply.Welcome())
}

// NotifyRegistrationComplete sends the one-time welcome notification after
// an out-of-band registration completion. Called by the registration
// surface, not by event dispatch.
func (e *Engine) NotifyRegistrationComplete(ctx context.Context, user session.User) error {
	msg := reply.Text{Text: "🎊 Your registration is now fully complete. Enjoy the bot, " + user.DisplayName + "!"}
	return e.sender.Send(ctx, user.ID, msg)
}

// Sessions exposes the session store for the registration surface.
func (e *Engine) Sessions() *session.Store { return e.sessions }

func (e *Engine) publish(ev intent.Event, it intent.Intent, outcome activity.Outcome, start time.Time) {
	if e.hub == nil {
		return
	}
	e.hub.Publish(activity.Record{
		UserID:   ev.SenderID,
		Intent:   it.Name(),
		Outcome:  outcome,
		Duration: time.Since(start),
	})
}

func outcomeFor(err error, ok activity.Outcome) activity.Outcome {
	if err != nil {
		return activity.OutcomeDelivery
	}
	return ok
}
