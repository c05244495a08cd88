package dispatch

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/activity"
	"github.com/kaizlabs/kaizbot/internal/capability"
	"github.com/kaizlabs/kaizbot/internal/intent"
	"github.com/kaizlabs/kaizbot/internal/reply"
)

// handleIntent routes one classified intent for an active user. The switch is
// exhaustive over the intent variants; returned errors are delivery failures
// only, everything else is handled in place.
func (e *Engine) handleIntent(ctx context.Context, userID string, it intent.Intent) (activity.Outcome, error) {
	switch v := it.(type) {
	case intent.FreeformChat:
		return e.chat(ctx, userID, capability.ModelKaiz, v.Text)

	case intent.AskModel:
		return e.chat(ctx, userID, v.Model, v.Prompt)

	case intent.DownloadSpotify:
		if !validURL(v.URL, "spotify.com") {
			return e.validationReply(ctx, userID, "not a spotify url", reply.InvalidURLNotice("Spotify"))
		}
		res, err := e.caps.Download(ctx, capability.ServiceSpotify, v.URL)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "the Spotify downloader", err)
		}
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.SpotifyResult(res))

	case intent.DownloadTikTok:
		if !validURL(v.URL, "tiktok.com") {
			return e.validationReply(ctx, userID, "not a tiktok url", reply.InvalidURLNotice("TikTok"))
		}
		res, err := e.caps.Download(ctx, capability.ServiceTikTok, v.URL)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "the TikTok downloader", err)
		}
		return activity.OutcomeOK, e.sendAll(ctx, userID, reply.VideoResult(res, "TikTok"))

	case intent.DownloadInstagram:
		if !validURL(v.URL, "instagram.com") {
			return e.validationReply(ctx, userID, "not an instagram url", reply.InvalidURLNotice("Instagram"))
		}
		res, err := e.caps.Download(ctx, capability.ServiceInstagram, v.URL)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "the Instagram downloader", err)
		}
		return activity.OutcomeOK, e.sendAll(ctx, userID, reply.VideoResult(res, "Instagram"))

	case intent.SearchTikTok:
		res, err := e.caps.SearchTikTok(ctx, v.Query)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "TikTok search", err)
		}
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.TikSearchResults(v.Query, res))

	case intent.SearchWiki:
		res, err := e.caps.SearchWiki(ctx, v.Query)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "Wikipedia search", err)
		}
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.WikiResult(v.Query, res))

	case intent.RemoveBackground:
		if !strings.Contains(v.URL, "http") {
			return e.validationReply(ctx, userID, "not an image url", reply.InvalidURLNotice("image"))
		}
		res, err := e.caps.RemoveBackground(ctx, v.URL)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "background removal", err)
		}
		return activity.OutcomeOK, e.sendAll(ctx, userID, reply.RemoveBackgroundResult(res))

	case intent.AnalyzeImage:
		if err := e.sender.Send(ctx, userID, reply.AnalyzingImageNotice()); err != nil {
			return activity.OutcomeDelivery, err
		}
		res, err := e.caps.AnalyzeImage(ctx, v.URL, userID)
		if err != nil {
			return e.capabilityFailure(ctx, userID, "image analysis", err)
		}
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.ImageAnalysis(res))

	case intent.UnsupportedAttachment:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.UnsupportedAttachmentNotice())

	case intent.ShowMainMenu:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.MainMenu())

	case intent.ShowHelp:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.HelpMenu())

	case intent.ShowAIMenu:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.AIMenu())

	case intent.ShowMusicPrompt:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.MusicPrompt())

	case intent.ModelSelected:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.ModelReady(v.Model))

	case intent.GetStarted:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.Welcome())

	case intent.AcceptTerms:
		// An already-active user pressed the accept button again; re-run the
		// accept flow, which re-sends the confirmation and welcome pair.
		return activity.OutcomeOK, e.acceptTerms(ctx, userID, func() {})

	case intent.DeclineTerms:
		return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.DeclineNotice())

	case intent.UnknownCommand:
		return activity.OutcomeValidation, e.sender.Send(ctx, userID, reply.UnknownCommandNotice())

	case intent.MissingArgument:
		return activity.OutcomeValidation, e.sender.Send(ctx, userID, reply.MissingArgumentNotice(v.Usage))

	default:
		e.log.Warn("unhandled intent", zap.String("intent", it.Name()), zap.String("user", userID))
		return activity.OutcomeOK, nil
	}
}

// chat routes a prompt to a chat model and sends the formatted response.
func (e *Engine) chat(ctx context.Context, userID string, model capability.ChatModel, prompt string) (activity.Outcome, error) {
	res, err := e.caps.Chat(ctx, model, prompt, userID)
	if err != nil {
		return e.capabilityFailure(ctx, userID, reply.ModelLabel(model), err)
	}
	return activity.OutcomeOK, e.sender.Send(ctx, userID, reply.ChatReply(model, res))
}

// validationReply sends the local recovery message for a failed argument
// check. No capability is invoked.
func (e *Engine) validationReply(ctx context.Context, userID, reason string, msg reply.Message) (activity.Outcome, error) {
	e.log.Debug("argument rejected",
		zap.String("user", userID),
		zap.Error(&ValidationError{Reason: reason}))
	return activity.OutcomeValidation, e.sender.Send(ctx, userID, msg)
}

// capabilityFailure logs the underlying capability error and sends the
// user-facing apology. The error itself never reaches the user.
func (e *Engine) capabilityFailure(ctx context.Context, userID, feature string, err error) (activity.Outcome, error) {
	e.log.Error("capability failed",
		zap.String("user", userID),
		zap.String("feature", feature),
		zap.Error(err))
	return activity.OutcomeCapability, e.sender.Send(ctx, userID, reply.CapabilityApology(feature))
}

// sendAll delivers a multi-part reply in order, stopping at the first
// delivery failure.
func (e *Engine) sendAll(ctx context.Context, userID string, msgs []reply.Message) error {
	for _, msg := range msgs {
		if err := e.sender.Send(ctx, userID, msg); err != nil {
			return err
		}
	}
	return nil
}

// validURL is the cheap pre-flight domain check applied before a download
// capability is invoked.
func validURL(raw, domain string) bool {
	return strings.Contains(raw, domain)
}
