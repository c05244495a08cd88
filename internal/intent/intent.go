package intent

import "github.com/kaizlabs/kaizbot/internal/capability"

// Intent is the classified symbolic meaning of one inbound event. The
// variant set is closed: only types in this package implement it, so the
// dispatcher can switch exhaustively and new intents cannot be silently
// unhandled.
type Intent interface {
	isIntent()
	// Name is a short stable identifier used for logging and activity records.
	Name() string
}

// FreeformChat is plain conversation routed to the default AI model.
type FreeformChat struct{ Text string }

// AskModel is an explicit model command such as /gemini or /gpt.
type AskModel struct {
	Model  capability.ChatModel
	Prompt string
}

// DownloadSpotify requests a Spotify track download.
type DownloadSpotify struct{ URL string }

// DownloadTikTok requests a TikTok video download.
type DownloadTikTok struct{ URL string }

// DownloadInstagram requests an Instagram media download.
type DownloadInstagram struct{ URL string }

// SearchTikTok searches TikTok videos.
type SearchTikTok struct{ Query string }

// SearchWiki searches Wikipedia.
type SearchWiki struct{ Query string }

// RemoveBackground requests background removal for an image URL.
type RemoveBackground struct{ URL string }

// AnalyzeImage requests AI analysis of one inbound image.
type AnalyzeImage struct{ URL string }

// UnsupportedAttachment marks an attachment type the bot cannot handle.
type UnsupportedAttachment struct{ Kind string }

// ShowMainMenu, ShowHelp, ShowAIMenu and ShowMusicPrompt are menu
// navigation intents.
type (
	ShowMainMenu    struct{}
	ShowHelp        struct{}
	ShowAIMenu      struct{}
	ShowMusicPrompt struct{}
)

// ModelSelected acknowledges a model choice from the AI quick-reply menu.
type ModelSelected struct{ Model capability.ChatModel }

// GetStarted is the platform's conversation-start postback.
type GetStarted struct{}

// AcceptTerms and DeclineTerms are the two terms-response postbacks, the
// only intents a pending user may execute.
type (
	AcceptTerms  struct{}
	DeclineTerms struct{}
)

// UnknownCommand is a /-prefixed command the bot does not know.
type UnknownCommand struct{ Command string }

// MissingArgument is a known command invoked without its required argument.
type MissingArgument struct {
	Command string
	Usage   string
}

func (FreeformChat) isIntent()          {}
func (AskModel) isIntent()              {}
func (DownloadSpotify) isIntent()       {}
func (DownloadTikTok) isIntent()        {}
func (DownloadInstagram) isIntent()     {}
func (SearchTikTok) isIntent()          {}
func (SearchWiki) isIntent()            {}
func (RemoveBackground) isIntent()      {}
func (AnalyzeImage) isIntent()          {}
func (UnsupportedAttachment) isIntent() {}
func (ShowMainMenu) isIntent()          {}
func (ShowHelp) isIntent()              {}
func (ShowAIMenu) isIntent()            {}
func (ShowMusicPrompt) isIntent()       {}
func (ModelSelected) isIntent()         {}
func (GetStarted) isIntent()            {}
func (AcceptTerms) isIntent()           {}
func (DeclineTerms) isIntent()          {}
func (UnknownCommand) isIntent()        {}
func (MissingArgument) isIntent()       {}

func (FreeformChat) Name() string          { return "freeform_chat" }
func (AskModel) Name() string              { return "ask_model" }
func (DownloadSpotify) Name() string       { return "download_spotify" }
func (DownloadTikTok) Name() string        { return "download_tiktok" }
func (DownloadInstagram) Name() string     { return "download_instagram" }
func (SearchTikTok) Name() string          { return "search_tiktok" }
func (SearchWiki) Name() string            { return "search_wiki" }
func (RemoveBackground) Name() string      { return "remove_background" }
func (AnalyzeImage) Name() string          { return "analyze_image" }
func (UnsupportedAttachment) Name() string { return "unsupported_attachment" }
func (ShowMainMenu) Name() string          { return "show_main_menu" }
func (ShowHelp) Name() string              { return "show_help" }
func (ShowAIMenu) Name() string            { return "show_ai_menu" }
func (ShowMusicPrompt) Name() string       { return "show_music_prompt" }
func (ModelSelected) Name() string         { return "model_selected" }
func (GetStarted) Name() string            { return "get_started" }
func (AcceptTerms) Name() string           { return "accept_terms" }
func (DeclineTerms) Name() string          { return "decline_terms" }
func (UnknownCommand) Name() string        { return "unknown_command" }
func (MissingArgument) Name() string       { return "missing_argument" }
