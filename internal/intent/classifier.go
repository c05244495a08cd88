package intent

import (
	"regexp"
	"strings"

	"github.com/kaizlabs/kaizbot/internal/capability"
)

// URL extraction patterns for the known link domains. Matching is attempted
// against the original-case text.
var (
	spotifyURLPattern   = regexp.MustCompile(`https?://(?:open\.)?spotify\.com/\S+`)
	tiktokURLPattern    = regexp.MustCompile(`https?://(?:(?:vm|vt|www)\.)?tiktok\.com/\S+`)
	instagramURLPattern = regexp.MustCompile(`https?://(?:www\.)?instagram\.com/\S+`)
)

// commandUsage names an example invocation per argument-taking command.
var commandUsage = map[string]string{
	"ai":        "/ai Hello, how are you?",
	"kaiz":      "/ai Hello, how are you?",
	"gemini":    "/gemini Explain quantum computing",
	"gpt":       "/gpt Write a haiku about the sea",
	"deepseek":  "/deepseek Solve this riddle",
	"llama":     "/llama Tell me a joke",
	"spotify":   "/spotify https://open.spotify.com/track/...",
	"tiktok":    "/tiktok https://vm.tiktok.com/...",
	"instagram": "/instagram https://www.instagram.com/reel/...",
	"tiksearch": "/tiksearch funny cat videos",
	"wiki":      "/wiki Alan Turing",
	"removebg":  "/removebg https://example.com/photo.jpg",
}

// Classify maps one normalized inbound event to its intents. Every event
// yields at least one intent; only multi-attachment events yield more than
// one (one per attachment, in order).
func Classify(ev Event) []Intent {
	switch ev.Kind {
	case KindText:
		return []Intent{classifyText(ev.Text)}
	case KindQuickReply:
		return []Intent{classifyQuickReply(ev.Payload)}
	case KindPostback:
		return []Intent{classifyPostback(ev.Payload)}
	case KindAttachments:
		return classifyAttachments(ev.Attachments)
	default:
		return []Intent{ShowMainMenu{}}
	}
}

func classifyText(text string) Intent {
	original := strings.TrimSpace(text)
	lower := strings.ToLower(original)

	if strings.HasPrefix(lower, "/") {
		return classifyCommand(original)
	}

	switch lower {
	case "menu", "start":
		return ShowMainMenu{}
	case "help":
		return ShowHelp{}
	}

	// Link-domain matching. If a keyword is present but no URL substring
	// matches, the raw text passes through as the URL argument so the
	// handler's own validation produces the user-facing error.
	switch {
	case strings.Contains(lower, "spotify.com"):
		return DownloadSpotify{URL: extractURL(spotifyURLPattern, original)}
	case strings.Contains(lower, "tiktok.com"):
		return DownloadTikTok{URL: extractURL(tiktokURLPattern, original)}
	case strings.Contains(lower, "instagram.com"):
		return DownloadInstagram{URL: extractURL(instagramURLPattern, original)}
	}

	return FreeformChat{Text: original}
}

func classifyCommand(original string) Intent {
	word, remainder := original, ""
	if i := strings.IndexByte(original, ' '); i >= 0 {
		word = original[:i]
		remainder = strings.TrimSpace(original[i+1:])
	}
	cmd := strings.ToLower(strings.TrimPrefix(word, "/"))

	switch cmd {
	case "menu":
		return ShowMainMenu{}
	case "help":
		return ShowHelp{}
	}

	usage, known := commandUsage[cmd]
	if !known {
		return UnknownCommand{Command: "/" + cmd}
	}
	if remainder == "" {
		return MissingArgument{Command: "/" + cmd, Usage: usage}
	}

	switch cmd {
	case "ai", "kaiz":
		return AskModel{Model: capability.ModelKaiz, Prompt: remainder}
	case "gemini":
		return AskModel{Model: capability.ModelGemini, Prompt: remainder}
	case "gpt":
		return AskModel{Model: capability.ModelGPT, Prompt: remainder}
	case "deepseek":
		return AskModel{Model: capability.ModelDeepseek, Prompt: remainder}
	case "llama":
		return AskModel{Model: capability.ModelLlama, Prompt: remainder}
	case "spotify":
		return DownloadSpotify{URL: extractURL(spotifyURLPattern, remainder)}
	case "tiktok":
		return DownloadTikTok{URL: extractURL(tiktokURLPattern, remainder)}
	case "instagram":
		return DownloadInstagram{URL: extractURL(instagramURLPattern, remainder)}
	case "tiksearch":
		return SearchTikTok{Query: remainder}
	case "wiki":
		return SearchWiki{Query: remainder}
	case "removebg":
		return RemoveBackground{URL: remainder}
	}

	return UnknownCommand{Command: "/" + cmd}
}

// extractURL returns the first matching URL substring, or the raw text when
// no substring matches (defensive fallback; validation happens downstream).
func extractURL(pattern *regexp.Regexp, text string) string {
	if m := pattern.FindString(text); m != "" {
		return m
	}
	return text
}

func classifyQuickReply(payload string) Intent {
	switch payload {
	case "ai_chat", "kaiz_ai":
		return ModelSelected{Model: capability.ModelKaiz}
	case "gemini_pro":
		return ModelSelected{Model: capability.ModelGemini}
	case "gpt3":
		return ModelSelected{Model: capability.ModelGPT}
	case "deepseek_v3":
		return ModelSelected{Model: capability.ModelDeepseek}
	case "llama_3":
		return ModelSelected{Model: capability.ModelLlama}
	case "music":
		return ShowMusicPrompt{}
	case "menu":
		return ShowMainMenu{}
	case "help":
		return ShowHelp{}
	default:
		return ShowMainMenu{}
	}
}

func classifyPostback(payload string) Intent {
	switch payload {
	case "GET_STARTED":
		return GetStarted{}
	case "AI_CHAT_MENU":
		return ShowAIMenu{}
	case "MUSIC_MENU":
		return ShowMusicPrompt{}
	case "HELP_MENU":
		return ShowHelp{}
	case "ACCEPT_TERMS":
		return AcceptTerms{}
	case "DECLINE_TERMS":
		return DeclineTerms{}
	default:
		return ShowMainMenu{}
	}
}

func classifyAttachments(attachments []Attachment) []Intent {
	if len(attachments) == 0 {
		return []Intent{UnsupportedAttachment{Kind: "empty"}}
	}
	intents := make([]Intent, 0, len(attachments))
	for _, a := range attachments {
		if a.Type == "image" {
			intents = append(intents, AnalyzeImage{URL: a.URL})
		} else {
			intents = append(intents, UnsupportedAttachment{Kind: a.Type})
		}
	}
	return intents
}
