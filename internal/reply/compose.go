package reply

import (
	"fmt"
	"strings"

	"github.com/kaizlabs/kaizbot/internal/capability"
)

// maxButtonTextLen is the platform's documented limit for button template
// bodies. Exceeding it makes the outbound send fail, so truncation is a
// hard contract, not cosmetics.
const maxButtonTextLen = 640

const ellipsis = "..."

// TruncateButtonText enforces the 640-character button template body limit,
// truncating over-long text to 637 characters plus a 3-character marker.
func TruncateButtonText(s string) string {
	runes := []rune(s)
	if len(runes) <= maxButtonTextLen {
		return s
	}
	return string(runes[:maxButtonTextLen-len(ellipsis)]) + ellipsis
}

// modelLabels maps chat models to their user-facing names.
var modelLabels = map[capability.ChatModel]string{
	capability.ModelKaiz:     "🤖 KAIZ AI",
	capability.ModelGemini:   "🔮 Gemini Pro",
	capability.ModelGPT:      "💡 GPT-3",
	capability.ModelDeepseek: "🚀 DeepSeek V3",
	capability.ModelLlama:    "🦙 Llama 3",
}

// ModelLabel returns the user-facing name for a chat model.
func ModelLabel(model capability.ChatModel) string {
	if label, ok := modelLabels[model]; ok {
		return label
	}
	return string(model)
}

// TermsPrompt is the first message any new user receives. The triggering
// intent is discarded; the user must respond to this before anything else.
func TermsPrompt(displayName, referenceCode string) ButtonTemplate {
	text := fmt.Sprintf(`👋 Welcome, %s!

Before we start, please review and accept the terms of use. Your registration reference code is %s — you can also complete registration on our website using that code.

Do you accept the terms?`, displayName, referenceCode)

	return ButtonTemplate{
		Text: TruncateButtonText(text),
		Buttons: []Button{
			{Type: ButtonPostback, Title: "✅ Accept", Payload: "ACCEPT_TERMS"},
			{Type: ButtonPostback, Title: "❌ Decline", Payload: "DECLINE_TERMS"},
		},
	}
}

// GatingNotice reminds a pending user that the terms must be accepted first.
func GatingNotice(referenceCode string) Text {
	return Text{Text: fmt.Sprintf("🔒 Please accept the terms of use before using the bot. Your reference code is %s.", referenceCode)}
}

// DeclineNotice acknowledges a declined terms prompt.
func DeclineNotice() Text {
	return Text{Text: "😔 No problem. If you change your mind, just send any message and accept the terms to start using the bot."}
}

// RegistrationConfirmed acknowledges terms acceptance.
func RegistrationConfirmed(referenceCode string) Text {
	return Text{Text: fmt.Sprintf("✅ Registration confirmed! Your reference code is %s. Keep it handy — you can use it on our website to finish signing up.", referenceCode)}
}

// Welcome is the feature-overview message sent after registration.
func Welcome() QuickReplySet {
	text := `🎉 Welcome to KAIZ Bot! 🤖

I'm your intelligent assistant powered by multiple AI models. Here's what I can do:

🧠 AI Chat - Ask me anything!
🎵 Spotify Downloader - Download your favorite tracks
📱 TikTok & Instagram - Save videos and reels
🔍 Search - TikTok videos and Wikipedia
🖼️ Image Tools - Analysis and background removal

Type 'help' or 'menu' to see all available commands!`

	return QuickReplySet{
		Text: text,
		Options: []Option{
			{Title: "🤖 AI Chat", Payload: "ai_chat"},
			{Title: "🎵 Music", Payload: "music"},
			{Title: "📋 Menu", Payload: "menu"},
			{Title: "❓ Help", Payload: "help"},
		},
	}
}

// HelpMenu lists every command.
func HelpMenu() Text {
	return Text{Text: `📋 KAIZ Bot Commands:

🤖 AI Commands:
• /ai [message] - KAIZ AI response
• /gemini [message] - Gemini Pro response
• /gpt [message] - GPT-3 response
• /deepseek [message] - DeepSeek V3 response
• /llama [message] - Llama 3 response

🎵 Media Commands:
• /spotify [URL] - Download Spotify track
• /tiktok [URL] - Download TikTok video
• /instagram [URL] - Download Instagram media
• Or just send a link for quick download

🔍 Search Commands:
• /tiksearch [query] - Search TikTok videos
• /wiki [query] - Search Wikipedia

🖼️ Image Tools:
• Send any image for AI analysis
• /removebg [image URL] - Remove background

⚡ Quick Actions:
• Type 'menu' for quick options
• Type 'help' for this menu`}
}

// MainMenu is the top-level navigation template.
func MainMenu() ButtonTemplate {
	return ButtonTemplate{
		Text: "🎯 Choose an option:",
		Buttons: []Button{
			{Type: ButtonPostback, Title: "🤖 AI Chat", Payload: "AI_CHAT_MENU"},
			{Type: ButtonPostback, Title: "🎵 Music Downloader", Payload: "MUSIC_MENU"},
			{Type: ButtonPostback, Title: "❓ Help & Info", Payload: "HELP_MENU"},
		},
	}
}

// AIMenu offers the model selection quick replies.
func AIMenu() QuickReplySet {
	return QuickReplySet{
		Text: "🧠 Choose your AI model:",
		Options: []Option{
			{Title: "🤖 KAIZ AI", Payload: "kaiz_ai"},
			{Title: "🔮 Gemini Pro", Payload: "gemini_pro"},
			{Title: "💡 GPT-3", Payload: "gpt3"},
			{Title: "🚀 DeepSeek V3", Payload: "deepseek_v3"},
			{Title: "🦙 Llama 3", Payload: "llama_3"},
		},
	}
}

// MusicPrompt invites the user to send a link.
func MusicPrompt() Text {
	return Text{Text: "🎵 Send me a Spotify, TikTok or Instagram link to download!"}
}

// ModelReady acknowledges a model selection from the AI menu.
func ModelReady(model capability.ChatModel) Text {
	cmd := "/" + string(model)
	if model == capability.ModelKaiz {
		cmd = "/ai"
	}
	return Text{Text: fmt.Sprintf("%s activated! Send me any message or use %s [your message]", ModelLabel(model), cmd)}
}

// UnknownCommandNotice is the reply for an unrecognized /-command.
func UnknownCommandNotice() Text {
	return Text{Text: `❓ Unknown command. Type "help" to see available commands.`}
}

// MissingArgumentNotice reminds the user to supply an argument.
func MissingArgumentNotice(usage string) Text {
	return Text{Text: fmt.Sprintf("❗ Please provide a message after the command.\nExample: %s", usage)}
}

// InvalidURLNotice is the validation reply for a URL that fails the domain check.
func InvalidURLNotice(service string) Text {
	return Text{Text: fmt.Sprintf("❗ Please provide a valid %s URL.", service)}
}

// CapabilityApology is the generic user-facing failure message for a
// feature. The underlying error is logged, never shown.
func CapabilityApology(feature string) Text {
	return Text{Text: fmt.Sprintf("🔧 Sorry, %s ran into a problem. Please try again later.", feature)}
}

// UnsupportedAttachmentNotice covers attachment types the bot cannot handle.
func UnsupportedAttachmentNotice() Text {
	return Text{Text: "📎 I received your attachment. Currently, I can only analyze images."}
}

// ChatReply formats an AI chat response.
func ChatReply(model capability.ChatModel, res *capability.ChatResult) Text {
	return Text{Text: fmt.Sprintf("%s Response:\n\n%s", ModelLabel(model), res.Text)}
}

// ImageAnalysis formats an image analysis response.
func ImageAnalysis(res *capability.ChatResult) Text {
	return Text{Text: "🖼️ Image Analysis Results:\n\n" + res.Text}
}

// AnalyzingImageNotice is sent before the analysis capability is invoked.
func AnalyzingImageNotice() Text {
	return Text{Text: "🔍 Analyzing your image with KAIZ AI..."}
}

// SpotifyResult builds the download template for a Spotify track.
func SpotifyResult(res *capability.MediaResult) ButtonTemplate {
	title := res.Title
	if title == "" {
		title = "Track"
	}
	artist := res.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}

	buttons := []Button{
		{Type: ButtonWebURL, Title: "⬇️ Download Music", URL: res.DownloadURL},
	}
	if res.PreviewURL != "" {
		buttons = append(buttons, Button{Type: ButtonWebURL, Title: "🎵 Preview", URL: res.PreviewURL})
	}

	text := fmt.Sprintf("🎵 %s by %s\n\n✅ Ready to download!", title, artist)
	return ButtonTemplate{
		Text:    TruncateButtonText(text),
		Buttons: buttons,
	}
}

// VideoResult builds the reply for a TikTok or Instagram download: the video
// attachment first, then a caption. Ordering matters.
func VideoResult(res *capability.MediaResult, feature string) []Message {
	caption := fmt.Sprintf("📱 %s download ready!", feature)
	if res.Title != "" {
		caption = fmt.Sprintf("📱 %s\n\n✅ %s download ready!", res.Title, feature)
	}
	return []Message{
		MediaAttachment{Kind: MediaVideo, URL: res.DownloadURL},
		Text{Text: caption},
	}
}

// TikSearchResults formats the top TikTok search hits.
func TikSearchResults(query string, res *capability.SearchResult) Text {
	if len(res.Items) == 0 {
		return Text{Text: fmt.Sprintf("🔍 No TikTok videos found for %q.", query)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 TikTok results for %q:\n", query)
	for i, item := range res.Items {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s\n%s", i+1, item.Title, item.URL)
	}
	return Text{Text: b.String()}
}

// WikiResult formats a Wikipedia search response.
func WikiResult(query string, res *capability.SearchResult) Text {
	if len(res.Items) == 0 {
		return Text{Text: fmt.Sprintf("📚 No Wikipedia results for %q.", query)}
	}

	top := res.Items[0]
	var b strings.Builder
	fmt.Fprintf(&b, "📚 %s\n\n", top.Title)
	if top.Snippet != "" {
		b.WriteString(top.Snippet)
		b.WriteString("\n\n")
	}
	b.WriteString(top.URL)
	return Text{Text: b.String()}
}

// RemoveBackgroundResult sends the processed image followed by a caption.
func RemoveBackgroundResult(res *capability.ImageResult) []Message {
	return []Message{
		MediaAttachment{Kind: MediaImage, URL: res.ImageURL},
		Text{Text: "🖼️ Background removed! Here's your image."},
	}
}
