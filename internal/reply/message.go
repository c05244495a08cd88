package reply

// Message is one abstract outbound message. The four kinds below are the
// only implementations; the sender maps each onto the platform wire format.
type Message interface {
	isMessage()
}

// Text is a plain text message.
type Text struct {
	Text string
}

// Option is one quick-reply choice.
type Option struct {
	Title   string
	Payload string
}

// QuickReplySet is a text message with tappable quick-reply options.
type QuickReplySet struct {
	Text    string
	Options []Option
}

// ButtonType discriminates template buttons.
type ButtonType string

const (
	ButtonWebURL   ButtonType = "web_url"
	ButtonPostback ButtonType = "postback"
)

// Button is one button in a button template. URL is set for web_url
// buttons, Payload for postback buttons.
type Button struct {
	Type    ButtonType
	Title   string
	URL     string
	Payload string
}

// ButtonTemplate is a text body with up to three buttons. The body is
// subject to the platform's 640-character limit; use TruncateButtonText.
type ButtonTemplate struct {
	Text    string
	Buttons []Button
}

// MediaKind discriminates media attachments.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaAttachment is an image or video sent by URL.
type MediaAttachment struct {
	Kind MediaKind
	URL  string
}

func (Text) isMessage()            {}
func (QuickReplySet) isMessage()   {}
func (ButtonTemplate) isMessage()  {}
func (MediaAttachment) isMessage() {}
