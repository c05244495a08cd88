package intent

// EventKind discriminates the payload of a normalized inbound event.
type EventKind string

const (
	KindText        EventKind = "text"
	KindQuickReply  EventKind = "quickReply"
	KindPostback    EventKind = "postback"
	KindAttachments EventKind = "attachments"
)

// Attachment is one inbound attachment.
type Attachment struct {
	Type string // "image", "video", "audio", "file", ...
	URL  string
}

// Event is one normalized inbound messaging event, already stripped of
// transport framing. Exactly one of Text, Payload, or Attachments is
// meaningful depending on Kind.
type Event struct {
	SenderID    string
	Kind        EventKind
	Text        string
	Payload     string // quick-reply or postback payload
	Attachments []Attachment
	MessageID   string
}
