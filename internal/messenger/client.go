package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kaizlabs/kaizbot/internal/reply"
)

// DefaultGraphURL is the Messenger Send API endpoint.
const DefaultGraphURL = "https://graph.facebook.com/v18.0/me/messages"

// DeliveryError reports a failed outbound send. It propagates to the event
// loop; no recovery is possible within the triggering event.
type DeliveryError struct {
	RecipientID string
	Cause       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering to %s: %v", e.RecipientID, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// Client sends messages through the Messenger Send API.
type Client struct {
	pageAccessToken string
	graphURL        string
	httpClient      *http.Client
}

// NewClient creates a Send API client for the given page access token.
func NewClient(pageAccessToken string) *Client {
	return &Client{
		pageAccessToken: pageAccessToken,
		graphURL:        DefaultGraphURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithURL creates a client against a non-default Graph endpoint.
// Used in tests.
func NewClientWithURL(pageAccessToken, graphURL string) *Client {
	c := NewClient(pageAccessToken)
	c.graphURL = graphURL
	return c
}

// wire shapes for the Send API payload.
type (
	recipient struct {
		ID string `json:"id"`
	}

	quickReply struct {
		ContentType string `json:"content_type"`
		Title       string `json:"title"`
		Payload     string `json:"payload"`
	}

	button struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		URL     string `json:"url,omitempty"`
		Payload string `json:"payload,omitempty"`
	}

	attachmentPayload struct {
		TemplateType string   `json:"template_type,omitempty"`
		Text         string   `json:"text,omitempty"`
		Buttons      []button `json:"buttons,omitempty"`
		URL          string   `json:"url,omitempty"`
	}

	attachment struct {
		Type    string            `json:"type"`
		Payload attachmentPayload `json:"payload"`
	}

	messageBody struct {
		Text         string       `json:"text,omitempty"`
		QuickReplies []quickReply `json:"quick_replies,omitempty"`
		Attachment   *attachment  `json:"attachment,omitempty"`
	}

	sendRequest struct {
		Recipient    recipient    `json:"recipient"`
		Message      *messageBody `json:"message,omitempty"`
		SenderAction string       `json:"sender_action,omitempty"`
	}
)

// encodeMessage maps an abstract message onto the Send API wire format.
func encodeMessage(msg reply.Message) (*messageBody, error) {
	switch m := msg.(type) {
	case reply.Text:
		return &messageBody{Text: m.Text}, nil

	case reply.QuickReplySet:
		body := &messageBody{Text: m.Text}
		for _, opt := range m.Options {
			body.QuickReplies = append(body.QuickReplies, quickReply{
				ContentType: "text",
				Title:       opt.Title,
				Payload:     opt.Payload,
			})
		}
		return body, nil

	case reply.ButtonTemplate:
		var buttons []button
		for _, b := range m.Buttons {
			buttons = append(buttons, button{
				Type:    string(b.Type),
				Title:   b.Title,
				URL:     b.URL,
				Payload: b.Payload,
			})
		}
		return &messageBody{
			Attachment: &attachment{
				Type: "template",
				Payload: attachmentPayload{
					TemplateType: "button",
					Text:         m.Text,
					Buttons:      buttons,
				},
			},
		}, nil

	case reply.MediaAttachment:
		return &messageBody{
			Attachment: &attachment{
				Type:    string(m.Kind),
				Payload: attachmentPayload{URL: m.URL},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported message type %T", msg)
	}
}

// Send delivers one message to the recipient. Failures surface as
// *DeliveryError.
func (c *Client) Send(ctx context.Context, recipientID string, msg reply.Message) error {
	body, err := encodeMessage(msg)
	if err != nil {
		return &DeliveryError{RecipientID: recipientID, Cause: err}
	}
	return c.post(ctx, recipientID, sendRequest{
		Recipient: recipient{ID: recipientID},
		Message:   body,
	})
}

// Typing toggles the typing indicator. Failures are returned for logging
// but callers treat them as non-fatal.
func (c *Client) Typing(ctx context.Context, recipientID string, on bool) error {
	action := "typing_on"
	if !on {
		action = "typing_off"
	}
	return c.post(ctx, recipientID, sendRequest{
		Recipient:    recipient{ID: recipientID},
		SenderAction: action,
	})
}

func (c *Client) post(ctx context.Context, recipientID string, payload sendRequest) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{RecipientID: recipientID, Cause: err}
	}

	url := c.graphURL + "?access_token=" + c.pageAccessToken
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &DeliveryError{RecipientID: recipientID, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{RecipientID: recipientID, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DeliveryError{
			RecipientID: recipientID,
			Cause:       fmt.Errorf("send api status %d: %s", resp.StatusCode, detail),
		}
	}
	return nil
}
