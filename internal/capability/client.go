package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// chatEndpoints maps chat models to aggregator endpoints. Models marked
// true pass the caller's uid through for per-user conversation context.
var chatEndpoints = map[ChatModel]struct {
	endpoint string
	sendsUID bool
}{
	ModelKaiz:     {"kaiz-ai", true},
	ModelGemini:   {"gemini-pro", true},
	ModelGPT:      {"gpt3", false},
	ModelDeepseek: {"deepseek-v3", false},
	ModelLlama:    {"llama-3", false},
}

// downloadEndpoints maps download services to aggregator endpoints.
var downloadEndpoints = map[DownloadService]string{
	ServiceSpotify:   "spotify-down",
	ServiceTikTok:    "tiktok-dl",
	ServiceInstagram: "insta-dl",
}

// Client invokes capabilities on the aggregator API. Every capability is a
// single GET request; the client imposes one timeout and never retries.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an aggregator API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// invoke performs one GET against the named endpoint and returns the raw
// response body. The api key is always appended to the query parameters.
func (c *Client) invoke(ctx context.Context, capability, endpoint string, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, capErr(capability, "creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, capErr(capability, "request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, capErr(capability, "reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, capErr(capability, "unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

// chatPayload is the wire shape of the aggregator's chat endpoints.
type chatPayload struct {
	Response string `json:"response"`
}

func (c *Client) Chat(ctx context.Context, model ChatModel, prompt, uid string) (*ChatResult, error) {
	ep, ok := chatEndpoints[model]
	if !ok {
		return nil, capErr(string(model), "unknown chat model")
	}

	params := url.Values{}
	params.Set("ask", prompt)
	if ep.sendsUID {
		params.Set("uid", uid)
	}

	body, err := c.invoke(ctx, ep.endpoint, ep.endpoint, params)
	if err != nil {
		return nil, err
	}

	var payload chatPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, capErr(ep.endpoint, "decoding response: %w", err)
	}
	if payload.Response == "" {
		return nil, capErr(ep.endpoint, "empty response field")
	}

	return &ChatResult{Text: payload.Response}, nil
}

func (c *Client) AnalyzeImage(ctx context.Context, imageURL, uid string) (*ChatResult, error) {
	prompt := "Analyze this image: " + imageURL
	return c.Chat(ctx, ModelKaiz, prompt, uid)
}

// mediaPayload is the wire shape of the aggregator's download endpoints.
// Older endpoints use download_url, newer ones video_url.
type mediaPayload struct {
	DownloadURL string `json:"download_url"`
	VideoURL    string `json:"video_url"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	PreviewURL  string `json:"preview_url"`
	Thumbnail   string `json:"thumbnail"`
}

func (c *Client) Download(ctx context.Context, service DownloadService, mediaURL string) (*MediaResult, error) {
	endpoint, ok := downloadEndpoints[service]
	if !ok {
		return nil, capErr(string(service), "unknown download service")
	}

	params := url.Values{}
	params.Set("url", mediaURL)

	body, err := c.invoke(ctx, endpoint, endpoint, params)
	if err != nil {
		return nil, err
	}

	var payload mediaPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, capErr(endpoint, "decoding response: %w", err)
	}

	downloadURL := payload.DownloadURL
	if downloadURL == "" {
		downloadURL = payload.VideoURL
	}
	if downloadURL == "" {
		return nil, capErr(endpoint, "missing download url in response")
	}

	return &MediaResult{
		DownloadURL: downloadURL,
		Title:       payload.Title,
		Artist:      payload.Artist,
		PreviewURL:  payload.PreviewURL,
		Thumbnail:   payload.Thumbnail,
	}, nil
}

// searchPayload is the wire shape of the aggregator's search endpoints.
type searchPayload struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

func (c *Client) search(ctx context.Context, endpoint, queryParam, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set(queryParam, query)

	body, err := c.invoke(ctx, endpoint, endpoint, params)
	if err != nil {
		return nil, err
	}

	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, capErr(endpoint, "decoding response: %w", err)
	}

	result := &SearchResult{}
	for _, r := range payload.Results {
		result.Items = append(result.Items, SearchItem{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
		})
	}
	return result, nil
}

func (c *Client) SearchTikTok(ctx context.Context, query string) (*SearchResult, error) {
	return c.search(ctx, "tiksearch", "search", query)
}

func (c *Client) SearchWiki(ctx context.Context, query string) (*SearchResult, error) {
	return c.search(ctx, "wiki-search", "q", query)
}

// imagePayload is the wire shape of the background removal endpoint.
type imagePayload struct {
	ImageURL string `json:"image_url"`
}

func (c *Client) RemoveBackground(ctx context.Context, imageURL string) (*ImageResult, error) {
	params := url.Values{}
	params.Set("url", imageURL)

	body, err := c.invoke(ctx, "removebg", "removebg", params)
	if err != nil {
		return nil, err
	}

	var payload imagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, capErr("removebg", "decoding response: %w", err)
	}
	if payload.ImageURL == "" {
		return nil, capErr("removebg", "missing image url in response")
	}

	return &ImageResult{ImageURL: payload.ImageURL}, nil
}
