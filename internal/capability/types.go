package capability

import "context"

// ChatModel identifies one of the AI chat backends.
type ChatModel string

const (
	ModelKaiz     ChatModel = "kaiz"
	ModelGemini   ChatModel = "gemini"
	ModelGPT      ChatModel = "gpt"
	ModelDeepseek ChatModel = "deepseek"
	ModelLlama    ChatModel = "llama"
)

// DownloadService identifies a media download backend.
type DownloadService string

const (
	ServiceSpotify   DownloadService = "spotify"
	ServiceTikTok    DownloadService = "tiktok"
	ServiceInstagram DownloadService = "instagram"
)

// ChatResult is the validated response of a chat or image-analysis capability.
type ChatResult struct {
	Text string
}

// MediaResult is the validated response of a media download capability.
type MediaResult struct {
	DownloadURL string
	Title       string
	Artist      string
	PreviewURL  string
	Thumbnail   string
}

// SearchItem is one entry in a search capability result.
type SearchItem struct {
	Title   string
	URL     string
	Snippet string
}

// SearchResult is the validated response of a search capability.
type SearchResult struct {
	Items []SearchItem
}

// ImageResult is the validated response of an image transform capability.
type ImageResult struct {
	ImageURL string
}

// Registry exposes every external capability as a uniform request/response
// call. Implementations validate result shapes at this boundary; callers
// never see raw provider payloads. Failures surface as *Error. The registry
// never retries.
type Registry interface {
	Chat(ctx context.Context, model ChatModel, prompt, uid string) (*ChatResult, error)
	AnalyzeImage(ctx context.Context, imageURL, uid string) (*ChatResult, error)
	Download(ctx context.Context, service DownloadService, url string) (*MediaResult, error)
	SearchTikTok(ctx context.Context, query string) (*SearchResult, error)
	SearchWiki(ctx context.Context, query string) (*SearchResult, error)
	RemoveBackground(ctx context.Context, imageURL string) (*ImageResult, error)
}
