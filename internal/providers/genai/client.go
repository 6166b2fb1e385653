package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"motionpitch/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	PlanModel  string
	ImageModel string
	VideoModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a lightweight facade over the Gemini REST API covering the five
// remote operations the orchestrator needs: structured planning, cached
// content creation, file upload with state polling, image generation and
// long-running video generation.
type Client struct {
	apiKey     string
	baseURL    string
	planModel  string
	imageModel string
	videoModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// PlanRequest carries one planning call: the composed user prompt, an
// optional uploaded document reference and an optional cached content handle.
type PlanRequest struct {
	Prompt        string
	FileURI       string
	FileMIME      string
	CachedContent string
}

// ImageRequest carries one image generation call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	ImageSize   string
}

// VideoRequest carries one video generation submission. The image bytes are
// the conditioning frame for the first video frame.
type VideoRequest struct {
	Prompt          string
	ImageBytes      []byte
	ImageMIME       string
	AspectRatio     string
	Resolution      string
	DurationSeconds int
}

// FileRef describes an uploaded file on the provider side.
type FileRef struct {
	Name     string
	URI      string
	MIMEType string
	State    string
}

// Processing reports whether the uploaded file is still being processed.
func (f FileRef) Processing() bool {
	return strings.EqualFold(f.State, "PROCESSING")
}

// VideoOperation is a long-running video generation handle. VideoURI is set
// once the operation completed with a generated video.
type VideoOperation struct {
	Name     string
	Done     bool
	VideoURI string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiTool struct {
	GoogleSearch  *struct{} `json:"google_search,omitempty"`
	CodeExecution *struct{} `json:"code_execution,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string            `json:"responseMimeType,omitempty"`
	ResponseSchema     json.RawMessage   `json:"responseSchema,omitempty"`
	ResponseModalities []string          `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	CachedContent    string                  `json:"cachedContent,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCachedContentRequest struct {
	Model    string          `json:"model"`
	Contents []geminiContent `json:"contents"`
	TTL      string          `json:"ttl"`
}

type geminiCachedContentResponse struct {
	Name string `json:"name"`
}

type geminiFileResponse struct {
	File geminiFileInfo `json:"file"`
}

type geminiFileInfo struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	State    string `json:"state"`
}

type veoGenerateRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoParameters struct {
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

type veoOperationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response *struct {
		GenerateVideoResponse *struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// planResponseSchema constrains the planning call to the exact deck shape the
// orchestrator parses. Field names line up with domain.PlanResult tags.
var planResponseSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "slides": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "content": {"type": "string"},
          "visual_prompt": {"type": "string"},
          "video_prompt": {"type": "string"}
        },
        "required": ["title", "content", "visual_prompt", "video_prompt"]
      }
    }
  },
  "required": ["title", "slides"]
}`)

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		planModel:  firstNonEmpty(opts.PlanModel, "gemini-3-pro-preview"),
		imageModel: firstNonEmpty(opts.ImageModel, "gemini-3-pro-image-preview"),
		videoModel: firstNonEmpty(opts.VideoModel, "veo-3.1-generate-preview"),
		httpClient: client,
		logger:     logger,
	}, nil
}

// GeneratePlan issues one structured planning call and returns the raw JSON
// text of the response. Search and code execution tools are always enabled so
// the model can verify facts and run calculations.
func (c *Client) GeneratePlan(ctx context.Context, req PlanRequest) (string, error) {
	parts := make([]geminiPart, 0, 2)
	if req.FileURI != "" {
		parts = append(parts, geminiPart{FileData: &geminiFileData{
			MimeType: firstNonEmpty(req.FileMIME, "application/pdf"),
			FileURI:  req.FileURI,
		}})
	}
	parts = append(parts, geminiPart{Text: req.Prompt})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		Tools: []geminiTool{
			{GoogleSearch: &struct{}{}},
			{CodeExecution: &struct{}{}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   planResponseSchema,
		},
		CachedContent: req.CachedContent,
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.planModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return "", err
	}

	text := extractText(response)
	if text == "" {
		return "", fmt.Errorf("plan response contained no text")
	}
	return text, nil
}

// CreateCachedContent stores a reusable system instruction on the provider
// side and returns its handle.
func (c *Client) CreateCachedContent(ctx context.Context, instruction string, ttl time.Duration) (string, error) {
	payload := geminiCachedContentRequest{
		Model:    "models/" + c.planModel,
		Contents: []geminiContent{{Parts: []geminiPart{{Text: instruction}}}},
		TTL:      fmt.Sprintf("%ds", int(ttl.Seconds())),
	}

	var response geminiCachedContentResponse
	if err := c.invoke(ctx, http.MethodPost, "/cachedContents", payload, &response); err != nil {
		return "", err
	}
	if response.Name == "" {
		return "", fmt.Errorf("cached content response missing name")
	}

	c.logger.Info().Str("cache", response.Name).Msg("genai: created context cache")
	return response.Name, nil
}

// UploadFile pushes a local document to the provider's file API. The returned
// reference may still be in a processing state; poll with GetFile.
func (c *Client) UploadFile(ctx context.Context, path string) (FileRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileRef{}, fmt.Errorf("read upload: %w", err)
	}

	mime := mimeForPath(path)
	endpoint := c.uploadBaseURL() + "/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return FileRef{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FileRef{}, fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return FileRef{}, c.decodeError(resp, "upload file")
	}

	var out geminiFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return FileRef{}, fmt.Errorf("decode upload response: %w", err)
	}
	return fileRefFromInfo(out.File), nil
}

// GetFile refreshes the state of an uploaded file.
func (c *Client) GetFile(ctx context.Context, name string) (FileRef, error) {
	var out geminiFileInfo
	path := "/" + strings.TrimLeft(name, "/")
	if err := c.invoke(ctx, http.MethodGet, path, nil, &out); err != nil {
		return FileRef{}, err
	}
	return fileRefFromInfo(out), nil
}

// GenerateImage synthesizes a single image for the given prompt and returns
// the raw image bytes. A response without image data is an error; the batch
// orchestrator degrades it to a placeholder slide.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig: &geminiImageConfig{
				AspectRatio: firstNonEmpty(req.AspectRatio, "16:9"),
				ImageSize:   firstNonEmpty(req.ImageSize, "2K"),
			},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.imageModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline image: %w", err)
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("no image generated")
}

// GenerateVideo submits a long-running Veo operation conditioned on the given
// image and returns its handle.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoOperation, error) {
	instance := veoInstance{Prompt: req.Prompt}
	if len(req.ImageBytes) > 0 {
		instance.Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.ImageBytes),
			MimeType:           firstNonEmpty(req.ImageMIME, "image/png"),
		}
	}
	payload := veoGenerateRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			AspectRatio:     firstNonEmpty(req.AspectRatio, "16:9"),
			Resolution:      firstNonEmpty(req.Resolution, "720p"),
			DurationSeconds: req.DurationSeconds,
		},
	}

	var response veoOperationResponse
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.videoModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}
	if response.Name == "" {
		return nil, fmt.Errorf("video operation missing name")
	}
	return operationFromResponse(response), nil
}

// GetOperation refreshes a long-running video operation.
func (c *Client) GetOperation(ctx context.Context, name string) (*VideoOperation, error) {
	var response veoOperationResponse
	path := "/" + strings.TrimLeft(name, "/")
	if err := c.invoke(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	if response.Error != nil && response.Error.Message != "" {
		return nil, fmt.Errorf("video operation failed: %s", response.Error.Message)
	}
	return operationFromResponse(response), nil
}

// DownloadFile fetches generated media by URI. Relative URIs are resolved
// against the API base URL.
func (c *Client) DownloadFile(ctx context.Context, uri string) ([]byte, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp, "download file")
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return blob, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any, out any) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp, "gemini")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, op string) error {
	var apiErr geminiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%s status %d: %s", op, resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("%s status %d", op, resp.StatusCode)
}

// uploadBaseURL maps the API base URL onto the media upload endpoint.
func (c *Client) uploadBaseURL() string {
	if idx := strings.Index(c.baseURL, "/v1"); idx >= 0 {
		return c.baseURL[:idx] + "/upload" + c.baseURL[idx:]
	}
	return c.baseURL
}

func extractText(resp geminiGenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func operationFromResponse(resp veoOperationResponse) *VideoOperation {
	op := &VideoOperation{Name: resp.Name, Done: resp.Done}
	if resp.Response != nil && resp.Response.GenerateVideoResponse != nil {
		samples := resp.Response.GenerateVideoResponse.GeneratedSamples
		if len(samples) > 0 {
			op.VideoURI = samples[0].Video.URI
		}
	}
	return op
}

func fileRefFromInfo(info geminiFileInfo) FileRef {
	return FileRef{
		Name:     info.Name,
		URI:      info.URI,
		MIMEType: info.MimeType,
		State:    info.State,
	}
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
