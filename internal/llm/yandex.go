package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultYandexEndpoint = "https://llm.api.cloud.yandex.net"
	DefaultYandexModel    = "yandexgpt-lite"
)

// Yandex calls the YandexGPT Foundation Models completion API with an API
// key.
type Yandex struct {
	cfg  Config
	http *http.Client
}

func NewYandex(cfg Config) *Yandex {
	if cfg.Endpoint == "" || cfg.Endpoint == DefaultOllamaEndpoint {
		cfg.Endpoint = DefaultYandexEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultYandexModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Yandex{cfg: cfg, http: newHTTPClient()}
}

func (*Yandex) Name() string { return "yandex" }

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
			Status  string        `json:"status"`
		} `json:"alternatives"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
}

func (y *Yandex) modelURI() string {
	return fmt.Sprintf("gpt://%s/%s/latest", y.cfg.FolderID, y.cfg.Model)
}

func (y *Yandex) Summarize(ctx context.Context, commits []string, lang Language) (string, error) {
	req := y.request(BuildPrompt(commits, lang), temperature, 500)
	return generate(ctx, y.cfg, y.Name(), func(ctx context.Context) (string, error) {
		return y.complete(ctx, req)
	})
}

func (y *Yandex) request(prompt string, temp float64, maxTokens int) yandexRequest {
	return yandexRequest{
		ModelURI: y.modelURI(),
		CompletionOptions: yandexCompletionOptions{
			Temperature: temp,
			MaxTokens:   fmt.Sprint(maxTokens),
		},
		Messages: []yandexMessage{{Role: "user", Text: prompt}},
	}
}

// complete returns the first non-blank alternative.
func (y *Yandex) complete(ctx context.Context, body yandexRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, y.cfg.Endpoint+"/foundationModels/v1/completion", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+y.cfg.APIKey)
	httpReq.Header.Set("x-folder-id", y.cfg.FolderID)

	httpResp, err := y.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yandex returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp yandexResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	for _, alt := range resp.Result.Alternatives {
		if text := strings.TrimSpace(alt.Message.Text); text != "" {
			return text, nil
		}
	}
	return "", ErrEmptyOutput
}

// Available sends a tiny completion; there is no cheaper health endpoint
// that checks both the key and the folder.
func (y *Yandex) Available(ctx context.Context) bool {
	if y.cfg.APIKey == "" || y.cfg.FolderID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := y.complete(ctx, y.request("test", 0.1, 5))
	return err == nil
}
