package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// RemoteProvider calls an OpenAI-compatible /embeddings endpoint over
// plain net/http. Grounded on hieuntg81-alfred-ai's OpenAIProvider; kept
// as raw net/http rather than an SDK so the api_base verbatim-vs-append
// rule (Config.embeddingsURL) stays exact and inspectable.
type RemoteProvider struct {
	cfg    Config
	client *http.Client
}

// NewRemoteProvider validates cfg and returns a RemoteProvider using a
// pooled HTTP client. Pass nil for client to use a sane default.
func NewRemoteProvider(cfg Config, client *http.Client) (*RemoteProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second, Transport: NewPooledTransport()}
	}
	return &RemoteProvider{cfg: cfg, client: client}, nil
}

type remoteEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type remoteEmbedResponse struct {
	Data []remoteEmbedDatum `json:"data"`
}

type remoteEmbedDatum struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Embed implements Provider.
func (p *RemoteProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch implements Provider using the API's native batch input.
func (p *RemoteProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(remoteEmbedRequest{Input: texts, Model: p.cfg.Model})
	if err != nil {
		return nil, NewError(false, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.embeddingsURL(), bytes.NewReader(body))
	if err != nil {
		return nil, NewError(false, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewError(true, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, NewError(true, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, NewError(transient, fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody)))
	}

	var parsed remoteEmbedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, NewError(false, fmt.Errorf("unmarshal response: %w", err))
	}

	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	if len(parsed.Data) != len(texts) {
		return nil, NewError(false, fmt.Errorf("embedding count mismatch: got %d, want %d", len(parsed.Data), len(texts)))
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// ModelName implements Provider.
func (p *RemoteProvider) ModelName() string { return p.cfg.Model }

// Dimensions implements Provider.
func (p *RemoteProvider) Dimensions() int { return p.cfg.Dimensions }
