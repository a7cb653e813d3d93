package embedding

import (
	"fmt"
	"net/url"
	"strings"
)

// Config configures a remote (OpenAI-compatible) Provider.
type Config struct {
	APIBase    string
	APIKey     string
	Model      string
	Dimensions int
}

// Validate applies the URL-scheme and dimension rules from the spec: only
// http/https schemes are accepted, and dimensions must be in [1, 8192].
func (c Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("embedding: api_base is required")
	}
	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("embedding: invalid api_base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("embedding: api_base scheme must be http or https, got %q", u.Scheme)
	}
	if c.Dimensions < 1 || c.Dimensions > 8192 {
		return fmt.Errorf("embedding: dimensions must be in [1, 8192], got %d", c.Dimensions)
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: model is required")
	}
	return nil
}

// embeddingsURL builds the final endpoint URL from APIBase. If APIBase
// already ends in an embeddings path it is used verbatim; otherwise
// "/embeddings" is appended.
func (c Config) embeddingsURL() string {
	base := strings.TrimRight(c.APIBase, "/")
	if strings.HasSuffix(base, "/embeddings") {
		return base
	}
	return base + "/embeddings"
}
