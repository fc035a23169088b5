package transliterate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kunaile/janbhas/content"
)

// Role hints the oracle about the kind of text it is romanizing.
type Role string

const (
	RoleTitle       Role = "title"
	RoleAuthor      Role = "author"
	RoleCategory    Role = "category"
	RoleSubCategory Role = "sub_category"
	RoleTag         Role = "tag"
)

// Request is one vernacular string to transliterate.
type Request struct {
	Text     string `json:"text"`
	Role     Role   `json:"role"`
	Language string `json:"language"`
}

// Oracle converts vernacular-script text into Latin-script text. It is a
// black box: any text-in/text-out service satisfying the count contract can
// be plugged in.
type Oracle interface {
	// BatchTransliterate returns one raw result per distinct input text. A
	// missing or short response must surface as an error, never as a
	// partial mapping.
	BatchTransliterate(ctx context.Context, items []Request) (map[string]string, error)
}

// HTTPOracle talks to a remote transliteration service over JSON.
type HTTPOracle struct {
	endpoint string
	client   *http.Client
}

// NewHTTPOracle builds an oracle client for the given endpoint. A nil client
// falls back to a timeout-bounded default.
func NewHTTPOracle(endpoint string, client *http.Client) *HTTPOracle {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPOracle{endpoint: endpoint, client: client}
}

type oracleRequest struct {
	Items []Request `json:"items"`
}

type oracleResponse struct {
	Results []oracleResult `json:"results"`
}

type oracleResult struct {
	Text            string `json:"text"`
	Transliteration string `json:"transliteration"`
}

// BatchTransliterate implements Oracle.
func (o *HTTPOracle) BatchTransliterate(ctx context.Context, items []Request) (map[string]string, error) {
	payload, err := json.Marshal(oracleRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("transliterate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("transliterate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transliterate: call oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &content.TransliterationBatchError{
			Requested: len(items),
			Reason:    fmt.Sprintf("oracle returned status %d", resp.StatusCode),
		}
	}

	var decoded oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("transliterate: decode response: %w", err)
	}

	if len(decoded.Results) != len(items) {
		return nil, &content.TransliterationBatchError{
			Requested: len(items),
			Returned:  len(decoded.Results),
		}
	}

	out := make(map[string]string, len(decoded.Results))
	for _, result := range decoded.Results {
		out[result.Text] = result.Transliteration
	}
	return out, nil
}
