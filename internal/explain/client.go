package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// COMPILE-TIME INTERFACE CHECK:
// The HTTP client satisfies the same Generator interface as the Gemini
// backend, so the snippet service can depend on the interface alone and
// never know the explanation comes from a separate process.
var _ Generator = (*Client)(nil)

// Client calls a remote explanation service over HTTP.
//
// The snippet application runs the explanation service as its own process
// (cmd/explaind), so snippet writes reach it the same way any other client
// would: POST /explain with a JSON body. Keeping the wire format in one
// package (Request/Response above) means the client and the handler can
// never drift apart.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the explanation service at baseURL,
// e.g. "http://localhost:3001".
//
// The timeout covers the full round trip. Generation regularly takes
// several seconds, so this is generous — but it must exist, or a hung
// upstream would pin snippet writes forever.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate requests an explanation from the remote service.
//
// Any transport failure, non-200 status, or body we can't decode becomes a
// *GenerationError. Callers (the snippet service) treat those as
// "enrichment unavailable" and substitute a sentinel string — a failed
// explanation must never fail the snippet write.
func (c *Client) Generate(ctx context.Context, code, language string) (string, error) {
	body, err := json.Marshal(Request{Code: code, Language: language})
	if err != nil {
		return "", Generation(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/explain", bytes.NewReader(body))
	if err != nil {
		return "", Generation(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", Generation(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", Generation(fmt.Errorf("explanation service returned status %d", resp.StatusCode))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", Generation(fmt.Errorf("decoding explanation response: %w", err))
	}
	if out.Explanation == "" {
		return "", Generation(fmt.Errorf("explanation service returned an empty explanation"))
	}

	return out.Explanation, nil
}
