package prover

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kysee/zk-blake2b/circuits"
	"github.com/kysee/zk-blake2b/provers/types"
)

var _ types.Source = (*APISource)(nil)

// APISource implements Source by fetching the message body from an HTTP endpoint
type APISource struct {
	URL    string
	Client *http.Client
}

func NewAPISource(rawURL string) *APISource {
	return &APISource{
		URL:    rawURL,
		Client: &http.Client{},
	}
}

// Message sends GET URL and returns the body, which must fit in MaxDataBytes
func (a *APISource) Message() ([]byte, error) {
	endpoint, err := url.Parse(a.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := a.Client.Get(endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// one byte more than allowed so oversized bodies are detected
	body, err := io.ReadAll(io.LimitReader(resp.Body, circuit.MaxDataBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if len(body) > circuit.MaxDataBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", circuit.MaxDataBytes)
	}
	return body, nil
}
