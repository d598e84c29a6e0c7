package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Fetch downloads an OpenAPI document and loads it
func Fetch(ctx context.Context, client *http.Client, url string) (*Contract, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return Load(body)
}

// Open loads the contract at location: an http(s) URL, a file path, or the
// packaged contract when location is empty
func Open(ctx context.Context, location string) (*Contract, error) {
	switch {
	case location == "":
		return Packaged()
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return Fetch(ctx, http.DefaultClient, location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, err
	}
	return Load(data)
}
