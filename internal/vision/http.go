package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// client is the shared plumbing for the sidecar HTTP services. Each service
// speaks multipart-in / JSON-out on a small set of endpoints.
type client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func newClient(rawURL string, httpClient *http.Client) (*client, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("service URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL %q: %w", rawURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{baseURL: parsed, httpClient: httpClient}, nil
}

func (c *client) resolveURL(endpoint string) string {
	return c.baseURL.JoinPath(endpoint).String()
}

// formField is an extra text field to include in a multipart request.
type formField struct {
	name  string
	value string
}

// postImageJSON sends image bytes as a multipart form and unmarshals the JSON
// response into the result type.
func postImageJSON[T any](ctx context.Context, c *client, endpoint string, imageData []byte, fields ...formField) (*T, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("could not write image data: %w", err)
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("could not write form field %s: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(endpoint), &body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// readErrorBody reads the response body for error messages, truncated so a
// misbehaving sidecar cannot flood the logs.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(body) == 0 {
		return "(no body)"
	}
	return string(body)
}
