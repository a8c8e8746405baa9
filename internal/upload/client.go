package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// UploadOutcome is the server's answer for one file.
type UploadOutcome struct {
	Created   bool
	Duplicate bool
	Message   string
}

// Client sends CSV exports to the rangelog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the rangelog server. apiKey may be
// empty when the server runs without auth.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendFile POSTs one CSV export as a multipart upload. Retries up to 3 times
// with exponential backoff on transport or server errors; 4xx responses are
// not retried since resubmitting the same bytes cannot succeed.
func (c *Client) SendFile(filename string, data []byte) (*UploadOutcome, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart form: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/sessions", bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusCreated:
			return &UploadOutcome{Created: true, Message: decodeMessage(respBody)}, nil
		case resp.StatusCode == http.StatusOK:
			return &UploadOutcome{Duplicate: true, Message: decodeMessage(respBody)}, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode, respBody)
		default:
			lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, respBody)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func decodeMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	return payload.Message
}
