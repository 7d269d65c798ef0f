package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// maxResponseBytes bounds how much of a vendor response is read.
const maxResponseBytes = 1 << 20

// Transport submits a Submission to the vendor upload endpoint.
type Transport interface {
	Submit(ctx context.Context, s Submission) (Asset, error)
}

// MultipartTransport posts the submission as a multipart/form-data body
// using net/http directly.
type MultipartTransport struct {
	uploadURL string
	client    *http.Client
}

// NewMultipartTransport creates a MultipartTransport. A nil client means
// http.DefaultClient.
func NewMultipartTransport(uploadURL string, client *http.Client) *MultipartTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &MultipartTransport{uploadURL: uploadURL, client: client}
}

// Submit implements Transport.
func (t *MultipartTransport) Submit(ctx context.Context, s Submission) (Asset, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if s.File != nil {
		part, err := mw.CreateFormFile("file", s.FileName)
		if err != nil {
			return Asset{}, fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, s.File.Body); err != nil {
			return Asset{}, fmt.Errorf("read %s: %w", s.FileName, err)
		}
	}
	for _, f := range s.Fields() {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return Asset{}, fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return Asset{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, &body)
	if err != nil {
		return Asset{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload response: %w", err)
	}
	return interpretResponse(resp.StatusCode, data)
}
