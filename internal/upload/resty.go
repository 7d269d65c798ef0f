package upload

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// RestyTransport submits the same multipart form as MultipartTransport
// through a resty client.
type RestyTransport struct {
	uploadURL string
	client    *resty.Client
}

// NewRestyTransport creates a RestyTransport. A nil client gets a fresh
// resty client with retries disabled.
func NewRestyTransport(uploadURL string, client *resty.Client) *RestyTransport {
	if client == nil {
		client = resty.New().SetRetryCount(0)
	}
	return &RestyTransport{uploadURL: uploadURL, client: client}
}

// Submit implements Transport.
func (t *RestyTransport) Submit(ctx context.Context, s Submission) (Asset, error) {
	form := make(map[string]string)
	for _, f := range s.Fields() {
		form[f.Name] = f.Value
	}

	req := t.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetMultipartFormData(form)
	if s.File != nil {
		req.SetFileReader("file", s.FileName, s.File.Body)
	}

	resp, err := req.Post(t.uploadURL)
	if err != nil {
		return Asset{}, err
	}
	return interpretResponse(resp.StatusCode(), resp.Body())
}
