// Package upload sends a file or remote URL to the media vendor using
// short-lived authentication parameters fetched from the auth server.
package upload

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/upsign/service/internal/auth"
)

// URLFileName is the fileName sent with remote URL uploads.
const URLFileName = "image-from-url"

// File is a local file to upload.
type File struct {
	Name string
	Body io.Reader
}

// Request is one user-triggered upload attempt. File takes precedence over URL.
type Request struct {
	File *File
	URL  string
}

// Validate reports a *ValidationError when there is nothing to upload.
func (r Request) Validate() error {
	switch {
	case r.File != nil:
		if r.File.Body == nil || r.File.Name == "" {
			return &ValidationError{Message: "Selected file has no name or content."}
		}
	case strings.TrimSpace(r.URL) == "":
		return &ValidationError{Message: "Please select a file or enter a URL."}
	}
	return nil
}

// Submission is everything sent to the vendor upload endpoint.
type Submission struct {
	File      *File  // set for binary uploads
	SourceURL string // set for remote URL uploads

	FileName          string
	UseUniqueFileName bool
	Folder            string
	PublicKey         string
	Auth              auth.Parameters
}

// Field is one non-file form field.
type Field struct {
	Name, Value string
}

// Fields returns the form fields other than the binary file part, in the
// order they are written. For URL uploads the "file" field carries the URL.
func (s Submission) Fields() []Field {
	var fields []Field
	if s.File == nil {
		fields = append(fields, Field{"file", s.SourceURL})
	}
	fields = append(fields,
		Field{"fileName", s.FileName},
		Field{"useUniqueFileName", strconv.FormatBool(s.UseUniqueFileName)},
		Field{"publicKey", s.PublicKey},
		Field{"signature", s.Auth.Signature},
		Field{"token", s.Auth.Token},
		Field{"expire", strconv.FormatInt(s.Auth.Expire, 10)},
	)
	if s.Folder != "" {
		fields = append(fields, Field{"folder", s.Folder})
	}
	return fields
}

// Asset is the stored file as reported by the vendor.
type Asset struct {
	FileID       string `json:"fileId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FilePath     string `json:"filePath"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
}

type vendorError struct {
	Message string `json:"message"`
}

// interpretResponse turns a vendor HTTP response into an Asset or an
// *UploadError. A 2xx body without a url is treated as a failure.
func interpretResponse(status int, body []byte) (Asset, error) {
	if !statusOK(status) {
		var ve vendorError
		_ = json.Unmarshal(body, &ve)
		return Asset{}, &UploadError{StatusCode: status, Message: ve.Message}
	}

	var a Asset
	if err := json.Unmarshal(body, &a); err != nil {
		return Asset{}, &UploadError{StatusCode: status, Err: err}
	}
	if a.URL == "" {
		return Asset{}, &UploadError{StatusCode: status, Message: "response did not include an asset url"}
	}
	return a, nil
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
