package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the upload client.
const (
	DefaultAuthEndpoint = "http://localhost:8000/auth"
	DefaultUploadURL    = "https://upload.imagekit.io/api/v1/files/upload"
	DefaultFolder       = "/clientSideUpload"
	DefaultTimeout      = 30 * time.Second
	DefaultTransport    = "multipart"
)

// Client is the upload client configuration. It may be read from a YAML
// file and then overridden by command-line flags.
type Client struct {
	AuthEndpoint string        `yaml:"authEndpoint"`
	PublicKey    string        `yaml:"publicKey"`
	UploadURL    string        `yaml:"uploadURL"`
	Folder       string        `yaml:"folder"`
	Timeout      time.Duration `yaml:"timeout"`
	Transport    string        `yaml:"transport"`
}

// DefaultClient returns a Client with every optional field populated.
func DefaultClient() Client {
	return Client{
		AuthEndpoint: DefaultAuthEndpoint,
		UploadURL:    DefaultUploadURL,
		Folder:       DefaultFolder,
		Timeout:      DefaultTimeout,
		Transport:    DefaultTransport,
	}
}

// LoadClient reads a YAML client config from path on top of DefaultClient.
// An empty path returns the defaults.
func LoadClient(path string) (Client, error) {
	c := DefaultClient()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read client config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse client config %s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first setting the client cannot work without.
func (c Client) Validate() error {
	switch {
	case c.AuthEndpoint == "":
		return &Error{Key: "authEndpoint", Reason: "is required"}
	case c.PublicKey == "":
		return &Error{Key: "publicKey", Reason: "is required"}
	case c.UploadURL == "":
		return &Error{Key: "uploadURL", Reason: "is required"}
	case c.Timeout <= 0:
		return &Error{Key: "timeout", Reason: "must be positive"}
	}
	switch c.Transport {
	case "multipart", "resty":
		return nil
	default:
		return &Error{Key: "transport", Reason: fmt.Sprintf("%q is not one of multipart, resty", c.Transport)}
	}
}
