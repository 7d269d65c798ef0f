package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/upsign/service/internal/config"
	"github.com/upsign/service/internal/upload"
)

type uploadFlags struct {
	configPath   string
	url          string
	authEndpoint string
	publicKey    string
	uploadURL    string
	folder       string
	transport    string
	timeout      time.Duration
}

func newUploadCmd() *cobra.Command {
	var f uploadFlags

	cmd := &cobra.Command{
		Use:   "upload [FILE]",
		Short: "Upload a local file or a remote URL",
		Long: `Upload a local file, or a remote URL with --url. When both are given the file wins.

The public key is read from --public-key, the config file, or IMAGEKIT_PUBLIC_KEY.

Example usage:
  uploader upload photo.png --public-key public_abc
  uploader upload --url https://example.com/cat.jpg --config uploader.yaml
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag and argument errors are printed by cobra; from here on the
			// outcome is rendered on stdout.
			cmd.SilenceErrors = true
			out := cmd.OutOrStdout()

			req := upload.Request{URL: f.url}
			if len(args) == 1 {
				file, err := openRegular(args[0])
				if err != nil {
					fmt.Fprintln(out, upload.StatusText(err))
					return err
				}
				defer file.Close()
				req.File = &upload.File{Name: filepath.Base(args[0]), Body: file}
			}
			if err := req.Validate(); err != nil {
				fmt.Fprintln(out, upload.StatusText(err))
				return err
			}

			cfg, err := resolveClientConfig(cmd, f)
			if err != nil {
				fmt.Fprintln(out, "Error: "+err.Error())
				return err
			}

			asset, err := newFlow(cfg).Upload(cmd.Context(), req)

			fmt.Fprintln(out, upload.StatusText(err))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, asset.URL)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML client config file")
	fl.StringVarP(&f.url, "url", "u", "", "Remote URL to upload instead of a file")
	fl.StringVar(&f.authEndpoint, "auth-endpoint", "", "Auth server endpoint (default "+config.DefaultAuthEndpoint+")")
	fl.StringVar(&f.publicKey, "public-key", "", "Vendor public key")
	fl.StringVar(&f.uploadURL, "upload-url", "", "Vendor upload endpoint")
	fl.StringVar(&f.folder, "folder", "", "Destination folder (default "+config.DefaultFolder+")")
	fl.StringVar(&f.transport, "transport", "", "Upload transport: multipart or resty")
	fl.DurationVar(&f.timeout, "timeout", 0, "Per-request timeout (default 30s)")

	return cmd
}

// openRegular opens path and rejects directories and other non-regular files
// before any auth parameters are requested.
func openRegular(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, &upload.ValidationError{Message: fmt.Sprintf("%s is not a regular file.", path)}
	}
	return file, nil
}

// resolveClientConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveClientConfig(cmd *cobra.Command, f uploadFlags) (config.Client, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	cfg, err := config.LoadClient(f.configPath)
	if err != nil {
		return cfg, err
	}
	if cfg.PublicKey == "" {
		cfg.PublicKey = os.Getenv("IMAGEKIT_PUBLIC_KEY")
	}

	fl := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	set("auth-endpoint", &cfg.AuthEndpoint, f.authEndpoint)
	set("public-key", &cfg.PublicKey, f.publicKey)
	set("upload-url", &cfg.UploadURL, f.uploadURL)
	set("folder", &cfg.Folder, f.folder)
	set("transport", &cfg.Transport, f.transport)
	if fl.Changed("timeout") {
		cfg.Timeout = f.timeout
	}

	return cfg, cfg.Validate()
}

func newFlow(cfg config.Client) *upload.Flow {
	var transport upload.Transport
	switch cfg.Transport {
	case "resty":
		transport = upload.NewRestyTransport(cfg.UploadURL, nil)
	default:
		transport = upload.NewMultipartTransport(cfg.UploadURL, &http.Client{})
	}

	logger := log.With().Str("transport", cfg.Transport).Logger()
	return upload.NewFlow(
		upload.NewHTTPAuthFetcher(cfg.AuthEndpoint, &http.Client{}),
		transport,
		upload.Options{
			PublicKey: cfg.PublicKey,
			Folder:    cfg.Folder,
			Timeout:   cfg.Timeout,
			Logger:    &logger,
			OnState: func(s upload.State) {
				log.Debug().Stringer("state", s).Msg("upload state")
			},
		},
	)
}
