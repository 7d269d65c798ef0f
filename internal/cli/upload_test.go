package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upsign/service/internal/auth"
	"github.com/upsign/service/internal/config"
	"github.com/upsign/service/internal/server"
	"github.com/upsign/service/internal/upload"
)

const (
	privateKey = "private_test_key"
	publicKey  = "public_test_key"
)

// newAuthServer runs the real auth router.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		PublicKey:      publicKey,
		PrivateKey:     privateKey,
		URLEndpoint:    "https://ik.imagekit.io/demo",
		AuthPath:       "/auth",
		TokenTTL:       30 * time.Minute,
		AllowedOrigins: []string{"http://localhost:5500"},
	}
	svc := auth.NewService(auth.NewHMACSigner(cfg.PrivateKey), cfg.TokenTTL)
	srv := httptest.NewServer(server.NewRouter(cfg, auth.NewHandler(svc), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

// newVendor emulates the vendor: it recomputes the signature with vendorKey
// and rejects mismatches.
func newVendor(t *testing.T, vendorKey string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	signer := auth.NewHMACSigner(vendorKey)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid form"})
			return
		}

		expire, _ := strconv.ParseInt(r.FormValue("expire"), 10, 64)
		want, _ := signer.Sign(r.FormValue("token"), expire)
		if r.FormValue("signature") != want || r.FormValue("publicKey") != publicKey {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid signature"})
			return
		}

		name := r.FormValue("fileName")
		if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
			name = fhs[0].Filename
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fileId":   "f1",
			"name":     name,
			"url":      "https://ik.io/x" + r.FormValue("folder") + "/" + name,
			"filePath": r.FormValue("folder") + "/" + name,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIStreams(t, args...)
	return out, err
}

func runCLIStreams(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestUploadCommandFile(t *testing.T) {
	for _, transport := range []string{"multipart", "resty"} {
		t.Run(transport, func(t *testing.T) {
			var hits atomic.Int32
			authSrv := newAuthServer(t)
			vendor := newVendor(t, privateKey, &hits)
			file := writeFile(t, "a.png", []byte("0123456789"))

			out, err := runCLI(t, "upload", file,
				"--auth-endpoint", authSrv.URL+"/auth",
				"--public-key", publicKey,
				"--upload-url", vendor.URL,
				"--transport", transport,
			)
			require.NoError(t, err)
			assert.Equal(t, "Upload successful!\nhttps://ik.io/x/clientSideUpload/a.png\n", out)
			assert.EqualValues(t, 1, hits.Load())
		})
	}
}

func TestUploadCommandURLFromConfigFile(t *testing.T) {
	var hits atomic.Int32
	authSrv := newAuthServer(t)
	vendor := newVendor(t, privateKey, &hits)
	cfgPath := writeFile(t, "uploader.yaml", []byte(fmt.Sprintf(`
authEndpoint: %s/auth
publicKey: %s
uploadURL: %s
folder: /fromUrl
transport: resty
timeout: 5s
`, authSrv.URL, publicKey, vendor.URL)))

	out, err := runCLI(t, "upload", "--config", cfgPath, "--url", "https://example.com/cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Upload successful!\nhttps://ik.io/x/fromUrl/image-from-url\n", out)
}

func TestUploadCommandVendorRejects(t *testing.T) {
	var hits atomic.Int32
	authSrv := newAuthServer(t)
	vendor := newVendor(t, "some_other_key", &hits)
	file := writeFile(t, "a.png", []byte("0123456789"))

	out, err := runCLI(t, "upload", file,
		"--auth-endpoint", authSrv.URL+"/auth",
		"--public-key", publicKey,
		"--upload-url", vendor.URL,
	)
	require.Error(t, err)
	assert.Equal(t, "Error: Invalid signature\n", out)
}

func TestUploadCommandNothingToUpload(t *testing.T) {
	var hits atomic.Int32
	authSrv := newAuthServer(t)
	vendor := newVendor(t, privateKey, &hits)

	out, err := runCLI(t, "upload",
		"--auth-endpoint", authSrv.URL+"/auth",
		"--public-key", publicKey,
		"--upload-url", vendor.URL,
	)
	require.Error(t, err)
	assert.Equal(t, "Please select a file or enter a URL.\n", out)
	assert.Zero(t, hits.Load())
}

func TestUploadCommandConfigErrors(t *testing.T) {
	t.Setenv("IMAGEKIT_PUBLIC_KEY", "")

	out, err := runCLI(t, "upload", "--url", "https://example.com/cat.jpg")
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "publicKey", cfgErr.Key)
	assert.Contains(t, out, "Error: config: publicKey is required")

	_, err = runCLI(t, "upload", "--url", "https://example.com/cat.jpg", "--public-key", "pk", "--timeout=-1s")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "timeout", cfgErr.Key)
}

func TestUploadCommandPublicKeyFromEnv(t *testing.T) {
	t.Setenv("IMAGEKIT_PUBLIC_KEY", publicKey)

	var hits atomic.Int32
	authSrv := newAuthServer(t)
	vendor := newVendor(t, privateKey, &hits)

	out, err := runCLI(t, "upload",
		"--url", "https://example.com/cat.jpg",
		"--auth-endpoint", authSrv.URL+"/auth",
		"--upload-url", vendor.URL,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Upload successful!")
}

func TestUploadCommandMissingFile(t *testing.T) {
	out, err := runCLI(t, "upload", filepath.Join(t.TempDir(), "nope.png"), "--public-key", "pk")
	require.Error(t, err)
	assert.Contains(t, out, "Error: open")
}

func TestUsageErrorsArePrinted(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"upload", "--bogus"}, want: "unknown flag: --bogus"},
		{name: "too many files", args: []string{"upload", "a.png", "b.png"}, want: "accepts at most 1 arg(s), received 2"},
		{name: "unknown command", args: []string{"uplod"}, want: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLIStreams(t, tt.args...)
			require.Error(t, err)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestUploadCommandOutcomeNotRepeatedOnStderr(t *testing.T) {
	stdout, stderr, err := runCLIStreams(t, "upload", "--public-key", publicKey)
	require.Error(t, err)
	assert.Equal(t, "Please select a file or enter a URL.\n", stdout)
	assert.NotContains(t, stderr, "Please select a file")
}

func TestUploadCommandRejectsDirectory(t *testing.T) {
	var authHits, vendorHits atomic.Int32
	router := newAuthServer(t)
	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHits.Add(1)
		http.Redirect(w, r, router.URL+r.URL.Path, http.StatusTemporaryRedirect)
	}))
	t.Cleanup(authSrv.Close)
	vendor := newVendor(t, privateKey, &vendorHits)
	dir := t.TempDir()

	out, err := runCLI(t, "upload", dir,
		"--auth-endpoint", authSrv.URL+"/auth",
		"--public-key", publicKey,
		"--upload-url", vendor.URL,
	)

	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, dir+" is not a regular file.\n", out)
	assert.Zero(t, authHits.Load())
	assert.Zero(t, vendorHits.Load())
}

func TestUploadCommandChecksInputBeforeConfig(t *testing.T) {
	t.Setenv("IMAGEKIT_PUBLIC_KEY", "")

	out, err := runCLI(t, "upload")

	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please select a file or enter a URL.\n", out)
}
