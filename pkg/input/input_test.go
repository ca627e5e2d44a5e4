package input

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func init() {
	log.Logger = zerolog.Nop()
}

func noFiles(t *testing.T) *Resolver {
	return &Resolver{ReadFile: func(name string) ([]byte, error) {
		t.Fatalf("unexpected file read: %s", name)
		return nil, nil
	}}
}

func TestCacheToken(t *testing.T) {
	r := noFiles(t)
	ref, err := r.Classify("ref:abc", true)
	assert.NoError(t, err)
	assert.Equal(t, Reference{KindCacheToken, "ref:abc"}, ref)
}

func TestCacheTokenNotAllowed(t *testing.T) {
	r := &Resolver{ReadFile: func(string) ([]byte, error) { return nil, os.ErrNotExist }}
	_, err := r.Resolve("ref:abc", false)

	var invalid *models.InvalidArgumentError
	assert.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Invalid input image, file not found or malformed URL.", invalid.Message)

	long := "ref:" + strings.Repeat("a", 120)
	out, err := r.Resolve(long, false)
	assert.NoError(t, err)
	assert.Equal(t, long, out)
}

func TestURL(t *testing.T) {
	r := noFiles(t)
	out, err := r.Resolve("https://example.com/x.png", false)
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/x.png", out)
}

func TestLocalFile(t *testing.T) {
	content := []byte("\x89PNG\r\n\x1a\nnot really a png")
	path := filepath.Join(t.TempDir(), "id.png")
	assert.NoError(t, os.WriteFile(path, content, 0o600))

	ref, err := NewResolver().Classify(path, true)
	assert.NoError(t, err)
	assert.Equal(t, KindFile, ref.Kind)
	assert.Equal(t, base64.StdEncoding.EncodeToString(content), ref.Value)
}

func TestEncoded(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("image bytes ", 20)))
	ref, err := NewResolver().Classify(data, false)
	assert.NoError(t, err)
	assert.Equal(t, Reference{KindEncoded, data}, ref)
}

func TestInvalid(t *testing.T) {
	for _, value := range []string{"short", "", "C:\\missing\\file.jpg", strings.Repeat("x", 100)} {
		_, err := NewResolver().Resolve(value, false)
		assert.ErrorIs(t, err, ErrInvalidInput, value)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cache_token", KindCacheToken.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
