// Package input normalizes image and file references into the form the
// API accepts: cache tokens and URLs pass through, local files are base64
// encoded, long strings are assumed to be encoded already.
package input

import (
	"encoding/base64"
	"net/url"
	"os"
	"strings"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog/log"
)

const (
	CacheTokenPrefix = "ref:"
	// Strings longer than this that are neither URLs nor files are taken
	// as base64 content.
	MinEncodedLength = 100
)

type Kind int

const (
	KindCacheToken Kind = iota + 1
	KindURL
	KindFile
	KindEncoded
)

func (k Kind) String() string {
	switch k {
	case KindCacheToken:
		return "cache_token"
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	case KindEncoded:
		return "encoded"
	}
	return "unknown"
}

// A classified input and the value to put on the wire
type Reference struct {
	Kind  Kind
	Value string
}

var ErrInvalidInput = &models.InvalidArgumentError{
	Message: "Invalid input image, file not found or malformed URL.",
}

type Resolver struct {
	ReadFile func(name string) ([]byte, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		ReadFile: os.ReadFile,
	}
}

// Classify applies the rules in order: cache token (when allowed), absolute
// URL, readable local file, long pre-encoded string.
func (r *Resolver) Classify(value string, allowCache bool) (Reference, error) {
	if allowCache && strings.HasPrefix(value, CacheTokenPrefix) {
		return Reference{KindCacheToken, value}, nil
	}

	if isAbsoluteURL(value) {
		return Reference{KindURL, value}, nil
	}

	if value != "" {
		data, err := r.ReadFile(value)
		if err == nil {
			log.Debug().Str("path", value).Int("bytes", len(data)).Msg("encoding local file")
			return Reference{KindFile, base64.StdEncoding.EncodeToString(data)}, nil
		}
	}

	if len(value) > MinEncodedLength {
		return Reference{KindEncoded, value}, nil
	}

	return Reference{}, ErrInvalidInput
}

func (r *Resolver) Resolve(value string, allowCache bool) (string, error) {
	ref, err := r.Classify(value, allowCache)
	if err != nil {
		return "", err
	}
	return ref.Value, nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
