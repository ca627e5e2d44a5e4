package providers

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Secrets stored in files, e.g. mounted docker or kubernetes secrets. A
// trailing newline is removed.
type FileProvider struct {
	ReadFile func(name string) ([]byte, error)
}

func NewFileProvider() *FileProvider {
	return &FileProvider{ReadFile: os.ReadFile}
}

func (p *FileProvider) Read(ctx context.Context, ids map[string]string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	for name, path := range ids {
		content, err := p.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("credential", name).Str("file", path).Msg("failed to read credential file")
			continue
		}
		result[name] = strings.TrimRight(string(content), "\r\n")
	}
	return result, nil
}
