// Package loader reads the plain-text document corpus from disk.
package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"rag-assistant/internal/domain"
)

// Suffix is the recognized document file extension. It is kept in document
// titles and stripped only for display.
const Suffix = ".txt"

// LoadDirectory reads every .txt file in dir, one Document per file, in
// lexical filename order. Empty and unreadable files are skipped with a
// warning. A missing directory yields an empty corpus, not an error.
func LoadDirectory(dir string, log *zap.Logger) ([]domain.Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("data directory not found", zap.String("dir", dir))
			return nil, nil
		}
		return nil, err
	}
	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), Suffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn("failed to load document", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			log.Warn("skipped empty document", zap.String("file", entry.Name()))
			continue
		}
		docs = append(docs, domain.Document{Filename: entry.Name(), Text: text})
		log.Debug("loaded document", zap.String("file", entry.Name()), zap.Int("bytes", len(text)))
	}
	log.Info("documents loaded", zap.Int("count", len(docs)), zap.String("dir", dir))
	return docs, nil
}

// DisplayTitle strips the document suffix from a source title for display.
func DisplayTitle(title string) string {
	return strings.TrimSuffix(title, Suffix)
}
