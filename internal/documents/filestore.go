package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore persists uploaded document attachments. The engine only keeps
// the name and content hash; storage itself is an external concern.
type FileStore interface {
	Save(docID, filename string, r io.Reader) (hash string, err error)
}

// LocalFileStore keeps attachments under <dataDir>/attachments/<docID>/.
type LocalFileStore struct {
	dataDir string
}

// NewLocalFileStore creates a LocalFileStore rooted at dataDir.
func NewLocalFileStore(dataDir string) *LocalFileStore {
	return &LocalFileStore{dataDir: dataDir}
}

// Save writes the attachment to disk and returns its SHA-256 hex digest.
func (s *LocalFileStore) Save(docID, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.dataDir, "attachments", docID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating attachment dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, filepath.Base(filename)))
	if err != nil {
		return "", fmt.Errorf("creating attachment file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), r); err != nil {
		return "", fmt.Errorf("writing attachment: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
