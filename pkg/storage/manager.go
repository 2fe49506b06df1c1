package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"emojiscraper/pkg/models"
)

// DefaultFilePattern names emoji image files after their id.
const DefaultFilePattern = "{id}.png"

// Manager handles file storage operations and duplicate detection
type Manager struct {
	outputDir   string
	filePattern string
	downloaded  map[string]bool
	mu          sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir. filePattern maps
// an emoji id to a file name and must contain "{id}"; empty selects
// DefaultFilePattern.
func NewManager(outputDir, filePattern string) (*Manager, error) {
	if filePattern == "" {
		filePattern = DefaultFilePattern
	}
	if !strings.Contains(filePattern, "{id}") {
		return nil, fmt.Errorf("file pattern %q must contain {id}", filePattern)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:   outputDir,
		filePattern: filePattern,
		downloaded:  make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records ids of images already present in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	prefix, suffix, _ := strings.Cut(m.filePattern, "{id}")
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		id := name[len(prefix) : len(name)-len(suffix)]
		if id != "" {
			m.downloaded[id] = true
		}
	}

	return nil
}

// FileName returns the file name used for the image of id
func (m *Manager) FileName(id string) string {
	return strings.ReplaceAll(m.filePattern, "{id}", id)
}

// PathFor returns the full path of the image of id
func (m *Manager) PathFor(id string) string {
	return filepath.Join(m.outputDir, m.FileName(id))
}

// IsDownloaded checks if the image of the given emoji id is already stored
func (m *Manager) IsDownloaded(id string) bool {
	if models.ValidateEmojiID(id) != nil {
		return false
	}

	m.mu.RLock()
	cached := m.downloaded[id]
	m.mu.RUnlock()
	if cached {
		return true
	}

	if _, err := os.Stat(m.PathFor(id)); err != nil {
		return false
	}

	m.mu.Lock()
	m.downloaded[id] = true
	m.mu.Unlock()
	return true
}

// SaveImage stores the encoded image of id read from r
func (m *Manager) SaveImage(r io.Reader, id string) error {
	if err := models.ValidateEmojiID(id); err != nil {
		return err
	}
	if err := writeAtomic(m.PathFor(id), r); err != nil {
		return err
	}

	m.mu.Lock()
	m.downloaded[id] = true
	m.mu.Unlock()

	return nil
}

// Deliver writes an export artifact into the output directory. It makes
// Manager usable as the file deliverer of the exporter.
func (m *Manager) Deliver(ctx context.Context, artifact models.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Name == "" || filepath.Base(artifact.Name) != artifact.Name {
		return fmt.Errorf("invalid artifact name %q", artifact.Name)
	}
	return writeAtomic(filepath.Join(m.outputDir, artifact.Name), bytes.NewReader(artifact.Data))
}

// writeAtomic writes r to a temporary file next to filename and renames it
// into place.
func writeAtomic(filename string, r io.Reader) error {
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetDownloadedCount returns the number of stored images
func (m *Manager) GetDownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}
