package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
)

const videoExt = ".mp4"

// Options controls how the Manager treats existing files
type Options struct {
	// Overwrite makes IsDownloaded always report false
	Overwrite bool
	// WriteMetadata writes a JSON sidecar next to every saved video
	WriteMetadata bool
}

// Manager handles video storage and duplicate detection
type Manager struct {
	outputDir  string
	opts       Options
	downloaded map[string]bool
	mu         sync.RWMutex
}

// NewManager creates a new storage manager rooted at outputDir
func NewManager(outputDir string, opts Options) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:  outputDir,
		opts:       opts,
		downloaded: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == videoExt {
			m.downloaded[strings.TrimSuffix(name, videoExt)] = true
		}
	}

	return nil
}

// Key names the file of a video: the platform followed by the last
// meaningful piece of its normalized URL. A v= query parameter wins over
// the path.
func Key(p platform.Platform, normalizedURL string) string {
	id := ""
	if u, err := url.Parse(normalizedURL); err == nil {
		id = u.Query().Get("v")
		if id == "" {
			segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
			if len(segments) > 0 {
				id = segments[len(segments)-1]
			}
		}
	}

	id = sanitize(id)
	if id == "" {
		id = "video"
	}
	return string(p) + "_" + id
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}

// VideoPath is where the video with the given key is stored
func (m *Manager) VideoPath(key string) string {
	return filepath.Join(m.outputDir, key+videoExt)
}

// IsDownloaded checks if a video with the given key is already stored
func (m *Manager) IsDownloaded(key string) bool {
	if m.opts.Overwrite {
		return false
	}

	m.mu.RLock()
	known := m.downloaded[key]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(m.VideoPath(key)); err == nil {
		m.mu.Lock()
		m.downloaded[key] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// SaveVideo writes r to the file of key and returns its path
func (m *Manager) SaveVideo(r io.Reader, key string) (string, error) {
	filename := m.VideoPath(key)

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to save video data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.downloaded[key] = true
	m.mu.Unlock()

	return filename, nil
}

// SaveVideoWithMetadata saves the video and, when enabled, its sidecar
func (m *Manager) SaveVideoWithMetadata(r io.Reader, key string, meta metadata.VideoMetadata) (string, error) {
	path, err := m.SaveVideo(r, key)
	if err != nil {
		return "", err
	}

	if m.opts.WriteMetadata && meta != nil {
		if err := metadata.Save(meta, path); err != nil {
			return path, err
		}
	}

	return path, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetDownloadedCount returns the number of stored videos
func (m *Manager) GetDownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}
