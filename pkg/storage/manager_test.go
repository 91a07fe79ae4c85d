package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"vidscraper/pkg/metadata"
	"vidscraper/pkg/platform"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, Options{})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetDownloadedCount() != 0 {
		t.Error("Expected initial download count to be 0")
	}

	if manager.IsDownloaded("instagram_ABC123") {
		t.Error("Expected IsDownloaded to return false for non-existent file")
	}

	testData := []byte("test video data")
	path, err := manager.SaveVideo(bytes.NewReader(testData), "instagram_ABC123")
	if err != nil {
		t.Fatalf("Failed to save video: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "instagram_ABC123.mp4")
	if path != expectedPath {
		t.Errorf("Path mismatch: got %s, want %s", path, expectedPath)
	}

	content, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be removed")
	}

	if !manager.IsDownloaded("instagram_ABC123") {
		t.Error("Expected IsDownloaded to return true for existing file")
	}

	if manager.GetDownloadedCount() != 1 {
		t.Errorf("Expected download count to be 1, got %d", manager.GetDownloadedCount())
	}

	// A file written behind the manager's back is picked up on the next scan
	manualFile := filepath.Join(tempDir, "facebook_987.mp4")
	if err := os.WriteFile(manualFile, []byte("manual"), 0644); err != nil {
		t.Fatalf("Failed to create manual file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create unrelated file: %v", err)
	}

	manager2, err := NewManager(tempDir, Options{})
	if err != nil {
		t.Fatalf("Failed to create second manager: %v", err)
	}

	if manager2.GetDownloadedCount() != 2 {
		t.Errorf("Expected download count to be 2 after scanning, got %d", manager2.GetDownloadedCount())
	}
	if !manager2.IsDownloaded("facebook_987") {
		t.Error("Expected manually created file to be detected")
	}
}

func TestManagerOverwrite(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "instagram_X.mp4"), []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	manager, err := NewManager(tempDir, Options{Overwrite: true})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.IsDownloaded("instagram_X") {
		t.Error("Expected IsDownloaded to be false when overwriting")
	}

	if _, err := manager.SaveVideo(bytes.NewReader([]byte("new")), "instagram_X"); err != nil {
		t.Fatalf("Failed to save video: %v", err)
	}
	content, _ := os.ReadFile(filepath.Join(tempDir, "instagram_X.mp4"))
	if string(content) != "new" {
		t.Errorf("Expected file to be replaced, got %q", content)
	}
}

func TestSaveVideoWithMetadata(t *testing.T) {
	meta := metadata.NewInstagram("https://www.instagram.com/reel/Cx1abc/")
	meta.Caption = "hello"

	t.Run("sidecar written", func(t *testing.T) {
		manager, err := NewManager(t.TempDir(), Options{WriteMetadata: true})
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		path, err := manager.SaveVideoWithMetadata(bytes.NewReader([]byte("v")), "instagram_Cx1abc", meta)
		if err != nil {
			t.Fatalf("Failed to save video: %v", err)
		}

		loaded, err := metadata.Load(path)
		if err != nil {
			t.Fatalf("Failed to load sidecar: %v", err)
		}
		if loaded.Base().Caption != "hello" {
			t.Errorf("Caption mismatch: got %q", loaded.Base().Caption)
		}
		if loaded.Platform() != platform.Instagram {
			t.Errorf("Platform mismatch: got %s", loaded.Platform())
		}
	})

	t.Run("sidecar disabled", func(t *testing.T) {
		manager, err := NewManager(t.TempDir(), Options{})
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		path, err := manager.SaveVideoWithMetadata(bytes.NewReader([]byte("v")), "instagram_Cx1abc", meta)
		if err != nil {
			t.Fatalf("Failed to save video: %v", err)
		}
		if metadata.Exists(path) {
			t.Error("Expected no sidecar when metadata writing is disabled")
		}
	})
}

func TestKey(t *testing.T) {
	tests := []struct {
		p    platform.Platform
		url  string
		want string
	}{
		{platform.Instagram, "https://www.instagram.com/p/ABC123/", "instagram_ABC123"},
		{platform.Instagram, "https://www.instagram.com/reel/Cx_1-a/", "instagram_Cx_1-a"},
		{platform.Facebook, "https://www.facebook.com/watch/?v=12345", "facebook_12345"},
		{platform.Facebook, "https://www.facebook.com/page/videos/987/", "facebook_987"},
		{platform.Facebook, "https://fb.watch/a.b!c/", "facebook_abc"},
		{platform.Facebook, "https://fb.watch/", "facebook_video"},
	}

	for _, tt := range tests {
		if got := Key(tt.p, tt.url); got != tt.want {
			t.Errorf("Key(%s, %q) = %q, want %q", tt.p, tt.url, got, tt.want)
		}
	}
}
