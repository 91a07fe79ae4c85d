package metadata

import (
	"encoding/json"
	"fmt"
	"os"

	"vidscraper/pkg/platform"
)

// MediaType classifies the scraped post
type MediaType string

const (
	TypeVideo MediaType = "video"
	TypeReel  MediaType = "reel"
	TypeStory MediaType = "story"
	TypePost  MediaType = "post"
)

// VideoMetadata is either *Instagram or *Facebook. The set is closed:
// use Match or Fold to handle each variant.
type VideoMetadata interface {
	Base() *Common
	Platform() platform.Platform
	sealed()
}

// Common holds the fields both platforms report.
type Common struct {
	Platform     platform.Platform `json:"platform"`
	Type         MediaType         `json:"type"`
	URL          string            `json:"url"`
	VideoURL     string            `json:"video_url,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Author       string            `json:"author,omitempty"`
	Caption      string            `json:"caption,omitempty"`
	// Timestamp is ISO-8601
	Timestamp string `json:"timestamp,omitempty"`
	// Duration in seconds
	Duration *float64 `json:"duration,omitempty"`
}

// Instagram is the metadata of an Instagram post, reel or story.
type Instagram struct {
	Common
	Likes    *int64   `json:"likes,omitempty"`
	Comments *int64   `json:"comments,omitempty"`
	Views    *int64   `json:"views,omitempty"`
	Verified bool     `json:"verified"`
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`
	Location string   `json:"location,omitempty"`
}

// Facebook is the metadata of a Facebook video, reel or post.
type Facebook struct {
	Common
	Likes     *int64           `json:"likes,omitempty"`
	Comments  *int64           `json:"comments,omitempty"`
	Shares    *int64           `json:"shares,omitempty"`
	Reactions map[string]int64 `json:"reactions,omitempty"`
	PageID    string           `json:"page_id,omitempty"`
	PageName  string           `json:"page_name,omitempty"`
	IsLive    bool             `json:"is_live"`
}

// NewInstagram returns an Instagram record for the given source URL.
func NewInstagram(sourceURL string) *Instagram {
	return &Instagram{
		Common:   Common{Platform: platform.Instagram, Type: TypeVideo, URL: sourceURL},
		Hashtags: []string{},
		Mentions: []string{},
	}
}

// NewFacebook returns a Facebook record for the given source URL.
func NewFacebook(sourceURL string) *Facebook {
	return &Facebook{
		Common: Common{Platform: platform.Facebook, Type: TypeVideo, URL: sourceURL},
	}
}

func (m *Instagram) Base() *Common               { return &m.Common }
func (m *Instagram) Platform() platform.Platform { return platform.Instagram }
func (m *Instagram) sealed()                     {}

func (m *Facebook) Base() *Common               { return &m.Common }
func (m *Facebook) Platform() platform.Platform { return platform.Facebook }
func (m *Facebook) sealed()                     {}

// Match calls the handler for the concrete variant of m.
func Match(m VideoMetadata, onInstagram func(*Instagram), onFacebook func(*Facebook)) {
	switch v := m.(type) {
	case *Instagram:
		onInstagram(v)
	case *Facebook:
		onFacebook(v)
	}
}

// Fold maps m to a value with one function per variant.
func Fold[T any](m VideoMetadata, onInstagram func(*Instagram) T, onFacebook func(*Facebook) T) T {
	var out T
	Match(m,
		func(v *Instagram) { out = onInstagram(v) },
		func(v *Facebook) { out = onFacebook(v) },
	)
	return out
}

// Unmarshal decodes a JSON record into the variant named by its platform tag.
func Unmarshal(data []byte) (VideoMetadata, error) {
	var tag struct {
		Platform platform.Platform `json:"platform"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to read platform tag: %w", err)
	}

	var m VideoMetadata
	switch tag.Platform {
	case platform.Instagram:
		m = &Instagram{}
	case platform.Facebook:
		m = &Facebook{}
	default:
		return nil, fmt.Errorf("unknown platform %q", tag.Platform)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return m, nil
}

// SidecarPath is the metadata file written next to a downloaded video.
func SidecarPath(videoPath string) string {
	return videoPath + ".json"
}

// Save writes m as an indented JSON sidecar for videoPath
func Save(m VideoMetadata, videoPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(SidecarPath(videoPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads the JSON sidecar of videoPath
func Load(videoPath string) (VideoMetadata, error) {
	data, err := os.ReadFile(SidecarPath(videoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return Unmarshal(data)
}

// Exists checks if a metadata sidecar exists for a video
func Exists(videoPath string) bool {
	_, err := os.Stat(SidecarPath(videoPath))
	return err == nil
}

// FormattedCaption returns a single-line caption truncated to maxLength runes
func FormattedCaption(m VideoMetadata, maxLength int) string {
	caption := []rune(collapseWhitespace(m.Base().Caption))
	if maxLength <= 3 || len(caption) <= maxLength {
		return string(caption)
	}
	return string(caption[:maxLength-3]) + "..."
}
