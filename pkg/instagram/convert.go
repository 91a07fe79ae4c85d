package instagram

import (
	"strings"

	"vidscraper/pkg/metadata"
)

// fromShortcodeMedia maps a graphql post. For a sidecar the first video
// child with a URL supplies the media URLs and the parent everything else.
// ok is false only when the post holds no video at all; a video without a
// URL maps to a meta with an empty VideoURL.
func fromShortcodeMedia(sourceURL string, m *ShortcodeMedia) (*metadata.Instagram, bool) {
	media := m
	if !m.IsVideo {
		media = nil
		for i := range m.EdgeSidecarToChildren.Edges {
			child := &m.EdgeSidecarToChildren.Edges[i].Node
			if !child.IsVideo {
				continue
			}
			if media == nil || (media.VideoURL == "" && child.VideoURL != "") {
				media = child
			}
		}
		if media == nil {
			return nil, false
		}
	}

	meta := metadata.NewInstagram(sourceURL)
	meta.VideoURL = media.VideoURL
	meta.ThumbnailURL = firstNonEmpty(media.DisplayURL, media.ThumbnailSrc, m.DisplayURL)
	meta.Duration = media.VideoDuration
	meta.Views = firstCount(media.VideoViewCount, media.VideoPlayCount, m.VideoViewCount)

	meta.Author = m.Owner.Username
	meta.Verified = m.Owner.IsVerified
	if edges := m.EdgeMediaToCaption.Edges; len(edges) > 0 {
		meta.Caption = edges[0].Node.Text
	}
	if m.TakenAtTimestamp > 0 {
		meta.Timestamp = metadata.UnixToISO(m.TakenAtTimestamp)
	}
	meta.Likes = firstCount(m.EdgeMediaPreviewLike.Count, m.EdgeLikedBy.Count)
	meta.Comments = firstCount(m.EdgeMediaToComment.Count, m.EdgeParentComment.Count)
	if m.Location != nil {
		meta.Location = m.Location.Name
	}
	if m.ProductType == productTypeClips {
		meta.Type = metadata.TypeReel
	}
	return meta, true
}

// fromItem maps a post in the items shape. ok is false for an image or a
// carousel without a video child.
func fromItem(sourceURL string, it *Item) (*metadata.Instagram, bool) {
	media := it
	switch it.MediaType {
	case itemImage:
		return nil, false
	case itemCarousel:
		media = nil
		for i := range it.CarouselMedia {
			child := &it.CarouselMedia[i]
			if len(child.VideoVersions) > 0 {
				media = child
				break
			}
			if media == nil && child.MediaType == itemVideo {
				media = child
			}
		}
		if media == nil {
			return nil, false
		}
	}

	meta := metadata.NewInstagram(sourceURL)
	if len(media.VideoVersions) > 0 {
		meta.VideoURL = media.VideoVersions[0].URL
	}
	if c := media.ImageVersions2.Candidates; len(c) > 0 {
		meta.ThumbnailURL = c[0].URL
	}
	meta.Duration = media.VideoDuration
	meta.Views = firstCount(media.PlayCount, media.ViewCount, it.PlayCount, it.ViewCount)

	meta.Author = it.User.Username
	meta.Verified = it.User.IsVerified
	if it.Caption != nil {
		meta.Caption = it.Caption.Text
	}
	if it.TakenAt > 0 {
		meta.Timestamp = metadata.UnixToISO(it.TakenAt)
	}
	meta.Likes = it.LikeCount
	meta.Comments = it.CommentCount
	if it.Location != nil {
		meta.Location = it.Location.Name
	}
	if it.ProductType == productTypeClips {
		meta.Type = metadata.TypeReel
	}
	return meta, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstCount(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
