package instagram

// apiResponse is the body of the ?__a=1 post endpoint. Depending on the
// rollout it carries either the graphql shape or the items shape.
type apiResponse struct {
	Graphql *struct {
		ShortcodeMedia *ShortcodeMedia `json:"shortcode_media"`
	} `json:"graphql"`
	Items []Item `json:"items"`
}

// ShortcodeMedia is a post in the graphql shape
type ShortcodeMedia struct {
	ID               string   `json:"id"`
	Shortcode        string   `json:"shortcode"`
	Typename         string   `json:"__typename"`
	IsVideo          bool     `json:"is_video"`
	VideoURL         string   `json:"video_url"`
	DisplayURL       string   `json:"display_url"`
	ThumbnailSrc     string   `json:"thumbnail_src"`
	VideoDuration    *float64 `json:"video_duration"`
	VideoViewCount   *int64   `json:"video_view_count"`
	VideoPlayCount   *int64   `json:"video_play_count"`
	TakenAtTimestamp int64    `json:"taken_at_timestamp"`
	ProductType      string   `json:"product_type"`

	Owner struct {
		Username   string `json:"username"`
		IsVerified bool   `json:"is_verified"`
	} `json:"owner"`

	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`

	EdgeMediaPreviewLike counter `json:"edge_media_preview_like"`
	EdgeLikedBy          counter `json:"edge_liked_by"`
	EdgeMediaToComment   counter `json:"edge_media_to_comment"`
	EdgeParentComment    counter `json:"edge_media_to_parent_comment"`

	Location *struct {
		Name string `json:"name"`
	} `json:"location"`

	EdgeSidecarToChildren struct {
		Edges []struct {
			Node ShortcodeMedia `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

type counter struct {
	Count *int64 `json:"count"`
}

// Item is a post in the items (private API) shape
type Item struct {
	Code          string   `json:"code"`
	MediaType     int      `json:"media_type"`
	ProductType   string   `json:"product_type"`
	VideoDuration *float64 `json:"video_duration"`
	PlayCount     *int64   `json:"play_count"`
	ViewCount     *int64   `json:"view_count"`
	LikeCount     *int64   `json:"like_count"`
	CommentCount  *int64   `json:"comment_count"`
	TakenAt       int64    `json:"taken_at"`

	VideoVersions []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"video_versions"`

	ImageVersions2 struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`

	User struct {
		Username   string `json:"username"`
		IsVerified bool   `json:"is_verified"`
	} `json:"user"`

	Caption *struct {
		Text string `json:"text"`
	} `json:"caption"`

	Location *struct {
		Name string `json:"name"`
	} `json:"location"`

	CarouselMedia []Item `json:"carousel_media"`
}

const (
	itemImage    = 1
	itemVideo    = 2
	itemCarousel = 8
)

// productTypeClips marks reels in both payload shapes
const productTypeClips = "clips"
