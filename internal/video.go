package internal

// watchURLPrefix is the canonical watch page for a video ID
const watchURLPrefix = "https://www.youtube.com/watch?v="

// VideoRecord holds the fields extracted from a video's watch page.
// Fields that are not present in the page keep their zero value.
type VideoRecord struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	UploadDate       string `json:"upload_date"`
	Duration         string `json:"duration"`
	Description      string `json:"description"`
	Genre            string `json:"genre"`
	ChannelID        string `json:"channel_id"`
	ThumbnailURL     string `json:"thumbnail_url"`
	PlayerType       string `json:"player_type"`
	RegionsAllowed   string `json:"regions_allowed"`
	IsPaid           bool   `json:"is_paid"`
	IsUnlisted       bool   `json:"is_unlisted"`
	IsFamilyFriendly bool   `json:"is_family_friendly"`
	Views            int64  `json:"views"`
	Likes            int64  `json:"likes"`
	Dislikes         int64  `json:"dislikes"`
}

// WatchURL returns the watch page URL for a video ID
func WatchURL(id string) string {
	return watchURLPrefix + id
}
