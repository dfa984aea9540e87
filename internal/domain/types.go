package domain

// Status represents the publish state of a content item
type Status string

const (
	// StatusDraft indicates content that is not visible and has no schedule
	StatusDraft Status = "draft"
	// StatusScheduled marks content with a future publish time configured
	StatusScheduled Status = "scheduled"
	// StatusPublished identifies content available to app users
	StatusPublished Status = "published"
)

// Kind identifies the family of media a content item belongs to.
type Kind string

const (
	KindWallpaper   Kind = "wallpaper"
	KindBanner      Kind = "banner"
	KindMedia       Kind = "media"
	KindSparkle     Kind = "sparkle"
	KindPopupBanner Kind = "popup_banner"
)

// Kinds lists every supported content kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindWallpaper,
		KindBanner,
		KindMedia,
		KindSparkle,
		KindPopupBanner,
	}
}
