package clips

import "github.com/manifestlabs/manifest/internal/ffmpeg"

// Platform names an output geometry/encoding profile
type Platform string

const (
	PlatformYouTubeShort  Platform = "youtube_short"
	PlatformTikTok        Platform = "tiktok"
	PlatformInstagramReel Platform = "instagram_reel"
	PlatformYouTube       Platform = "youtube"
	PlatformOther         Platform = "other"
)

// Vertical short-form output geometry (9:16)
const (
	verticalWidth  = 1080
	verticalHeight = 1920
)

// ParsePlatform maps a settings string onto a known platform; anything
// unrecognized passes through unscaled as "other"
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformYouTubeShort, PlatformTikTok, PlatformInstagramReel, PlatformYouTube:
		return Platform(s)
	default:
		return PlatformOther
	}
}

// Vertical reports whether the platform requires 9:16 reframing
func (p Platform) Vertical() bool {
	switch p {
	case PlatformYouTubeShort, PlatformTikTok, PlatformInstagramReel:
		return true
	}
	return false
}

// Filter returns the reframing filter chain for the platform, or ""
// for platforms that pass through unscaled. Vertical platforms scale to
// the fixed output height and center-crop to the fixed output width.
func (p Platform) Filter() string {
	if !p.Vertical() {
		return ""
	}
	return ffmpeg.NewFilterBuilder().
		ScaleHeight(verticalHeight).
		CropCentered(verticalWidth, verticalHeight).
		Build()
}
