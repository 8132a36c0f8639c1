package domain

// System config keys read by the storefront.
const (
	ConfigShowReview = "core.listing.showReview"
)

// SystemConfigValue is one stored config entry. SalesChannelID is empty for
// the global default.
type SystemConfigValue struct {
	Key            string `json:"key"`
	Value          any    `json:"value"`
	SalesChannelID string `json:"sales_channel_id,omitempty"`
}

// SeoURL maps a technical path to its human readable form.
type SeoURL struct {
	ID             string `json:"id"`
	SalesChannelID string `json:"sales_channel_id"`
	LanguageID     string `json:"language_id"`
	RouteName      string `json:"route_name"`
	ForeignKey     string `json:"foreign_key"`
	PathInfo       string `json:"path_info"`
	SeoPathInfo    string `json:"seo_path_info"`
	IsCanonical    bool   `json:"is_canonical"`
}
