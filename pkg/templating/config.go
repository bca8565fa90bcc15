package templating

// TemplateConfig holds the site-wide values exposed to templates.
type TemplateConfig struct {
	// SiteTitle is shown in page titles and headers.
	SiteTitle string `json:"site_title"`

	// BaseURL is the URL prefix under which the site is served. Every link
	// and asset reference is built from it, so it must end with a slash.
	BaseURL string `json:"base_url"`

	// MapTileURL is the Leaflet tile layer URL template used for area-of-use maps.
	MapTileURL string `json:"map_tile_url"`

	// MapAttribution is the HTML attribution shown on the map.
	MapAttribution string `json:"map_attribution"`
}

// DefaultConfig returns a TemplateConfig serving the site from the root
// with OpenStreetMap tiles.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		SiteTitle:      "Coordinate Reference Systems",
		BaseURL:        "/",
		MapTileURL:     "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		MapAttribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	}
}
