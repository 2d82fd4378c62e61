package models

// MediaTotals are raw aggregates over all media rows.
type MediaTotals struct {
	Count     int   `json:"count"`
	Bytes     int64 `json:"bytes"`
	Downloads int   `json:"downloads"`
}

// StorageStats summarizes stored media.
type StorageStats struct {
	TotalMedia    int    `json:"total_media"`
	TotalSize     int64  `json:"total_size"`
	FormattedSize string `json:"formatted_size"`
	AverageSize   int64  `json:"average_size"`
}

// Dashboard is the administrative overview of the library.
type Dashboard struct {
	TotalAlbums    int         `json:"total_albums"`
	TotalMedia     int         `json:"total_media"`
	TotalSize      int64       `json:"total_size"`
	FormattedSize  string      `json:"formatted_size"`
	TotalDownloads int         `json:"total_downloads"`
	TotalViews     int         `json:"total_views"`
	Recent         []MediaItem `json:"recent"`
}
