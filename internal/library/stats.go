package library

import (
	"context"

	"github.com/dustin/go-humanize"

	"gallery/internal/models"
)

// GetStorageStats summarizes stored media sizes.
func (l *Library) GetStorageStats(ctx context.Context) (models.StorageStats, error) {
	totals, err := l.media.MediaTotals(ctx)
	if err != nil {
		return models.StorageStats{}, classify(err)
	}
	stats := models.StorageStats{
		TotalMedia:    totals.Count,
		TotalSize:     totals.Bytes,
		FormattedSize: formatBytes(totals.Bytes),
	}
	if totals.Count > 0 {
		stats.AverageSize = totals.Bytes / int64(totals.Count)
	}
	return stats, nil
}

// GetDashboard aggregates album and media counters with the most recent
// uploads.
func (l *Library) GetDashboard(ctx context.Context) (models.Dashboard, error) {
	var dash models.Dashboard

	albums, err := l.albums.ListAlbums(ctx)
	if err != nil {
		return dash, classify(err)
	}
	dash.TotalAlbums = len(albums)
	for _, album := range albums {
		dash.TotalViews += album.Views
	}

	totals, err := l.media.MediaTotals(ctx)
	if err != nil {
		return dash, classify(err)
	}
	dash.TotalMedia = totals.Count
	dash.TotalSize = totals.Bytes
	dash.FormattedSize = formatBytes(totals.Bytes)
	dash.TotalDownloads = totals.Downloads

	recent, err := l.media.ListRecentMedia(ctx, dashboardRecentLimit)
	if err != nil {
		return dash, classify(err)
	}
	dash.Recent = recent
	return dash, nil
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
