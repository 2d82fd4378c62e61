package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gallery/internal/blobstore"
	"gallery/internal/models"
	"gallery/internal/store"
	"gallery/internal/thumbnail"
)

type testEnv struct {
	lib   *Library
	store *store.Store
	cas   *blobstore.LocalCAS
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	return newTestEnvWithBlobs(t, opts, nil)
}

// newTestEnvWithBlobs builds a library over a temp store and CAS. wrap, when
// set, may decorate the CAS seen by the library.
func newTestEnvWithBlobs(t *testing.T, opts Options, wrap func(*blobstore.LocalCAS) blobstore.BlobStore) *testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "gallery.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cas, err := blobstore.NewLocalCAS(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("new cas: %v", err)
	}
	var blobs blobstore.BlobStore = cas
	if wrap != nil {
		blobs = wrap(cas)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Logger == nil {
		opts.Logger = logger
	}
	deriver := thumbnail.NewWithGenerators(thumbnail.Options{Logger: logger}, thumbnail.NewImageGenerator())
	return &testEnv{lib: New(st, st, blobs, deriver, opts), store: st, cas: cas}
}

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngUpload(t *testing.T, name string, shade uint8) models.Upload {
	t.Helper()
	data := testPNG(t, 32, 24, color.RGBA{R: shade, G: 40, B: 200, A: 255})
	return models.Upload{Filename: name, MimeType: "image/png", Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func rawUpload(name, mimeType string, data []byte) models.Upload {
	return models.Upload{Filename: name, MimeType: mimeType, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func (e *testEnv) mustAlbum(t *testing.T, name string) models.Album {
	t.Helper()
	album, err := e.lib.CreateAlbum(context.Background(), name, "")
	if err != nil {
		t.Fatalf("create album %q: %v", name, err)
	}
	return album
}

func (e *testEnv) mustAdd(t *testing.T, albumID string, up models.Upload) models.MediaItem {
	t.Helper()
	item, err := e.lib.AddMedia(context.Background(), albumID, up)
	if err != nil {
		t.Fatalf("add media %q: %v", up.Filename, err)
	}
	return item
}

func (e *testEnv) mustGetAlbum(t *testing.T, id string) *models.Album {
	t.Helper()
	album, err := e.lib.GetAlbum(context.Background(), id)
	if err != nil {
		t.Fatalf("get album: %v", err)
	}
	if album == nil {
		t.Fatalf("album %s not found", id)
	}
	return album
}

func readAll(t *testing.T, content *Content) []byte {
	t.Helper()
	defer content.Reader.Close()
	data, err := io.ReadAll(content.Reader)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	return data
}

func TestCreateAlbumRequiresName(t *testing.T) {
	env := newTestEnv(t, Options{})
	_, err := env.lib.CreateAlbum(context.Background(), "  ", "desc")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ErrorCode(err) != ErrCodeMissingRequired {
		t.Fatalf("expected code %d, got %d", ErrCodeMissingRequired, ErrorCode(err))
	}
}

func TestAddMediaSetsCountAndCover(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Trip")

	item := env.mustAdd(t, album.ID, pngUpload(t, "a.png", 10))
	if item.Type != models.MediaTypePhoto {
		t.Fatalf("expected photo, got %s", item.Type)
	}
	if !item.HasThumbnail() {
		t.Fatal("expected thumbnail")
	}

	got := env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 1 {
		t.Fatalf("expected media count 1, got %d", got.MediaCount)
	}
	if got.Cover == nil || got.Cover.MediaID != item.ID || got.Cover.BlobID != item.ThumbnailBlobID {
		t.Fatalf("expected cover from %s, got %#v", item.ID, got.Cover)
	}

	thumb, err := env.lib.OpenThumbnail(ctx, item.ID)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if thumb.MimeType != "image/jpeg" || thumb.Filename != "a.jpg" {
		t.Fatalf("unexpected thumbnail content %#v", thumb)
	}
	if len(readAll(t, thumb)) == 0 {
		t.Fatal("expected thumbnail bytes")
	}

	cover, err := env.lib.OpenAlbumCover(ctx, album.ID)
	if err != nil {
		t.Fatalf("open cover: %v", err)
	}
	if cover.MimeType != "image/jpeg" {
		t.Fatalf("expected jpeg cover, got %s", cover.MimeType)
	}
	readAll(t, cover)
}

func TestAddMediaUnknownAlbum(t *testing.T) {
	env := newTestEnv(t, Options{})
	_, err := env.lib.AddMedia(context.Background(), "al-missing", pngUpload(t, "a.png", 1))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("unknown album must not be a validation error: %v", err)
	}
	if ErrorCode(err) != ErrCodeAlbumNotFound {
		t.Fatalf("expected code %d, got %d", ErrCodeAlbumNotFound, ErrorCode(err))
	}
}

func assertLibraryEmpty(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	items, err := env.lib.GetAllMedia(ctx)
	if err != nil {
		t.Fatalf("all media: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no media, got %d", len(items))
	}
	info, err := env.store.StoreInfo(ctx)
	if err != nil {
		t.Fatalf("store info: %v", err)
	}
	if info.TotalBlobs != 0 {
		t.Fatalf("expected no blobs, got %d", info.TotalBlobs)
	}
}

func TestAddMediaFileTooLarge(t *testing.T) {
	t.Run("declared size over default limit", func(t *testing.T) {
		env := newTestEnv(t, Options{})
		album := env.mustAlbum(t, "Big")
		up := models.Upload{Filename: "huge.jpg", MimeType: "image/jpeg", Size: 51 << 20, Content: strings.NewReader("x")}
		_, err := env.lib.AddMedia(context.Background(), album.ID, up)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected file too large, got %v", err)
		}
		assertLibraryEmpty(t, env)
		if got := env.mustGetAlbum(t, album.ID); got.MediaCount != 0 {
			t.Fatalf("expected count 0, got %d", got.MediaCount)
		}
	})

	t.Run("understated size", func(t *testing.T) {
		env := newTestEnv(t, Options{MaxUploadBytes: 1024})
		album := env.mustAlbum(t, "Sneaky")
		up := models.Upload{Filename: "a.jpg", MimeType: "image/jpeg", Size: -1, Content: bytes.NewReader(make([]byte, 2048))}
		_, err := env.lib.AddMedia(context.Background(), album.ID, up)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected file too large, got %v", err)
		}
		if ErrorCode(err) != ErrCodeFileTooLarge {
			t.Fatalf("expected code %d, got %d", ErrCodeFileTooLarge, ErrorCode(err))
		}
		assertLibraryEmpty(t, env)
	})
}

func TestAddMediaUnsupportedType(t *testing.T) {
	env := newTestEnv(t, Options{})
	album := env.mustAlbum(t, "Docs")
	_, err := env.lib.AddMedia(context.Background(), album.ID, rawUpload("doc.pdf", "application/pdf", []byte("%PDF")))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	assertLibraryEmpty(t, env)
}

func TestAddMediaAllowListIsConfigurable(t *testing.T) {
	env := newTestEnv(t, Options{AllowedMediaTypes: []string{"image/png"}})
	album := env.mustAlbum(t, "PNG only")
	if _, err := env.lib.AddMedia(context.Background(), album.ID, rawUpload("a.jpg", "image/jpeg", []byte("jpeg"))); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	env.mustAdd(t, album.ID, pngUpload(t, "a.png", 5))
}

func TestAddMediaWithoutThumbnail(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Broken")
	payload := []byte("not really a jpeg")

	item := env.mustAdd(t, album.ID, rawUpload("broken.jpg", "image/jpeg; charset=binary", payload))
	if item.HasThumbnail() {
		t.Fatal("expected no thumbnail")
	}
	if item.MimeType != "image/jpeg" {
		t.Fatalf("expected normalized mime type, got %q", item.MimeType)
	}

	got := env.mustGetAlbum(t, album.ID)
	if got.Cover == nil || got.Cover.BlobID != item.DataBlobID {
		t.Fatalf("expected cover from data blob, got %#v", got.Cover)
	}

	thumb, err := env.lib.OpenThumbnail(ctx, item.ID)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if data := readAll(t, thumb); !bytes.Equal(data, payload) {
		t.Fatalf("expected thumbnail fallback to data, got %q", data)
	}
	if thumb.MimeType != "image/jpeg" || thumb.Filename != "broken.jpg" {
		t.Fatalf("unexpected fallback metadata %#v", thumb)
	}
}

func TestVideoNeverBecomesCover(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Clips")

	video := env.mustAdd(t, album.ID, rawUpload("clip.mp4", "video/mp4", []byte("ftypisom")))
	if video.Type != models.MediaTypeVideo {
		t.Fatalf("expected video, got %s", video.Type)
	}
	got := env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 1 || got.Cover != nil {
		t.Fatalf("expected count 1 and no cover, got %d %#v", got.MediaCount, got.Cover)
	}

	_, err := env.lib.SetAlbumCover(ctx, album.ID, video.ID)
	if !errors.Is(err, ErrValidation) || ErrorCode(err) != ErrCodeInvalidCoverPick {
		t.Fatalf("expected invalid cover pick, got %v (code %d)", err, ErrorCode(err))
	}

	if _, err := env.lib.OpenAlbumCover(ctx, album.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing cover, got %v", err)
	}
}

func TestSetAlbumCover(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Pick")
	first := env.mustAdd(t, album.ID, pngUpload(t, "1.png", 1))
	second := env.mustAdd(t, album.ID, pngUpload(t, "2.png", 2))

	if got := env.mustGetAlbum(t, album.ID); got.Cover.MediaID != first.ID {
		t.Fatalf("expected first photo as cover, got %#v", got.Cover)
	}
	updated, err := env.lib.SetAlbumCover(ctx, album.ID, second.ID)
	if err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if updated.Cover.MediaID != second.ID {
		t.Fatalf("expected second photo as cover, got %#v", updated.Cover)
	}

	other := env.mustAlbum(t, "Other")
	if _, err := env.lib.SetAlbumCover(ctx, other.ID, second.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for foreign media, got %v", err)
	}
	if _, err := env.lib.SetAlbumCover(ctx, "al-missing", second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMediaRederivesCoverAndSweeps(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Sweep")
	first := env.mustAdd(t, album.ID, pngUpload(t, "1.png", 10))
	second := env.mustAdd(t, album.ID, pngUpload(t, "2.png", 20))

	firstData, err := env.store.GetBlob(ctx, first.DataBlobID)
	if err != nil || firstData == nil {
		t.Fatalf("get blob: %v", err)
	}

	if err := env.lib.DeleteMedia(ctx, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	got := env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 1 {
		t.Fatalf("expected count 1, got %d", got.MediaCount)
	}
	if got.Cover == nil || got.Cover.MediaID != second.ID {
		t.Fatalf("expected cover re-derived from second, got %#v", got.Cover)
	}

	exists, err := env.cas.Exists(ctx, firstData.BlobKey)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected swept payload bytes")
	}

	if err := env.lib.DeleteMedia(ctx, second.ID); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	got = env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 0 || got.Cover != nil {
		t.Fatalf("expected empty album without cover, got %d %#v", got.MediaCount, got.Cover)
	}

	if err := env.lib.DeleteMedia(ctx, second.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	assertLibraryEmpty(t, env)
}

func TestDeleteSharedContentKeepsOtherReference(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	a := env.mustAlbum(t, "A")
	b := env.mustAlbum(t, "B")
	one := env.mustAdd(t, a.ID, pngUpload(t, "same.png", 7))
	two := env.mustAdd(t, b.ID, pngUpload(t, "same.png", 7))
	if one.DataBlobID != two.DataBlobID {
		t.Fatalf("expected shared data blob, got %s and %s", one.DataBlobID, two.DataBlobID)
	}

	if err := env.lib.DeleteAlbum(ctx, a.ID); err != nil {
		t.Fatalf("delete album: %v", err)
	}
	content, err := env.lib.OpenMediaContent(ctx, two.ID)
	if err != nil {
		t.Fatalf("open surviving content: %v", err)
	}
	if len(readAll(t, content)) == 0 {
		t.Fatal("expected surviving bytes")
	}
}

func TestDeleteAlbumCascades(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	doomed := env.mustAlbum(t, "Doomed")
	kept := env.mustAlbum(t, "Kept")
	env.mustAdd(t, doomed.ID, pngUpload(t, "1.png", 1))
	env.mustAdd(t, doomed.ID, rawUpload("2.mp4", "video/mp4", []byte("clip")))
	survivor := env.mustAdd(t, kept.ID, pngUpload(t, "3.png", 3))

	if err := env.lib.DeleteAlbum(ctx, doomed.ID); err != nil {
		t.Fatalf("delete album: %v", err)
	}
	if album, err := env.lib.GetAlbum(ctx, doomed.ID); err != nil || album != nil {
		t.Fatalf("expected album gone, got %#v, %v", album, err)
	}
	items, err := env.lib.GetAlbumMedia(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("album media: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no orphaned media, got %d", len(items))
	}
	all, err := env.lib.GetAllMedia(ctx)
	if err != nil {
		t.Fatalf("all media: %v", err)
	}
	if len(all) != 1 || all[0].ID != survivor.ID {
		t.Fatalf("expected only the survivor, got %#v", all)
	}

	if err := env.lib.DeleteAlbum(ctx, doomed.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	unreferenced, err := env.store.ListUnreferencedBlobs(ctx, 0)
	if err != nil {
		t.Fatalf("unreferenced: %v", err)
	}
	if len(unreferenced) != 0 {
		t.Fatalf("expected sweep to leave nothing, got %d", len(unreferenced))
	}
}

func TestEndToEndAlbumLifecycle(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "A")

	photo := env.mustAdd(t, album.ID, pngUpload(t, "photo.png", 90))
	video := env.mustAdd(t, album.ID, rawUpload("video.mp4", "video/mp4", []byte("not a real mp4")))

	got := env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 2 {
		t.Fatalf("expected count 2, got %d", got.MediaCount)
	}
	if got.Cover == nil || got.Cover.MediaID != photo.ID {
		t.Fatalf("expected cover from photo, got %#v", got.Cover)
	}
	cover := *got.Cover

	if err := env.lib.DeleteMedia(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	got = env.mustGetAlbum(t, album.ID)
	if got.MediaCount != 1 {
		t.Fatalf("expected count 1, got %d", got.MediaCount)
	}
	if got.Cover == nil || *got.Cover != cover {
		t.Fatalf("expected cover unchanged, got %#v", got.Cover)
	}

	if err := env.lib.DeleteAlbum(ctx, album.ID); err != nil {
		t.Fatalf("delete album: %v", err)
	}
	items, err := env.lib.GetAlbumMedia(ctx, album.ID)
	if err != nil {
		t.Fatalf("album media: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no media, got %d", len(items))
	}
	if album, err := env.lib.GetAlbum(ctx, album.ID); err != nil || album != nil {
		t.Fatalf("expected absent album, got %#v, %v", album, err)
	}
}

func TestConcurrentAddMediaKeepsCount(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Busy")

	const n = 8
	uploads := make([]models.Upload, n)
	for i := range uploads {
		uploads[i] = pngUpload(t, fmt.Sprintf("%d.png", i), uint8(i*20))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, up := range uploads {
		wg.Add(1)
		go func(up models.Upload) {
			defer wg.Done()
			_, err := env.lib.AddMedia(ctx, album.ID, up)
			errs <- err
		}(up)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("add media: %v", err)
		}
	}

	got := env.mustGetAlbum(t, album.ID)
	if got.MediaCount != n {
		t.Fatalf("expected count %d, got %d", n, got.MediaCount)
	}
	if got.Cover == nil {
		t.Fatal("expected cover")
	}
	if size := env.lib.locks.size(); size != 0 {
		t.Fatalf("expected released locks, got %d", size)
	}
}

func TestDownloadMediaCounts(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Dl")
	up := pngUpload(t, "a.png", 4)
	item := env.mustAdd(t, album.ID, up)

	content, err := env.lib.DownloadMedia(ctx, item.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if content.MimeType != "image/png" || content.Size != item.Size {
		t.Fatalf("unexpected content %#v", content)
	}
	readAll(t, content)

	got, err := env.lib.GetMediaItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	if got.Downloads != 1 {
		t.Fatalf("expected 1 download, got %d", got.Downloads)
	}

	if _, err := env.lib.DownloadMedia(ctx, "md-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := env.lib.IncrementDownloadCount(ctx, "md-missing"); err != nil {
		t.Fatalf("increment unknown should be a no-op: %v", err)
	}
}

func TestSearchMediaDeduplicates(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	beach := env.mustAlbum(t, "Beach Trip")
	office := env.mustAlbum(t, "Office")

	inBeach := env.mustAdd(t, beach.ID, pngUpload(t, "day1.png", 1))
	sunset := env.mustAdd(t, office.ID, pngUpload(t, "beach_sunset.jpg", 2))
	env.mustAdd(t, office.ID, pngUpload(t, "desk.png", 3))

	results, err := env.lib.SearchMedia(ctx, "beach")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	seen := map[string]int{}
	for _, item := range results {
		seen[item.ID]++
	}
	if len(results) != 2 || seen[inBeach.ID] != 1 || seen[sunset.ID] != 1 {
		t.Fatalf("expected beach album media and sunset once each, got %#v", results)
	}

	blank, err := env.lib.SearchMedia(ctx, "   ")
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if len(blank) != 0 {
		t.Fatalf("expected no results for blank query, got %d", len(blank))
	}

	if _, err := env.lib.SearchMedia(ctx, strings.Repeat("x", maxSearchQueryLen+1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for long query, got %v", err)
	}
}

func TestStatsAndDashboard(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	stats, err := env.lib.GetStorageStats(ctx)
	if err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if stats.TotalMedia != 0 || stats.AverageSize != 0 || stats.FormattedSize != "0 B" {
		t.Fatalf("unexpected empty stats %#v", stats)
	}

	album := env.mustAlbum(t, "Stats")
	a := env.mustAdd(t, album.ID, rawUpload("a.mp4", "video/mp4", make([]byte, 1000)))
	b := env.mustAdd(t, album.ID, rawUpload("b.mp4", "video/mp4", make([]byte, 2000)))
	if err := env.lib.IncrementAlbumViews(ctx, album.ID); err != nil {
		t.Fatalf("views: %v", err)
	}
	if err := env.lib.IncrementDownloadCount(ctx, a.ID); err != nil {
		t.Fatalf("downloads: %v", err)
	}

	stats, err = env.lib.GetStorageStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalMedia != 2 || stats.TotalSize != 3000 || stats.AverageSize != 1500 {
		t.Fatalf("unexpected stats %#v", stats)
	}
	if stats.FormattedSize != "2.9 KiB" {
		t.Fatalf("unexpected formatted size %q", stats.FormattedSize)
	}

	dash, err := env.lib.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalAlbums != 1 || dash.TotalMedia != 2 || dash.TotalViews != 1 || dash.TotalDownloads != 1 {
		t.Fatalf("unexpected dashboard %#v", dash)
	}
	if len(dash.Recent) != 2 || dash.Recent[0].ID != b.ID {
		t.Fatalf("expected newest first in recent, got %#v", dash.Recent)
	}
}

func TestUpdateAlbum(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Old")

	name := "New"
	updated, err := env.lib.UpdateAlbum(ctx, album.ID, models.AlbumUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Name != "New" {
		t.Fatalf("unexpected update result %#v", updated)
	}

	missing, err := env.lib.UpdateAlbum(ctx, "al-missing", models.AlbumUpdate{Name: &name})
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown album, got %#v, %v", missing, err)
	}

	blank := " "
	if _, err := env.lib.UpdateAlbum(ctx, album.ID, models.AlbumUpdate{Name: &blank}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.png", "a.png"},
		{"  dir/b.jpg ", "b.jpg"},
		{`C:\Users\me\c.gif`, "c.gif"},
		{"", ""},
		{"..", ""},
		{"/", ""},
	}
	for _, tc := range tests {
		if got := cleanFilename(tc.in); got != tc.want {
			t.Fatalf("cleanFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code int
	}{
		{"duplicate", fmt.Errorf("insert: %w", store.ErrDuplicateID), ErrDuplicateID, ErrCodeIDExists},
		{"store full", store.ErrStorageFull, ErrStorageQuota, ErrCodeStorageQuota},
		{"cas full", blobstore.ErrNoSpace, ErrStorageQuota, ErrCodeStorageQuota},
		{"validation", store.ErrValidation, ErrValidation, ErrCodeInvalidArgument},
		{"missing bytes", blobstore.ErrNotFound, ErrNotFound, ErrCodeBlobNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected kind %v, got %v", tc.kind, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause preserved, got %v", err)
			}
			if ErrorCode(err) != tc.code {
				t.Fatalf("expected code %d, got %d", tc.code, ErrorCode(err))
			}
		})
	}

	if classify(nil) != nil {
		t.Fatal("expected nil")
	}
	if err := classify(context.Canceled); err != context.Canceled {
		t.Fatalf("expected context error to pass through, got %v", err)
	}
	if ErrorCode(errors.New("boom")) != ErrCodeInternal {
		t.Fatal("expected internal code for unclassified error")
	}
}

func TestListAlbumsSorted(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	zoo := env.mustAlbum(t, "zoo")
	attic := env.mustAlbum(t, "Attic")
	env.mustAdd(t, zoo.ID, pngUpload(t, "1.png", 1))
	env.mustAdd(t, zoo.ID, pngUpload(t, "2.png", 2))

	byName, err := env.lib.ListAlbumsSorted(ctx, models.AlbumSortName)
	if err != nil {
		t.Fatalf("sort by name: %v", err)
	}
	if len(byName) != 2 || byName[0].ID != attic.ID || byName[1].ID != zoo.ID {
		t.Fatalf("expected Attic before zoo, got %#v", byName)
	}

	bySize, err := env.lib.ListAlbumsSorted(ctx, models.AlbumSortSize)
	if err != nil {
		t.Fatalf("sort by size: %v", err)
	}
	if bySize[0].ID != zoo.ID || bySize[0].MediaCount != 2 {
		t.Fatalf("expected fullest album first, got %#v", bySize)
	}

	if _, err := env.lib.ListAlbumsSorted(ctx, models.AlbumSort("views")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown sort, got %v", err)
	}
}

func TestGetAlbumMediaByType(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	album := env.mustAlbum(t, "Mixed")
	other := env.mustAlbum(t, "Other")
	photo := env.mustAdd(t, album.ID, pngUpload(t, "photo.png", 3))
	video := env.mustAdd(t, album.ID, rawUpload("clip.mp4", "video/mp4", []byte("clip")))
	env.mustAdd(t, other.ID, rawUpload("elsewhere.mp4", "video/mp4", []byte("other clip")))

	videos, err := env.lib.GetAlbumMediaByType(ctx, album.ID, models.MediaTypeVideo)
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != video.ID {
		t.Fatalf("expected only the album's video, got %#v", videos)
	}

	photos, err := env.lib.GetAlbumMediaByType(ctx, album.ID, models.MediaTypePhoto)
	if err != nil {
		t.Fatalf("photos: %v", err)
	}
	if len(photos) != 1 || photos[0].ID != photo.ID {
		t.Fatalf("expected only the album's photo, got %#v", photos)
	}

	all, err := env.lib.GetAlbumMediaByType(ctx, album.ID, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected both items without a type, got %d (%v)", len(all), err)
	}

	if _, err := env.lib.GetAlbumMediaByType(ctx, album.ID, models.MediaType("audio")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}
