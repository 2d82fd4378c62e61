package models

import (
	"testing"
	"time"
)

func TestParseAlbumSort(t *testing.T) {
	tests := []struct {
		raw     string
		want    AlbumSort
		wantErr bool
	}{
		{raw: "", want: AlbumSortDate},
		{raw: " Name ", want: AlbumSortName},
		{raw: "size", want: AlbumSortSize},
		{raw: "date", want: AlbumSortDate},
		{raw: "views", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAlbumSort(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%q: expected %s, got %s (%v)", tt.raw, tt.want, got, err)
		}
	}
}

func TestSortAlbums(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	albums := func() []Album {
		return []Album{
			{ID: "a", Name: "beach", MediaCount: 2, CreatedAt: base},
			{ID: "b", Name: "Alps", MediaCount: 9, CreatedAt: base.Add(2 * time.Hour)},
			{ID: "c", Name: "city", MediaCount: 2, CreatedAt: base.Add(time.Hour)},
		}
	}
	ids := func(list []Album) string {
		out := ""
		for _, a := range list {
			out += a.ID
		}
		return out
	}

	for by, want := range map[AlbumSort]string{
		AlbumSortDate: "bca",
		AlbumSortName: "bac",
		AlbumSortSize: "bac",
	} {
		list := albums()
		SortAlbums(list, by)
		if got := ids(list); got != want {
			t.Fatalf("%s: expected %s, got %s", by, want, got)
		}
	}
}
