package storage

import (
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSavedStore(t *testing.T) {
	ss := NewSavedStore(openTestDB(t))

	if ss.Count() != 0 {
		t.Fatalf("Count = %d on fresh db", ss.Count())
	}

	first := SavedImage{URL: "https://i.waifu.pics/a.png", Path: "/tmp/a.png", Tag: "waifu", Mode: "sfw"}
	second := SavedImage{URL: "https://i.waifu.pics/b.gif", Path: "/tmp/b.gif", Tag: "hug", Mode: "sfw"}
	for _, s := range []SavedImage{first, second} {
		if err := ss.Add(s); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	if ss.Count() != 2 {
		t.Errorf("Count = %d, want 2", ss.Count())
	}
	if !ss.Has(first.URL) || ss.Has("https://i.waifu.pics/zzz.png") {
		t.Error("Has reports wrong membership")
	}

	list, err := ss.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List returned %d items", len(list))
	}
	if list[0].URL != second.URL {
		t.Errorf("newest first: got %q", list[0].URL)
	}
	if list[0].SavedAt.IsZero() {
		t.Error("SavedAt should be parsed")
	}

	limited, err := ss.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("List(1) returned %d items", len(limited))
	}
}

func TestRenderSaved(t *testing.T) {
	out := RenderSaved(nil)
	if !strings.Contains(out, "Nothing saved yet") {
		t.Errorf("empty render = %q", out)
	}

	out = RenderSaved([]SavedImage{{URL: "https://x/y.png", Path: "/tmp/y.png", Tag: "pat", Mode: "sfw"}})
	if !strings.Contains(out, "/tmp/y.png") || !strings.Contains(out, "sfw/pat") {
		t.Errorf("render = %q", out)
	}
}
