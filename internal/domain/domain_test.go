package domain

import "testing"

func TestReaderSettings_NormalizeKeepsUnknownValues(t *testing.T) {
	s := ReaderSettings{}.Normalize()
	if s != DefaultReaderSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}

	s = ReaderSettings{Direction: "UP"}.Normalize()
	if s.Direction != "UP" {
		t.Fatalf("unknown direction should survive Normalize, got %q", s.Direction)
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseReaderDirection(t *testing.T) {
	d, err := ParseReaderDirection(" rtl ")
	if err != nil || d != DirectionRTL {
		t.Fatalf("want RTL, got %q (%v)", d, err)
	}
	if _, err := ParseReaderDirection("vertical"); err == nil {
		t.Fatalf("expected error for vertical")
	}
}

func TestChapter_Ordinal(t *testing.T) {
	cases := map[float64]int{0: 0, -1: 0, 1: 1, 10.5: 10, 99.9: 99}
	for in, want := range cases {
		if got := (Chapter{Number: in}).Ordinal(); got != want {
			t.Errorf("Ordinal(%v): want %d, got %d", in, want, got)
		}
	}
}

func TestNewPageRefs_ResolvesRelativeURLs(t *testing.T) {
	refs := NewPageRefs("http://127.0.0.1:4567/", []string{"/api/v1/manga/1/chapter/2/page/0", "https://cdn.example/p1.jpg"})
	if len(refs) != 2 {
		t.Fatalf("want 2 refs, got %d", len(refs))
	}
	if refs[0].URL != "http://127.0.0.1:4567/api/v1/manga/1/chapter/2/page/0" {
		t.Fatalf("unexpected url %q", refs[0].URL)
	}
	if refs[1].URL != "https://cdn.example/p1.jpg" || refs[1].Index != 1 {
		t.Fatalf("unexpected ref %+v", refs[1])
	}
}

func TestTracker_Remotes(t *testing.T) {
	if got := (Tracker{MangaID: 1}).Remotes(); len(got) != 0 {
		t.Fatalf("expected no remotes, got %+v", got)
	}
	got := Tracker{MangaID: 1, AniListID: 5, MALID: 7}.Remotes()
	if len(got) != 2 || got[0].Kind != TrackerAniList || got[1].ID != 7 {
		t.Fatalf("unexpected remotes %+v", got)
	}
}
