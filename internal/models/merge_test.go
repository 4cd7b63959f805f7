// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package models

import (
	"slices"
	"testing"
	"time"
)

var (
	t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func TestMergeMovie_Create(t *testing.T) {
	t.Parallel()

	m, res := MergeMovie(nil, MovieInput{
		Title:      "  Dune ",
		Genres:     []string{"sci-fi"},
		Director:   "Denis Villeneuve",
		PosterPath: "/uploads/dune.jpg",
	}, t0)

	if !res.Created || !res.Changed || !res.ImageAccepted {
		t.Fatalf("result = %+v, want created, changed, image accepted", res)
	}
	if m.Title != "Dune" || m.TitleKey != "dune" {
		t.Errorf("title = %q key = %q", m.Title, m.TitleKey)
	}
	if m.Actors == nil {
		t.Error("Actors should be an empty slice, not nil")
	}
	if !m.CreatedAt.Equal(t0) || !m.UpdatedAt.Equal(t0) {
		t.Errorf("timestamps not set to now")
	}
}

func TestMergeMovie_Existing(t *testing.T) {
	t.Parallel()

	existing := &Movie{
		Title:      "Dune",
		TitleKey:   "dune",
		Genres:     []string{"sci-fi"},
		Director:   "David Lynch",
		Actors:     []string{"Kyle MacLachlan"},
		Year:       1984,
		PosterPath: "/uploads/first.jpg",
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}

	tests := []struct {
		name          string
		in            MovieInput
		wantChanged   bool
		wantAccepted  bool
		wantDirector  string
		wantPoster    string
		wantYear      int
		wantUpdatedAt time.Time
	}{
		{
			name:          "identical input changes nothing",
			in:            MovieInput{Title: "dune", Director: "David Lynch", Year: 1984},
			wantDirector:  "David Lynch",
			wantPoster:    "/uploads/first.jpg",
			wantYear:      1984,
			wantUpdatedAt: t0,
		},
		{
			name:          "empty fields are ignored",
			in:            MovieInput{Title: "DUNE"},
			wantDirector:  "David Lynch",
			wantPoster:    "/uploads/first.jpg",
			wantYear:      1984,
			wantUpdatedAt: t0,
		},
		{
			name:          "text overwrites",
			in:            MovieInput{Title: "Dune", Director: "Denis Villeneuve", Year: 2021},
			wantChanged:   true,
			wantDirector:  "Denis Villeneuve",
			wantPoster:    "/uploads/first.jpg",
			wantYear:      2021,
			wantUpdatedAt: t1,
		},
		{
			name:          "second poster loses",
			in:            MovieInput{Title: "Dune", PosterPath: "/uploads/second.jpg"},
			wantDirector:  "David Lynch",
			wantPoster:    "/uploads/first.jpg",
			wantYear:      1984,
			wantUpdatedAt: t0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, res := MergeMovie(existing, tt.in, t1)
			if res.Created {
				t.Error("Created = true for existing record")
			}
			if res.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", res.Changed, tt.wantChanged)
			}
			if res.ImageAccepted != tt.wantAccepted {
				t.Errorf("ImageAccepted = %v, want %v", res.ImageAccepted, tt.wantAccepted)
			}
			if m.Director != tt.wantDirector || m.PosterPath != tt.wantPoster || m.Year != tt.wantYear {
				t.Errorf("got director=%q poster=%q year=%d", m.Director, m.PosterPath, m.Year)
			}
			if !m.UpdatedAt.Equal(tt.wantUpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", m.UpdatedAt, tt.wantUpdatedAt)
			}
			if m.Title != "Dune" {
				t.Errorf("Title = %q, stored title must be kept", m.Title)
			}
		})
	}

	if existing.Director != "David Lynch" {
		t.Error("existing record was mutated")
	}
}

func TestMergeMovie_FirstPosterWhenMissing(t *testing.T) {
	t.Parallel()

	existing := &Movie{Title: "Arrival", TitleKey: "arrival"}
	m, res := MergeMovie(existing, MovieInput{Title: "Arrival", PosterPath: "/p.jpg", PosterPublicID: "p"}, t1)
	if !res.ImageAccepted || !res.Changed || res.DetailsChanged {
		t.Fatalf("result = %+v, want accepted poster with no detail change", res)
	}
	if m.PosterPath != "/p.jpg" || m.PosterPublicID != "p" {
		t.Errorf("poster = %q/%q", m.PosterPath, m.PosterPublicID)
	}

	m, res = MergeMovie(existing, MovieInput{Title: "Arrival", Year: 2016}, t1)
	if !res.DetailsChanged || res.ImageAccepted || m.Year != 2016 {
		t.Errorf("result = %+v year = %d, want detail change only", res, m.Year)
	}
}

func TestMergeMovie_ListsDoNotAlias(t *testing.T) {
	t.Parallel()

	genres := []string{"drama"}
	existing := &Movie{Title: "Arrival", TitleKey: "arrival", Genres: []string{"sci-fi"}}
	m, _ := MergeMovie(existing, MovieInput{Title: "Arrival", Genres: genres}, t1)
	genres[0] = "changed"
	if m.Genres[0] != "drama" {
		t.Errorf("merged genres alias input slice: %v", m.Genres)
	}
	if existing.Genres[0] != "sci-fi" {
		t.Errorf("existing genres mutated: %v", existing.Genres)
	}
}

func TestMergeBook(t *testing.T) {
	t.Parallel()

	b, res := MergeBook(nil, BookInput{Title: "Story of Your Life", Author: "Ted Chiang"}, t0)
	if !res.Created || res.ImageAccepted {
		t.Fatalf("create result = %+v", res)
	}
	if b.TitleKey != "story of your life" {
		t.Errorf("TitleKey = %q", b.TitleKey)
	}

	b.CoverPath = "/uploads/cover1.jpg"
	merged, res := MergeBook(&b, BookInput{
		Title:           "story of your life",
		CoverPath:       "/uploads/cover2.jpg",
		PublicationYear: 1998,
	}, t1)
	if res.ImageAccepted {
		t.Error("second cover accepted")
	}
	if !res.Changed || merged.PublicationYear != 1998 {
		t.Errorf("year not merged: %+v %d", res, merged.PublicationYear)
	}
	if merged.CoverPath != "/uploads/cover1.jpg" {
		t.Errorf("CoverPath = %q", merged.CoverPath)
	}
}

func TestTitleKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Dune":                  "dune",
		"  DUNE  ":              "dune",
		"Story  of\tYour Life ": "story of your life",
		"":                      "",
	}
	for in, want := range tests {
		if got := TitleKey(in); got != want {
			t.Errorf("TitleKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"scifi, linguistics", []string{"scifi", "linguistics"}},
		{" a ,, ,b,", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		if got := SplitList(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNotificationTypeNormalize(t *testing.T) {
	t.Parallel()

	if got := NotificationType("NEW_FOLLOWER").Normalize(); got != NotificationNewFollower {
		t.Errorf("Normalize = %q", got)
	}
	if !NotificationType("LIKE").Valid() {
		t.Error("legacy LIKE should be valid")
	}
	if NotificationType("poke").Valid() {
		t.Error("unknown type reported valid")
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0}, {1, 10, 1}, {10, 10, 1}, {11, 10, 2}, {5, 0, 0},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.size); got != c.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}
