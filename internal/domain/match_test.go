package domain

import "testing"

func TestFindActiveItemBestMatch_ExactWinsOverPartial(t *testing.T) {
	entries := []MenuEntry{
		{ID: "a", RouterLink: "/a"},
		{ID: "ab", RouterLink: "/a/b"},
	}

	got := FindActiveItemBestMatch(entries, "/a/b")

	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Entry.ID != "ab" {
		t.Errorf("matched %q, want %q", got.Entry.ID, "ab")
	}
	if got.MatchedSegments != 2 {
		t.Errorf("MatchedSegments = %d, want 2", got.MatchedSegments)
	}
	if len(got.Ancestors) != 0 {
		t.Errorf("Ancestors = %v, want none", got.Ancestors)
	}
}

func TestFindActiveItemBestMatch_NoMatch(t *testing.T) {
	entries := []MenuEntry{
		{ID: "a", RouterLink: "/a"},
		{ID: "ext", URL: "https://x.test"},
	}

	tests := []struct {
		name    string
		entries []MenuEntry
		path    string
	}{
		{"nil entries", nil, "/a"},
		{"unrelated path", entries, "/zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindActiveItemBestMatch(tt.entries, tt.path); got != nil {
				t.Errorf("expected no match, got %+v", got)
			}
		})
	}
}

func TestFindActiveItemBestMatch_NormalizesSlashes(t *testing.T) {
	entries := []MenuEntry{{ID: "a", RouterLink: "a/b/"}}

	got := FindActiveItemBestMatch(entries, "/a/b")

	if got == nil || got.Entry.ID != "a" || got.MatchedSegments != 2 {
		t.Errorf("got %+v, want exact match on 'a'", got)
	}
}

func TestFindActiveItemBestMatch_PartialPrefersLongestLink(t *testing.T) {
	entries := []MenuEntry{
		{ID: "short", RouterLink: "/admin"},
		{ID: "long", RouterLink: "/admin/users"},
	}

	got := FindActiveItemBestMatch(entries, "/admin/users/42/edit")

	if got == nil || got.Entry.ID != "long" {
		t.Fatalf("got %+v, want 'long'", got)
	}
	if got.MatchedSegments != 2 {
		t.Errorf("MatchedSegments = %d, want 2", got.MatchedSegments)
	}
}

func TestFindActiveItemBestMatch_NestedWithAncestors(t *testing.T) {
	leaf := MenuEntry{ID: "users", RouterLink: "/admin/users"}
	mid := MenuEntry{ID: "admin", RouterLink: "/admin", Items: []MenuEntry{leaf}}
	root := MenuEntry{ID: "root", Items: []MenuEntry{mid}}

	got := FindActiveItemBestMatch([]MenuEntry{root}, "/admin/users")

	if got == nil || got.Entry.ID != "users" {
		t.Fatalf("got %+v, want 'users'", got)
	}
	if len(got.Ancestors) != 2 {
		t.Fatalf("Ancestors = %d entries, want 2", len(got.Ancestors))
	}
	if got.Ancestors[0].ID != "admin" || got.Ancestors[1].ID != "root" {
		t.Errorf("Ancestors = [%s %s], want innermost first [admin root]",
			got.Ancestors[0].ID, got.Ancestors[1].ID)
	}
}

func TestFindActiveItemBestMatch_NestedPartialBeatsShallowPartial(t *testing.T) {
	entries := []MenuEntry{
		{ID: "shop", RouterLink: "/shop", Items: []MenuEntry{
			{ID: "orders", RouterLink: "/shop/orders"},
		}},
	}

	got := FindActiveItemBestMatch(entries, "/shop/orders/7")

	if got == nil || got.Entry.ID != "orders" {
		t.Fatalf("got %+v, want 'orders'", got)
	}
	if len(got.Ancestors) != 1 || got.Ancestors[0].ID != "shop" {
		t.Errorf("Ancestors = %+v, want [shop]", got.Ancestors)
	}
}

func TestFindActiveItemBestMatch_TieBreakFirstEncountered(t *testing.T) {
	tests := []struct {
		name    string
		entries []MenuEntry
		path    string
		want    string
	}{
		{
			name: "equal partial siblings",
			entries: []MenuEntry{
				{ID: "first", RouterLink: "/a"},
				{ID: "second", RouterLink: "/a"},
			},
			path: "/a/b",
			want: "first",
		},
		{
			name: "nested exact before sibling exact",
			entries: []MenuEntry{
				{ID: "group", Items: []MenuEntry{{ID: "nested", RouterLink: "/x"}}},
				{ID: "sibling", RouterLink: "/x"},
			},
			path: "/x",
			want: "nested",
		},
		{
			name: "shallow partial before equal nested partial",
			entries: []MenuEntry{
				{ID: "outer", RouterLink: "/a", Items: []MenuEntry{{ID: "inner", RouterLink: "a/"}}},
			},
			path: "/a/b",
			want: "outer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindActiveItemBestMatch(tt.entries, tt.path)
			if got == nil || got.Entry.ID != tt.want {
				t.Errorf("got %+v, want %q", got, tt.want)
			}
		})
	}
}

func TestFindActiveItemBestMatch_RootLink(t *testing.T) {
	entries := []MenuEntry{
		{ID: "home", RouterLink: "/"},
		{ID: "a", RouterLink: "/a"},
	}

	got := FindActiveItemBestMatch(entries, "/")

	if got == nil || got.Entry.ID != "home" {
		t.Errorf("got %+v, want 'home'", got)
	}
}
