package theme

import "testing"

func TestByName(t *testing.T) {
	if got := ByName("dracula"); got.Name != "Dracula" {
		t.Errorf("ByName(dracula) = %q", got.Name)
	}
	if got := ByName("no-such-theme"); got.Slug != "catppuccin-mocha" {
		t.Errorf("fallback = %q", got.Slug)
	}
}

func TestNext_Cycles(t *testing.T) {
	all := All()
	slug := all[0].Slug
	for range all {
		slug = Next(slug).Slug
	}
	if slug != all[0].Slug {
		t.Errorf("after a full cycle got %q, want %q", slug, all[0].Slug)
	}
	if Next("unknown").Slug != all[0].Slug {
		t.Error("unknown slug should restart at the first theme")
	}
}

func TestSlugsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, th := range All() {
		if seen[th.Slug] {
			t.Errorf("duplicate slug %q", th.Slug)
		}
		seen[th.Slug] = true
	}
}
