package nav

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		fragment string
		want     Key
	}{
		{"", Key{Page: "README"}},
		{"#", Key{Page: "README"}},
		{"#chapter1", Key{Page: "chapter1"}},
		{"chapter1", Key{Page: "chapter1"}},
		{"#chapter1_Intro", Key{Page: "chapter1", Anchor: "Intro"}},
		{"#chapter1_a_b_c", Key{Page: "chapter1", Anchor: "a_b_c"}},
		{"#_orphan", Key{Page: "README", Anchor: "orphan"}},
		{"#chapter1_", Key{Page: "chapter1"}},
	}
	for _, tt := range tests {
		got := ParseKey(tt.fragment, "README")
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.fragment, got, tt.want)
		}
	}
}

func TestKeyFragment(t *testing.T) {
	if got := (Key{Page: "p"}).Fragment(); got != "p" {
		t.Errorf("Fragment() = %q, want %q", got, "p")
	}
	if got := (Key{Page: "p", Anchor: "Heading One"}).Fragment(); got != "p_Heading One" {
		t.Errorf("Fragment() = %q, want %q", got, "p_Heading One")
	}
	if got := (Key{Page: "guide"}).Resource(); got != "guide.md" {
		t.Errorf("Resource() = %q, want guide.md", got)
	}
}

func TestResolverRoundTrip(t *testing.T) {
	loc := NewMemoryLocation("", nil)
	r := NewResolver(loc, "README")

	if got := r.ParseCurrentKey(); got != (Key{Page: "README"}) {
		t.Fatalf("empty fragment resolved to %+v", got)
	}

	r.WriteKey("chapter2", "")
	if got := r.ParseCurrentKey(); got != (Key{Page: "chapter2"}) {
		t.Errorf("after WriteKey got %+v", got)
	}
	if loc.Fragment() != "chapter2" {
		t.Errorf("fragment = %q, want chapter2", loc.Fragment())
	}
}

func TestWriteAnchorReplaces(t *testing.T) {
	loc := NewMemoryLocation("#p", nil)
	r := NewResolver(loc, "README")

	r.WriteKey("p", "a")
	r.WriteAnchor("a2")

	if loc.Fragment() != "p_a2" {
		t.Errorf("fragment = %q, want p_a2", loc.Fragment())
	}

	r.WriteAnchor("a3")
	if loc.Fragment() != "p_a3" {
		t.Errorf("fragment = %q, want p_a3", loc.Fragment())
	}
}

func TestMemoryLocationNotifies(t *testing.T) {
	var seen []string
	loc := NewMemoryLocation("", func(f string) { seen = append(seen, f) })

	loc.SetFragment("#one")
	loc.Sync("#two")
	loc.SetFragment("three")

	if len(seen) != 2 || seen[0] != "one" || seen[1] != "three" {
		t.Errorf("notifications = %v, want [one three]", seen)
	}
	if loc.Fragment() != "three" {
		t.Errorf("fragment = %q, want three", loc.Fragment())
	}
}

func TestPageFromHref(t *testing.T) {
	tests := []struct{ href, want string }{
		{"chapter1.md", "chapter1"},
		{"./chapter1.md", "chapter1"},
		{"guide/setup.md", "guide/setup"},
		{"v1.2.md", "v1.2"},
		{"README.md#usage", "README"},
		{"%E5%8F%98%E9%87%8F.md", "变量"},
		{"my%20notes.md", "my notes"},
		{"100%.md", "100%"},
		{"README", "README"},
	}
	for _, tt := range tests {
		if got := PageFromHref(tt.href); got != tt.want {
			t.Errorf("PageFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
