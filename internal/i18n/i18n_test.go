package i18n

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "", want: "English", wantOK: true},
		{in: "spanish", want: "Spanish", wantOK: true},
		{in: " Japanese ", want: "Japanese", wantOK: true},
		{in: "pt-BR", want: "Portuguese", wantOK: true},
		{in: "de", want: "German", wantOK: true},
		{in: "Deutsch", want: "German", wantOK: true},
		{in: "Klingon", want: "Klingon", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.in)
		if ok != tt.wantOK || got.Name != tt.want {
			t.Fatalf("Resolve(%q) = %q/%v, want %q/%v", tt.in, got.Name, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStaticSetsAreComplete(t *testing.T) {
	for name, set := range static {
		for _, key := range keyOrder {
			if set[key] == "" {
				t.Fatalf("%s label set missing %q", name, key)
			}
		}
		if len(set) != len(keyOrder) {
			t.Fatalf("%s label set has %d keys, want %d", name, len(set), len(keyOrder))
		}
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	set, ok := Static(English)
	if !ok {
		t.Fatal("expected English static set")
	}
	set[KeyTitle] = "changed"
	if EnglishLabels()[KeyTitle] != "Legal Document Demystifier" {
		t.Fatal("static table was mutated through a returned set")
	}
	if _, ok := Static(Language{Name: "German"}); ok {
		t.Fatal("German has no static set")
	}
}

func TestGetFallsBackToEnglish(t *testing.T) {
	set := LabelSet{KeyTitle: "Titel"}
	if set.Get(KeyTitle) != "Titel" || set.Get(KeyClause) != "Clause" {
		t.Fatalf("unexpected lookups %q %q", set.Get(KeyTitle), set.Get(KeyClause))
	}
}
