package suggest

import "testing"

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilar(t *testing.T) {
	known := []string{"FullName", "FirstName", "LastName", "Age"}

	got := Similar("FulName", known)
	if len(got) == 0 || got[0] != "FullName" {
		t.Errorf("Similar(FulName) = %v", got)
	}

	if got := Similar("CompletelyDifferent", known); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestSimilarCaseInsensitive(t *testing.T) {
	got := Similar("fullname", []string{"FullName"})
	if len(got) != 1 || got[0] != "FullName" {
		t.Errorf("Similar = %v", got)
	}
}

func TestBest(t *testing.T) {
	if got := Best("Submt", []string{"Submit", "Reset"}); got != "Submit" {
		t.Errorf("Best = %q", got)
	}
	if got := Best("zzzzzzz", []string{"Submit"}); got != "" {
		t.Errorf("Best = %q, want empty", got)
	}
}
