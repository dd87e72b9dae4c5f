package strings

import "testing"

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"FirstName":    "first_name",
		"HTTPRequest":  "http_request",
		"Person":       "person",
		"APIURL":       "apiurl",
		"HTTPSettings": "http_settings",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToPascalCase(t *testing.T) {
	cases := map[string]string{
		"firstName": "FirstName",
		"userID":    "UserID",
		"api_url":   "APIURL",
		"name":      "Name",
		"fullName":  "FullName",
	}
	for in, want := range cases {
		if got := ToPascalCase(in); got != want {
			t.Errorf("ToPascalCase(%q) = %q, want %q", in, got, want)
		}
	}
}
