package i18n

import "testing"

func TestNegotiate(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ja", "ja"},
		{"ja-JP,ja;q=0.9,en;q=0.8", "ja"},
		{"zh-CN,zh;q=0.9", "zh"},
		{"pt-BR", "pt"},
		{"fr-CA;q=0.8, de;q=0.9", "de"},
		{"ru", "en"},
		{"*", "en"},
		{";;;", "en"},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			t.Parallel()
			if got := c.Negotiate(tc.header); got != tc.want {
				t.Errorf("Negotiate(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestNegotiateRestricted(t *testing.T) {
	t.Parallel()

	c, err := Load(WithLocales([]string{"ja"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Negotiate("de"); got != "en" {
		t.Errorf("disabled locale must not be chosen, got %q", got)
	}
	if got := c.Negotiate("ja"); got != "ja" {
		t.Errorf("expected ja, got %q", got)
	}
}

func TestValidTag(t *testing.T) {
	t.Parallel()

	testCases := map[string]bool{
		"en":        true,
		"ja-JP":     true,
		"zh-Hans":   true,
		"pt-BR":     true,
		"x-default": true,
		"":          false,
		"en_US!":    false,
	}
	for value, want := range testCases {
		if got := ValidTag(value); got != want {
			t.Errorf("ValidTag(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestSameLanguage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		a, b string
		want bool
	}{
		{"ja", "ja-JP", true},
		{"en", "en-US", true},
		{"pt-BR", "pt", true},
		{"en", "ja", false},
		{"bad!", "en", false},
	}
	for _, tc := range testCases {
		if got := SameLanguage(tc.a, tc.b); got != tc.want {
			t.Errorf("SameLanguage(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
