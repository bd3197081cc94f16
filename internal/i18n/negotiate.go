package i18n

import "golang.org/x/text/language"

// Negotiate picks the best enabled locale for an Accept-Language header.
// It returns the default locale when nothing matches or the header is malformed.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLocale
	}
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.defaultLocale
	}
	return c.codeAt(index)
}

// codeAt maps a matcher index back to a locale code. Matcher tags were
// registered default first, then in locale order without duplicates.
func (c *Catalog) codeAt(index int) string {
	codes := make([]string, 0, len(c.locales)+1)
	codes = append(codes, c.defaultLocale)
	for _, code := range c.locales {
		if code != c.defaultLocale {
			codes = append(codes, code)
		}
	}
	if index < 0 || index >= len(codes) {
		return c.defaultLocale
	}
	return codes[index]
}

// ValidTag reports whether value is a well-formed BCP 47 tag or "x-default",
// the form required in hreflang attributes.
func ValidTag(value string) bool {
	if value == "x-default" {
		return true
	}
	if value == "" {
		return false
	}
	_, err := language.Parse(value)
	return err == nil
}

// SameLanguage reports whether two tags name the same base language,
// for example "ja" and "ja-JP".
func SameLanguage(a, b string) bool {
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}
