// Package i18n holds the translation tables of the website.
//
// Every locale is one flat YAML table (key: text) embedded in the binary
// under locales/. A project can add locales or override entries by pointing
// WithDir at a directory of <locale>.yaml files. Lookups fall back to the
// default locale and then to the key itself, so a missing translation never
// breaks a build; Missing reports those gaps instead.
//
// Entries may contain fmt verbs (%s, %d). Sprintf formats them with a
// golang.org/x/text/message printer, which also localizes numbers.
package i18n
