package i18n

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func loadBundled(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := Load(opts...)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return c
}

func TestLoadBundled(t *testing.T) {
	t.Parallel()

	c := loadBundled(t)

	if c.Default() != "en" {
		t.Errorf("expected default en, got %q", c.Default())
	}
	if !slices.Equal(c.Locales(), BundledLocales) {
		t.Errorf("expected %v, got %v", BundledLocales, c.Locales())
	}
	for _, code := range BundledLocales {
		if !c.Has(code) {
			t.Errorf("expected locale %s", code)
		}
	}
	if c.Has("ru") {
		t.Error("did not expect ru")
	}
}

// Every bundled table must be complete; the site build relies on it.
func TestBundledTablesComplete(t *testing.T) {
	t.Parallel()

	c := loadBundled(t)
	for _, code := range BundledLocales {
		t.Run(code, func(t *testing.T) {
			t.Parallel()
			if missing := c.Missing(code); len(missing) > 0 {
				t.Errorf("missing keys: %v", missing)
			}
			if extra := c.Extra(code); len(extra) > 0 {
				t.Errorf("extra keys: %v", extra)
			}
		})
	}
}

func TestCatalogT(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// "eo" only translates one key; everything else falls back to en.
	if err := os.WriteFile(filepath.Join(dir, "eo.yaml"), []byte("nav.home: Hejmo\nonly.here: Nur ĉi tie\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := loadBundled(t, WithDir(dir))

	testCases := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{"locale entry", "ja", "nav.home", "ホーム"},
		{"default locale entry", "en", "nav.home", "Home"},
		{"extra locale entry", "eo", "nav.home", "Hejmo"},
		{"fallback to default locale", "eo", "nav.docs", "Docs"},
		{"unknown locale falls back", "xx", "nav.docs", "Docs"},
		{"unknown key returns key", "ja", "no.such.key", "no.such.key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.T(tc.locale, tc.key); got != tc.want {
				t.Errorf("T(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
			}
		})
	}

	t.Run("Lookup has no fallback", func(t *testing.T) {
		t.Parallel()
		if _, ok := c.Lookup("eo", "nav.docs"); ok {
			t.Error("expected no entry")
		}
		if text, ok := c.Lookup("eo", "nav.home"); !ok || text != "Hejmo" {
			t.Errorf("unexpected lookup %q %v", text, ok)
		}
	})

	t.Run("Missing and Extra", func(t *testing.T) {
		t.Parallel()
		missing := c.Missing("eo")
		if slices.Contains(missing, "nav.home") || !slices.Contains(missing, "nav.docs") {
			t.Errorf("unexpected missing keys: %v", missing)
		}
		if !slices.IsSorted(missing) {
			t.Error("missing keys should be sorted")
		}
		if extra := c.Extra("eo"); !slices.Equal(extra, []string{"only.here"}) {
			t.Errorf("unexpected extra keys: %v", extra)
		}
	})

	t.Run("extra locale is listed after bundled ones", func(t *testing.T) {
		t.Parallel()
		locales := c.Locales()
		if locales[len(locales)-1] != "eo" {
			t.Errorf("expected eo last, got %v", locales)
		}
	})
}

func TestCatalogSprintf(t *testing.T) {
	t.Parallel()

	c := loadBundled(t)

	if got := c.Sprintf("en", "home.features.heading", "gup"); got != "Why gup" {
		t.Errorf("unexpected en heading %q", got)
	}
	if got := c.Sprintf("ja", "download.version", "v1.0.0"); got != "最新バージョン: v1.0.0" {
		t.Errorf("unexpected ja version %q", got)
	}
	if got := c.Sprintf("en", "footer.pages", 1234, 8); got != "1,234 pages in 8 languages" {
		t.Errorf("expected localized number, got %q", got)
	}
	if got := c.Sprintf("de", "footer.pages", 1234, 8); got != "1.234 Seiten in 8 Sprachen" {
		t.Errorf("expected German grouping, got %q", got)
	}
	if got := c.Sprintf("ja", "no.such.key"); got != "no.such.key" {
		t.Errorf("expected key back, got %q", got)
	}
}

func TestLoadOptions(t *testing.T) {
	t.Parallel()

	t.Run("restrict locales keeps order and adds default", func(t *testing.T) {
		t.Parallel()
		c := loadBundled(t, WithLocales([]string{"ja", "fr", "ja"}))
		if !slices.Equal(c.Locales(), []string{"en", "ja", "fr"}) {
			t.Errorf("unexpected locales %v", c.Locales())
		}
		if c.Has("de") {
			t.Error("de should be disabled")
		}
	})

	t.Run("unknown locale", func(t *testing.T) {
		t.Parallel()
		_, err := Load(WithLocales([]string{"ja", "ru"}))
		if !errors.Is(err, ErrUnknownLocale) {
			t.Errorf("expected ErrUnknownLocale, got %v", err)
		}
	})

	t.Run("other default locale", func(t *testing.T) {
		t.Parallel()
		c := loadBundled(t, WithDefault("ja"))
		if c.T("xx", "nav.home") != "ホーム" {
			t.Error("expected fallback to ja")
		}
	})

	t.Run("default without table", func(t *testing.T) {
		t.Parallel()
		_, err := Load(WithDefault("ru"))
		if !errors.Is(err, ErrNoDefaultLocale) {
			t.Errorf("expected ErrNoDefaultLocale, got %v", err)
		}
	})

	t.Run("invalid locale file name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "not_a_locale!.yaml"), []byte("a: b\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(WithDir(dir))
		if !errors.Is(err, ErrInvalidLocale) {
			t.Errorf("expected ErrInvalidLocale, got %v", err)
		}
	})

	t.Run("broken YAML", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "ja.yaml"), []byte("nav.home: [\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(WithDir(dir)); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("override entry", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "ja.yaml"), []byte("nav.home: トップ\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		c := loadBundled(t, WithDir(dir))
		if c.T("ja", "nav.home") != "トップ" {
			t.Errorf("expected override, got %q", c.T("ja", "nav.home"))
		}
		if c.T("ja", "nav.docs") != "ドキュメント" {
			t.Error("other entries must be kept")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		if _, err := Load(WithDir(filepath.Join(t.TempDir(), "none"))); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCatalogName(t *testing.T) {
	t.Parallel()

	c := loadBundled(t)
	testCases := map[string]string{
		"en": "English",
		"ja": "日本語",
		"es": "Español",
		"fr": "Français",
		"de": "Deutsch",
		"xx": "xx",
	}
	for code, want := range testCases {
		if got := c.Name(code); got != want {
			t.Errorf("Name(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestCatalogKeysAndTag(t *testing.T) {
	t.Parallel()

	c := loadBundled(t)
	keys := c.Keys()
	if !slices.IsSorted(keys) || !slices.Contains(keys, "home.title") {
		t.Errorf("unexpected keys: %v", keys)
	}
	if c.Tag("ja").String() != "ja" {
		t.Errorf("unexpected tag %v", c.Tag("ja"))
	}
	if c.Tag("xx").String() != "und" {
		t.Errorf("expected und, got %v", c.Tag("xx"))
	}
	if c.Printer("xx") == nil {
		t.Error("expected printer for unknown locale")
	}
}
