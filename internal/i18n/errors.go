package i18n

import "errors"

var (
	// ErrInvalidLocale is returned for a locale code that is not a valid BCP 47 tag.
	ErrInvalidLocale = errors.New("invalid locale code")

	// ErrUnknownLocale is returned when a requested locale has no table.
	ErrUnknownLocale = errors.New("unknown locale")

	// ErrNoDefaultLocale is returned when the default locale has no table.
	ErrNoDefaultLocale = errors.New("default locale has no translation table")
)
