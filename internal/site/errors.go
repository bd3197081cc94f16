package site

import "errors"

var (
	// ErrUnknownTopic is returned for a topic name that has no template.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrNoLocales is returned when a plan has no locale to render.
	ErrNoLocales = errors.New("no locales to render")

	// ErrNoProductName is returned when the project does not name the product.
	ErrNoProductName = errors.New("site.product.name is required")
)
