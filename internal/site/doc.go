// Package site renders the static export of the multilingual website.
//
// Every topic (home, features, docs, download) is rendered once per locale
// from the same html/template, with the text coming from the i18n catalog.
// The default locale lives at the root ("/", "/features/"); other locales
// get a prefix ("/ja/", "/ja/features/"). Each page links all its locale
// variants with hreflang alternates plus x-default.
//
// Besides the pages, a build writes sitemap.xml, robots.txt, the
// verification and IndexNow key files, and manifest.json with the SHA3-256
// digest of every generated file.
package site
