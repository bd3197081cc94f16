// Package submit notifies search engines about the site.
//
// Three modes share the probe client:
//   - sitemap ping: GET <engine endpoint>?sitemap=<sitemap URL> per engine
//   - IndexNow: GET <endpoint>?url=<page>&key=<key>[&keyLocation=...] per page
//   - accelerate: warm each key page with a plain GET, then submit it to IndexNow
//
// Every request is sent once. A 2xx answer counts as success; nothing is
// retried. Requests run one after another unless the client was created
// with a higher concurrency.
package submit
