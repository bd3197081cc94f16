// Package probe is the single HTTP reachability check used by every sitectl
// command: deployment verification, sitemap pings, IndexNow submissions and
// key-page warmups all go through Client.Probe.
//
// A probe is one GET request with a fixed timeout. A 2xx response counts as
// succeeded, anything else as failed, and a request that runs out of time
// as timed out. Nothing is retried. Network errors never escape as Go
// errors; they become a Result with a Status so that callers only count.
//
// ProbeAll runs a list of probes one at a time in input order. With
// WithConcurrency(n) up to n requests are in flight, and results still come
// back in input order.
package probe
