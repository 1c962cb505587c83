// Package crawler implements the ranked-match crawl engine: partition
// enumeration, ladder pagination, identity resolution, match discovery and
// deduplication, match-to-document transformation, and resumable progress
// tracking. All upstream traffic goes through the resilient riot.Client.
package crawler
