// Package main provides the entry point for the sitespider CLI.
//
// sitespider crawls a website with a pool of headless-browser workers
// and writes the discovered URLs as XML sitemaps.
//
// Usage:
//
//	sitespider crawl https://www.example.com
//	sitespider crawl --host example.com --host www.example.com https://www.example.com
//
// See --help for all available options.
package main

// main is the entry point for sitespider.
func main() {
	Execute()
}
