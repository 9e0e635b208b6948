// Package config holds the configuration surface consumed by a crawl run.
//
// Design decision: All settings live in an explicit Config value that is
// constructed once (from CLI flags and an optional YAML file) and passed
// into the crawler via dependency injection. There is deliberately no
// package-level mutable state: every test builds its own Config, and two
// crawl runs in one process cannot interfere with each other.
package config
