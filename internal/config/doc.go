// Package config holds the crawler's configuration: defaults, CLI-driven
// overrides, and the optional .siteclone YAML file with per-site settings.
//
// Configuration is passed through the application by value via dependency
// injection; there is no process-wide configuration state, so multiple runs
// (including tests) can execute independently and concurrently.
package config
