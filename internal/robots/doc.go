// Package robots implements the optional robots.txt gate and the per-host
// request rate limiter.
//
// The gate is off by default. When enabled, robots.txt is fetched once per
// host and cached for the lifetime of the Gate; a missing or unreadable
// robots.txt allows everything. The rate limiter applies whether or not the
// robots gate is enabled, so politeness delays hold in both modes.
package robots
