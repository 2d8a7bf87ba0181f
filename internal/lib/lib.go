// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It currently holds the Redis-backed rate limiter store (ratelimit).
package lib
