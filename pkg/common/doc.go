// Package common holds general purpose middleware, such as Logging which
// exposes the usual --log-level, -q and -v flags and initializes pkg/logging.
package common
