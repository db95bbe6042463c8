// Package logging constructs the slog loggers used across postbundle.
//
// Two output formats are supported: a human console format that promotes
// the component attribute into the line prefix, and line-delimited JSON
// for machine consumption by the scheduler host.
package logging
