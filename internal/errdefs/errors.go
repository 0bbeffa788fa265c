// Package errdefs defines the error types surfaced by dockrun's core.
//
// Every failure before a container starts is one of these types and aborts
// synchronously; a non-zero container exit is data, not an error.
package errdefs

import "fmt"

// ConfigError reports a malformed mount policy or launch configuration,
// such as a non-absolute container target or an unknown GPU request string.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Msg, e.Err)
	}
	return "invalid configuration: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ArgumentError reports an invalid value encountered while building the
// container command line. Flag identifies the option that introduced the
// value, if any.
type ArgumentError struct {
	Flag  string
	Value string
	Msg   string
}

func (e *ArgumentError) Error() string {
	if e.Flag != "" {
		return fmt.Sprintf("argument %s: invalid value %q: %s", e.Flag, e.Value, e.Msg)
	}
	return fmt.Sprintf("invalid value %q: %s", e.Value, e.Msg)
}

// ImageUnavailableError reports that an image could not be found locally
// nor obtained through the pull and login fallback chain.
type ImageUnavailableError struct {
	Ref      string
	Registry string
	Err      error
}

func (e *ImageUnavailableError) Error() string {
	return fmt.Sprintf("image %q unavailable (registry %s): %v", e.Ref, e.Registry, e.Err)
}

func (e *ImageUnavailableError) Unwrap() error { return e.Err }

// LaunchError reports that the container engine refused to create or start
// the container. Nothing was left running, so there is nothing to unwind.
type LaunchError struct {
	Image string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch container from %q: %v", e.Image, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
