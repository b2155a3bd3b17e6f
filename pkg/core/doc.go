// Package core provides the foundational error vocabulary shared by the
// AG-UI chat client packages.
//
// Failures fall into four groups, and callers distinguish them with
// errors.Is and errors.As:
//   - *DecodeError: an inbound frame was malformed or of an unknown kind
//   - *TransportError: the connection failed or was closed by the peer
//   - *ConfigError: a configuration value was rejected
//   - the submit sentinels (ErrEmptyInput, ErrNotConnected, ErrRunInProgress)
//
// Example usage:
//
//	if err := c.Submit(text); errors.Is(err, core.ErrNotConnected) {
//		// show a "waiting for connection" hint
//	}
package core
