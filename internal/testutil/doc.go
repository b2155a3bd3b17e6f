// Package testutil provides testing utilities and helpers.
//
// It contains an in-memory transport (Dialer and Conn) that lets client
// tests script inbound frames, inspect outbound frames and simulate dial
// failures and remote closes without a network.
//
// This package is internal and should not be imported by external code.
package testutil
