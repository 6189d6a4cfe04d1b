//go:build integration

// Package integration provides integration tests for wheelpack.
//
// These tests require Docker and start a CPython container using
// testcontainers, which reads archives written by this module with the
// standard library zipfile module.
// Run with: go test -tags=integration ./integration/...
package integration
