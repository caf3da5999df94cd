// Package testsupport holds helpers shared by package tests: temp-directory
// configs, stub external binaries on PATH, and placeholder image files.
package testsupport
