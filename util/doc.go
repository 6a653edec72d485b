// Package util holds small helpers shared by the config, server and
// provider packages.
package util
