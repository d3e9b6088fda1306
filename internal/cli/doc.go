// Package cli parses command-line arguments into an application Config.
package cli
