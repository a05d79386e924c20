// Package config loads the gophgate CLI settings: built-in defaults, then an
// optional JSON file given with -c or -config, then command-line flags.
package config
