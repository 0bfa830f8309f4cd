// Package config loads adminctl settings.
//
// Values are layered, later sources winning: built-in defaults, a YAML
// file, a .env file, then ADMINAPI_* environment variables. The result is
// validated before it is returned.
package config
