// Package cli implements the adminctl commands.
//
// Every command shares one environment built before it runs: the loaded
// config, a logger, the persisted session and a client wired to both.
package cli
