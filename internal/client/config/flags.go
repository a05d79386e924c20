package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-b string    API base URI
//	-a string    auth server URI
//	-i string    client id sent on refresh
//	-g string    gRPC health endpoint address
//	-s string    credential store: memory, sqlite or redis
//	-d string    store DSN (sqlite file or redis URL)
//	-k string    passphrase for sealing stored credentials
//	-t duration  per-request timeout
//	-r duration  refresh call timeout
//	-w duration  max wait behind an in-flight refresh
//	-v           debug logging
//
// Only these flags are read from os.Args; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-a", "-i", "-g", "-s", "-d", "-k", "-t", "-r", "-w", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURI, "b", cfg.BaseURI, "API base URI")
	fs.StringVar(&cfg.AuthURI, "a", cfg.AuthURI, "auth server URI")
	fs.StringVar(&cfg.AuthClientID, "i", cfg.AuthClientID, "client id")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC health endpoint address")
	fs.StringVar(&cfg.StoreKind, "s", cfg.StoreKind, "credential store (memory|sqlite|redis)")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "credential store DSN")
	fs.StringVar(&cfg.StorePassphrase, "k", cfg.StorePassphrase, "passphrase for sealing stored credentials")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.DurationVar(&cfg.RefreshTimeout, "r", cfg.RefreshTimeout, "refresh timeout")
	fs.DurationVar(&cfg.WaitTimeout, "w", cfg.WaitTimeout, "max wait for an in-flight refresh")
	fs.BoolVar(&cfg.ClientDebug, "v", cfg.ClientDebug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
