package config

import (
	"flag"
	"os"
	"time"

	"github.com/clinicore/clinicore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-k string   dotenv file holding the field encryption key
//	-r string   retention policy JSON file
//	-s string   session HMAC secret key
//	-t int      session validity, minutes
//
// os.Args is first filtered to the flags handled here (flagx.FilterArgs) so
// the -c/-config flag consumed by parseJSON does not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-r", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.KeyFilePath, "k", config.KeyFilePath, "encryption key file")
	fs.StringVar(&config.RetentionFilePath, "r", config.RetentionFilePath, "retention policy file")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
}
