package config

import (
	"flag"
	"os"
	"time"

	"github.com/theracare/sessioncore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-k string   note master key (passphrase)
//	-l string   note key salt
//	-s string   OAuth state HMAC secret key
//	-i string   Google OAuth client id
//	-x string   Google OAuth client secret
//	-r string   Google OAuth redirect URL
//	-t int      calendar call timeout, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-q int      presigned URL validity, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with flags owned by the host.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-d", "-k", "-l", "-s", "-i", "-x", "-r", "-t", "-u", "-p", "-b", "-g", "-e", "-q",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.NoteMasterKey, "k", config.NoteMasterKey, "note master key")
	fs.StringVar(&config.NoteKeySalt, "l", config.NoteKeySalt, "note key salt")
	fs.StringVar(&config.StateSecretKey, "s", config.StateSecretKey, "state secret key")
	fs.StringVar(&config.GoogleClientID, "i", config.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&config.GoogleClientSecret, "x", config.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&config.GoogleRedirectURL, "r", config.GoogleRedirectURL, "Google OAuth redirect URL")

	calendarCallTimeout := fs.Int("t", int(config.CalendarCallTimeout.Seconds()), "calendar_call_timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	presignValidity := fs.Int("q", int(config.PresignValidity.Minutes()), "presign_validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CalendarCallTimeout = time.Duration(*calendarCallTimeout) * time.Second
	config.PresignValidity = time.Duration(*presignValidity) * time.Minute
}
