package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/taxportal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-s string   storage driver: auto, mongo, postgres, memory
//	-m string   MongoDB connection URL
//	-n string   database name
//	-d string   PostgreSQL DSN
//	-l string   log level
//	-u string   public site URL used in the sitemap
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c) do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-m", "-n", "-d", "-l", "-u", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DBDriver, "s", config.DBDriver, "storage driver")
	fs.StringVar(&config.MongoURL, "m", config.MongoURL, "MongoDB URL")
	fs.StringVar(&config.DatabaseName, "n", config.DatabaseName, "database name")
	fs.StringVar(&config.PostgresDSN, "d", config.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public site URL")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
