package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/cmskeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-d",
	"-s", "-rs", "-t", "-tu",
	"-cs", "-sa", "-fu", "-ra", "-mu",
	"-u", "-p", "-b", "-r", "-e",
	"-mh", "-mp", "-mn", "-mw", "-mf",
	"-l",
}

// parseFlags overlays config with the command-line flags it recognises.
// os.Args is filtered first so flags owned by other components do not
// cause parse errors. A malformed value panics.
//
//	-a  HTTP bind address          -g  gRPC health bind address
//	-d  PostgreSQL DSN
//	-s  access token secret        -rs refresh token secret
//	-t  access token lifetime      -tu its unit: s, m, h or d
//	-cs reset capsule secret       -sa max slug attempts
//	-fu front-end reset URL        -ra reset capsule max age (0 = never)
//	-mu max upload size, bytes
//	-u -p -b -r -e  S3 user, password, bucket, region, endpoint
//	-mh -mp -mn -mw -mf  SMTP host, port, user, password, sender
//	-l  log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "access token secret")
	fs.StringVar(&config.JWTRefreshSecret, "rs", config.JWTRefreshSecret, "refresh token secret")
	fs.IntVar(&config.JWTExpiresIn, "t", config.JWTExpiresIn, "access token lifetime")
	fs.StringVar(&config.JWTExpiresInUnit, "tu", config.JWTExpiresInUnit, "access token lifetime unit (s, m, h, d)")

	fs.StringVar(&config.CryptSecret, "cs", config.CryptSecret, "password reset capsule secret")
	fs.IntVar(&config.MaxSlugGenerateAttempts, "sa", config.MaxSlugGenerateAttempts, "max slug generation attempts")
	fs.StringVar(&config.FrontURLResetPassword, "fu", config.FrontURLResetPassword, "front-end password reset URL")
	fs.DurationVar(&config.ResetTokenMaxAge, "ra", config.ResetTokenMaxAge, "password reset capsule max age, 0 disables")
	fs.Int64Var(&config.MaxUploadSize, "mu", config.MaxUploadSize, "max upload size in bytes")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SMTPHost, "mh", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "mp", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "mn", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "mw", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.EmailFrom, "mf", config.EmailFrom, "sender address")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
