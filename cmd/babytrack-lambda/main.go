package main

import (
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"babytrack/internal/alexa"
	"babytrack/internal/builder"
	"babytrack/internal/config"
	"babytrack/internal/credential"
	"babytrack/internal/dispatch"
	"babytrack/internal/logging"
	"babytrack/internal/tracker"
)

func main() {
	path := os.Getenv("BABYTRACK_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logging.Init(true, logging.ParseLevel(os.Getenv("BABYTRACK_LOG_LEVEL")))

	client := tracker.New(cfg.BaseURL, tracker.WithTimeout(cfg.RequestTimeout()))
	d := dispatch.New(builder.New(cfg.Babies), client)

	h := &alexa.Handler{
		AppID:      cfg.ApplicationID,
		Dispatcher: d,
		Resolver:   resolverFor(cfg),
	}

	lambda.Start(h.Handle)
}

// resolverFor picks the per-request credential source: static credentials
// from configuration when present, otherwise the encrypted access token
// carried on each request.
func resolverFor(cfg config.Config) alexa.ResolverFunc {
	return func(accessToken string) credential.Resolver {
		if cfg.HasStaticCredentials() {
			return credential.StaticResolver{
				Email:    cfg.Email,
				Password: cfg.Password,
				DeviceID: cfg.DeviceID,
			}
		}
		return credential.TokenResolver{
			Token:    accessToken,
			KeyPath:  cfg.KeyFile,
			DeviceID: cfg.DeviceID,
		}
	}
}
