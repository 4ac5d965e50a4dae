package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/demodeck-hq/demodeck_api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, relying on environment")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.JWTService{},
		&services.GeolocationService{},

		&services.AuthService{},
		&services.DemoService{},
		&services.ShareLinkService{},
		&services.ViewTrackingService{},
		&services.AnalyticsService{},
		&services.MediaService{},
		&services.RateLimitService{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
