package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/homewatt/tariffwatch/internal/config"
	"github.com/homewatt/tariffwatch/internal/database"
	"github.com/homewatt/tariffwatch/internal/devices"
	"github.com/homewatt/tariffwatch/internal/engine"
	httpHandlers "github.com/homewatt/tariffwatch/internal/http"
	"github.com/homewatt/tariffwatch/internal/repository"
	"github.com/homewatt/tariffwatch/internal/sink"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()
	repos := repository.New(db)

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker()).SetClientID("tariffwatch-engine")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	registry := devices.NewRegistry(client)
	if err := registry.Start(); err != nil {
		log.Fatal().Err(err).Msg("device registry subscribe failed")
	}
	defer registry.Close()

	var notifier *sink.SNSNotifier
	if config.UseCloudAlerts() && config.SNSTopicArn() != "" {
		notifier, err = sink.NewSNSNotifier(config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Error().Err(err).Msg("sns init failed, continuing without cloud alerts")
		}
	}
	publisher := sink.NewPublisher(client, notifier)

	eng := engine.New(registry, repos, publisher, config.TickInterval(), config.HighPowerMinWatts())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Bootstrap(ctx, config.DiscoveryRetry())
	go eng.Run(ctx)

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	httpHandlers.Register(app, eng, repos)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
