package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/pillme-team/pillme-server/pkg/alert"
	"github.com/pillme-team/pillme-server/pkg/config"
	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/httpapi"
	"github.com/pillme-team/pillme-server/pkg/logger"
	"github.com/pillme-team/pillme-server/pkg/notify"
	"github.com/pillme-team/pillme-server/pkg/schedule"
	"github.com/robfig/cron/v3"
)

type botSender struct {
	b *bot.Bot
}

func (s botSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	alert.Configure(config.AppConfig.Slack.WebhookURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cron.New()
	if _, err := c.AddFunc("5 0 * * *", func() {
		purged, err := schedule.PurgeStoppedChecks()
		if err != nil {
			logger.Error("failed to purge stopped schedule checks", "error", err)
			alert.Go(fmt.Sprintf("[ERROR] purge stopped checks: %v", err))
			return
		}
		logger.Info("purged stopped schedule checks", "rows", purged)
	}); err != nil {
		logger.Error("failed to register purge job", "error", err)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if token := config.AppConfig.Telegram.Token; token != "" {
		b, err := bot.New(token)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
		go b.Start(ctx)
		go notify.Run(ctx, botSender{b: b}, config.AppConfig.Server.TimezoneOffsetHours)
		logger.Info("telegram reminders enabled")
	}

	app := httpapi.New()
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	logger.Info("starting server", "port", config.AppConfig.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", config.AppConfig.Server.Port)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
