package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 5 * time.Second
	deleteWebhookTimeout = 10 * time.Second
)

// runServices блокируется до отмены ctx или падения одного из компонентов
func (a *App) runServices(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		if err := deps.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if deps.TelegramPoller != nil {
		g.Go(func() error {
			return a.runPolling(gCtx, deps)
		})
	} else {
		a.Log.Info("telegram updates mode: webhook", "webhook_url", a.Cfg.Telegram.WebhookURL)
	}

	for name, consumer := range deps.KafkaConsumers {
		name, consumer := name, consumer
		g.Go(func() error {
			a.Log.Info("starting kafka consumer", "name", name)
			return consumer.Start(gCtx)
		})
	}

	// свип просроченных броней и прочие джобы; Start не блокирует
	if err := deps.JobScheduler.Start(gCtx); err != nil {
		return fmt.Errorf("failed to start job scheduler: %w", err)
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")
		a.shutdown(deps)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}
	return nil
}

// shutdown сначала перестаёт принимать апдейты, потом дожидается джоб и только затем закрывает хранилища
func (a *App) shutdown(deps *Dependencies) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Log.Error("failed to shutdown http server", "error", err)
	}

	deps.JobScheduler.Wait()

	for name, consumer := range deps.KafkaConsumers {
		if err := consumer.Close(); err != nil {
			a.Log.Error("failed to close kafka consumer", "error", err, "name", name)
		}
	}
	for name, producer := range deps.KafkaProducers {
		if err := producer.Close(); err != nil {
			a.Log.Error("failed to close kafka producer", "error", err, "name", name)
		}
	}

	if err := deps.Cache.Close(); err != nil {
		a.Log.Error("failed to close cache", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		a.Log.Error("failed to close database", "error", err)
	}

	a.Log.Info("application shutdown completed")
}

// runPolling long polling для локальной разработки
func (a *App) runPolling(ctx context.Context, deps *Dependencies) error {
	deleteCtx, cancel := context.WithTimeout(ctx, deleteWebhookTimeout)
	defer cancel()

	// пока висит webhook, getUpdates возвращает 409
	if err := deps.TelegramClient.DeleteWebhook(deleteCtx); err != nil {
		a.Log.Warn("failed to delete webhook, continuing anyway", "error", err)
	}

	return deps.TelegramPoller.Start(ctx)
}
