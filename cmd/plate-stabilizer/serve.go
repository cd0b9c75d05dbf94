package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"plate-stabilizer/internal/capture"
	"plate-stabilizer/internal/db"
	httphandler "plate-stabilizer/internal/http"
	"plate-stabilizer/internal/pipeline"
	"plate-stabilizer/internal/repository"
	"plate-stabilizer/internal/service"
	"plate-stabilizer/internal/store"
	"plate-stabilizer/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var detections service.DetectionLog
	if cfg.Database.DSN != "" {
		conn, err := db.Connect(cfg.Database.DSN, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(conn); err != nil {
				log.Warn().Err(err).Msg("failed to close database")
			}
		}()
		detections = repository.NewDetectionRepository(conn)
	} else {
		log.Info().Msg("no database configured, detection history disabled")
	}

	filter, err := validation.NewSettings(cfg.FilterSettings())
	if err != nil {
		return err
	}
	plates := service.NewPlateService(store.New(), filter, validation.NewValidator(log), detections, log)

	hub := httphandler.NewHub(cfg.HTTP.CORSOrigins, log)
	frames := capture.NewHandoffSource()
	worker, err := pipeline.NewWorker(cfg.PipelineSettings(), plates, hub, log)
	if err != nil {
		return err
	}

	h := httphandler.NewHandler(plates, frames, worker, log)
	router := httphandler.NewRouter(h, hub, cfg.HTTP.CORSOrigins, httphandler.AuthMiddleware(cfg.Auth.JWTSecret, log), log)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx, frames)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		worker.Stop()
		_ = frames.Close()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
