package main

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"shop-backend/pkg/container"
	"shop-backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx)
	if err != nil {
		logger.Fatal("[WORKER] failed to initialize container", err)
	}
	defer c.Cleanup()

	srv := newServer(c)
	scheduler, err := newScheduler(c)
	if err != nil {
		logger.Fatal("[SCHEDULER] failed to register jobs", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("[WORKER] starting", map[string]interface{}{"concurrency": c.Config.Queue.Concurrency})
		return srv.Start(newMux(c.NewWorkers()))
	})
	g.Go(func() error {
		logger.Info("[SCHEDULER] starting", nil)
		return scheduler.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("[WORKER] shutting down", nil)
		scheduler.Shutdown()
		srv.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("[WORKER] stopped with error", err)
	}
}
