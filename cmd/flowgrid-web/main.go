package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowgrid/internal/app"
	"flowgrid/internal/core"
	"flowgrid/internal/sims/flow"
	"flowgrid/internal/web"
)

func main() {
	env, loaded, err := web.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := app.NewLogger(os.Stderr, env.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if !loaded {
		log.Debug(".env file not found, using process environment")
	}

	sim, err := flow.Open(env.Sim, env.ConfigPath, flow.WithLogger(log))
	if err != nil {
		log.WithField("available", core.SimNames()).Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub(sim, env.Step, env.Interval, log)
	go hub.Run(ctx)

	srv := &http.Server{Addr: ":" + env.Port, Handler: web.NewServer(hub, log)}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.WithField("port", env.Port).WithField("sim", sim.Name()).Info("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
