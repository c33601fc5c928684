package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/stackscope/stackscope/internal/aggregate"
	"github.com/stackscope/stackscope/internal/envutil"
	"github.com/stackscope/stackscope/internal/errorutil"
	"github.com/stackscope/stackscope/internal/logutil"
	"github.com/stackscope/stackscope/internal/sampler"
	"github.com/stackscope/stackscope/internal/snapshot"
	"github.com/stackscope/stackscope/internal/timeutil"
)

type environment struct {
	config ServiceConfig

	aggregator *aggregate.Aggregator
	sampler    sampler.Sampler
}

func newEnvironment() (*environment, error) {
	config, err := loadServiceConfig()
	if err != nil {
		return nil, err
	}
	var e environment
	e.config = config
	e.aggregator = aggregate.New(snapshot.NewRuntime(), config.MaxStacks)
	e.sampler, err = newSampler(config, e.aggregator)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func newSampler(config ServiceConfig, agg *aggregate.Aggregator) (sampler.Sampler, error) {
	switch config.Strategy {
	case "loop":
		return sampler.NewLoop(agg, timeutil.DefaultInterval), nil
	case "timer":
		class, err := sampler.ParseTimerClass(config.TimerClass)
		if err != nil {
			return nil, err
		}
		timer, err := sampler.NewIntervalTimer(agg, class, timeutil.DefaultInterval)
		if errors.Is(err, errorutil.ErrUnsupportedPlatform) {
			log.Warn().Msg("interval timers unavailable, falling back to the loop sampler")
			return sampler.NewLoop(agg, timeutil.DefaultInterval), nil
		}
		return timer, err
	}
	return nil, errors.New("STACKSCOPE_STRATEGY must be 'loop' or 'timer'")
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/health", e.getHealth},
		{http.MethodGet, "/data", e.getData},
		{http.MethodGet, "/hotspots", e.getHotspots},
		{http.MethodGet, "/rooted/files", e.getRootedFiles},
		{http.MethodGet, "/rooted/lines", e.getRootedLines},
		{http.MethodGet, "/flamegraph", e.getFlamegraph},
	}

	router := httprouter.New()
	for _, route := range routes {
		router.Handler(route.method, route.path, compress(route.handler))
	}
	return router, nil
}

func main() {
	logutil.ConfigureLogger()

	env, err := newEnvironment()
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up environment")
	}

	if err := env.sampler.Start(); err != nil {
		log.Fatal().Err(err).Msg("error starting sampler")
	}
	if env.config.DemoWorkload {
		startDemoWorkload()
	}

	router, err := env.newRouter()
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + envutil.GetPort(),
		Handler: router,
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		env.sampler.Stop()

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(cctx); err != nil {
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	log.Info().
		Str("port", envutil.GetPort()).
		Str("strategy", env.config.Strategy).
		Msg("sampling")

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Err(err).Msg("server failed")
	}

	<-waitForShutdown
}
