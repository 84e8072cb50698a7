package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/drakej/boinc-cluster/internal/config"
)

func NewAPIServer(lc fx.Lifecycle, router *mux.Router, logger *zerolog.Logger, cfg *config.ClusterConfig) *http.Server {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ListenPort()), Handler: router}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().Msgf("Starting cluster API server at %s", srv.Addr)
			go func() {
				err := srv.ListenAndServe()
				if !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Msgf("cluster API server error: %s", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
