package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkuznecov/ticketgate/api"
	"github.com/mkuznecov/ticketgate/config"
	"github.com/mkuznecov/ticketgate/internal/service/flights"
	"github.com/mkuznecov/ticketgate/internal/service/tickets"
)

// Run starts the gateway HTTP server and blocks until ctx is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, ticketSvc tickets.TicketUseCase) error {
	router := NewRouter(flightSvc, ticketSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter assembles the gateway's public surface plus the management
// endpoints.
func NewRouter(flightSvc flights.FlightUseCase, ticketSvc tickets.TicketUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(flightSvc).Register(v1)
	api.NewTicketHandler(ticketSvc).Register(v1)

	router.GET("/manage/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	router.GET("/manage/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
