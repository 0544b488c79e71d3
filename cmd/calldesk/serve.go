package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/classifier"
	"github.com/pbaille/calldesk/internal/db"
	"github.com/pbaille/calldesk/internal/store"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.Open(ctx, db.Options{
				DatabaseURL: a.cfg.DatabaseURL,
				SQLitePath:  a.cfg.SQLitePath,
				LogQueries:  a.cfg.LogQueries,
			})
			if err != nil {
				return err
			}
			defer database.Close()
			log.Printf("using %s store", database.Dialect)

			opts := api.Options{CORSOrigins: a.cfg.CORSOrigins}
			if clf, err := classifier.New(a.cfg.AnthropicAPIKey); err == nil {
				opts.Suggester = clf
			} else {
				log.Printf("tag suggestions disabled: %v", err)
			}

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:    addr,
				Handler: api.New(store.New(database), opts),
			}

			errc := make(chan error, 1)
			go func() {
				log.Printf("Starting server on %s", addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				log.Printf("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", a.cfg.Addr, "server address")
	return cmd
}
