package commands

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/andrewpaige1/engcard-api/cloudsync"
	"github.com/andrewpaige1/engcard-api/handlers"
	"github.com/andrewpaige1/engcard-api/middleware"
	"github.com/andrewpaige1/engcard-api/quiz"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().String("port", "", "listen port (env PORT)")
	if err := a.v.BindPFlag("PORT", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	return cmd
}

func newHandler(a *app) (http.Handler, error) {
	cards, err := a.openStore()
	if err != nil {
		return nil, err
	}

	h := &handlers.Handler{
		Cards:    cards,
		Quiz:     quiz.NewEngine(cards, quiz.EngineConfig{}),
		Sessions: quiz.NewRegistry(),
		Sync: cloudsync.NewService(cards,
			cloudsync.NewGistClient(a.env.GitHubAPIURL, a.env.GitHubToken, nil),
			a.env.GistID),
	}
	mux := http.NewServeMux()
	h.Routes(mux)

	authMiddleware, err := middleware.EnsureValidToken(a.env)
	if err != nil {
		return nil, err
	}

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   a.env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(middleware.LogRequests(mux)))

	return corsHandler, nil
}

func serve(ctx context.Context, a *app) error {
	handler, err := newHandler(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + a.env.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("serve: listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Println("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
