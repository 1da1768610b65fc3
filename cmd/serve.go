package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/airport-lookup/internal/query"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := newService(st)

		router := chi.NewRouter()
		router.Use(
			requestID,
			middleware.RealIP,
			middleware.Recoverer,
		)
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		router.Get("/api/search", func(w http.ResponseWriter, r *http.Request) {
			results, err := svc.Search(r.Context(), r.URL.Query().Get("q"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, results)
		})

		router.Get("/api/nearby", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
			lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
			if latErr != nil || lonErr != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon must be decimal degrees"})
				return
			}
			limit := 0
			if raw := q.Get("limit"); raw != "" {
				limit, _ = strconv.Atoi(raw)
			}

			results, err := svc.Nearby(r.Context(), lat, lon, limit)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, results)
		})

		router.Get("/api/airports/{ident}", func(w http.ResponseWriter, r *http.Request) {
			detail, err := svc.Get(r.Context(), chi.URLParam(r, "ident"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, detail)
		})

		router.Get("/api/countries/{code}/airports", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			listing, err := svc.ListByCountry(r.Context(), query.CountryRequest{
				Country: chi.URLParam(r, "code"),
				Type:    q.Get("type"),
				Region:  q.Get("region"),
				ILSOnly: q.Get("ils") == "true" || q.Get("ils") == "1",
			})
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, listing)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps lookup errors onto HTTP statuses. Validation problems
// surface their reason; everything else stays generic.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case query.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case query.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", w.Header().Get("X-Request-Id")),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "airport data store unavailable"})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
