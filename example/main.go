// Command userapi demonstrates the field selector library with a small
// user directory HTTP API.
//
// Build:
//
//	go build -o userapi .
//
// Usage:
//
//	./userapi serve
//	./userapi check fields.yaml
//
//	curl 'localhost:8080/users?fields=id,name,phone'
//	curl -H 'x-fields: @contact' localhost:8080/users/u-3
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
	"github.com/AdrianRamiro/api-field-selector/httpext"
)

// User is the domain type for this example.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt string
	UpdatedAt string
}

// fields maps the user onto the field names the schema document declares.
func (u User) fields() map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"address":   u.Address,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

// sampleUsers returns a fixed set of users for demonstration purposes.
func sampleUsers() []User {
	return []User{
		{ID: "u-1", Name: "Alice Moreau", Email: "alice@example.com", Phone: "555-0101", Address: "12 Rue des Lilas, Lyon", CreatedAt: "2024-03-14T09:30:00Z", UpdatedAt: "2025-01-02T16:45:00Z"},
		{ID: "u-2", Name: "Bob Tanaka", Email: "bob@example.com", Phone: "555-0102", Address: "88 Harbor View, Osaka", CreatedAt: "2024-05-20T11:00:00Z", UpdatedAt: "2024-12-18T08:12:00Z"},
		{ID: "u-3", Name: "Carol Okafor", Email: "carol@example.com", Phone: "555-0103", Address: "7 Victoria Island, Lagos", CreatedAt: "2024-07-01T14:20:00Z", UpdatedAt: "2025-02-09T10:05:00Z"},
		{ID: "u-4", Name: "Dave Lindqvist", Email: "dave@example.com", Phone: "555-0104", Address: "3 Östra Hamngatan, Göteborg", CreatedAt: "2024-09-11T07:55:00Z", UpdatedAt: "2025-03-01T19:30:00Z"},
	}
}

func main() {
	root := &cobra.Command{
		Use:   "userapi",
		Short: "Example user directory API with response field selection",
	}
	root.AddCommand(newServeCommand(), newCheckCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newServeCommand returns the serve subcommand, which runs the demo server
// against a hot-reloaded schema document.
func newServeCommand() *cobra.Command {
	var listen, schemaPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(listen, schemaPath)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().StringVar(&schemaPath, "schema", "fields.yaml", "path to the schema document")
	return cmd
}

// newCheckCommand returns the check subcommand, which validates a schema
// document without starting the server.
func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema-file>",
		Short: "Validate a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := fieldselector.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println("schema ok")
			fmt.Printf("available:   %s\n", strings.Join(s.AvailableFields(), ", "))
			fmt.Printf("defaults:    %s\n", strings.Join(s.DefaultFields(), ", "))
			fmt.Printf("query param: %s\n", s.QueryParam())
			fmt.Printf("header:      %s\n", s.HeaderName())
			fmt.Printf("separator:   %q\n", s.Separator())
			return nil
		},
	}
}

func serve(listen, schemaPath string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	metrics := fieldselector.NewMetrics(registry)

	watcher, err := fieldselector.NewWatcher(schemaPath,
		fieldselector.WithSelectorOptions(
			fieldselector.WithLogger(logger),
			fieldselector.WithMetrics(metrics),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load schema document: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	users := sampleUsers()

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(selection(watcher))
	r.Get("/users", listUsers(users))
	r.Get("/users/{id}", getUser(users))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("listening",
		zap.String("addr", listen),
		zap.String("schema", schemaPath),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestID tags every response with an X-Request-Id header, minting one
// when the client did not send its own.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// selection resolves the field selection against the watcher's current
// selector, so schema edits take effect without a restart.
func selection(watcher *fieldselector.Watcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sel := httpext.Select(watcher.Selector(), r)
			next.ServeHTTP(w, r.WithContext(httpext.NewContext(r.Context(), sel)))
		})
	}
}

// listUsers returns all users projected through the request's selection.
func listUsers(users []User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, _ := httpext.SelectionFromContext(r.Context())
		out := make([]map[string]any, 0, len(users))
		for _, u := range users {
			out = append(out, fieldselector.FilterMap(u.fields(), sel))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getUser returns a single user by path ID, projected through the
// request's selection.
func getUser(users []User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		for _, u := range users {
			if u.ID == id {
				sel, _ := httpext.SelectionFromContext(r.Context())
				writeJSON(w, http.StatusOK, fieldselector.FilterMap(u.fields(), sel))
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("user %q not found", id),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
