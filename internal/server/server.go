package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"vsixget/internal/extensions"
	"vsixget/internal/utils"
)

// Server exposes the download directory read-only.
type Server struct {
	dir      string
	router   *mux.Router
	server   *http.Server
	logger   zerolog.Logger
	useHTTPS bool
	certFile string
	keyFile  string
}

type PackageEntry struct {
	Name     string    `json:"name"`
	ID       string    `json:"id,omitempty"`
	Version  string    `json:"version,omitempty"`
	Size     int64     `json:"size"`
	SizeText string    `json:"sizeText"`
	Modified time.Time `json:"modified"`
}

func New(dir string) *Server {
	s := &Server{
		dir:    dir,
		router: mux.NewRouter(),
		logger: utils.GetLogger("server"),
	}
	s.setupRoutes()
	return s
}

func NewWithTLS(dir, certFile, keyFile string) *Server {
	s := New(dir)
	s.useHTTPS = true
	s.certFile = certFile
	s.keyFile = keyFile
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.useHTTPS {
		s.logger.Info().Msgf("Starting HTTPS server on %s", addr)
		return s.server.ListenAndServeTLS(s.certFile, s.keyFile)
	}
	s.logger.Info().Msgf("Starting HTTP server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/packages", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/packages/{file}", s.handlePackage).Methods(http.MethodGet, http.MethodHead)

	s.router.Use(s.loggingMiddleware)

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := ListPackages(s.dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list packages")
		s.writeError(w, http.StatusInternalServerError, "Could not list packages")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":    len(entries),
		"packages": entries,
	})
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	fileName := mux.Vars(r)["file"]
	if fileName != filepath.Base(fileName) || !utils.IsVSIXFile(fileName) {
		s.writeError(w, http.StatusNotFound, "Package not found")
		return
	}

	filePath := filepath.Join(s.dir, fileName)
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "Package not found")
		return
	}

	w.Header().Set(utils.ContentDispositionHeader, fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set(utils.ContentTypeHeader, utils.OctetStreamContentType)
	http.ServeFile(w, r, filePath)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Msgf("404 - Not Found: %s %s", r.Method, r.URL.Path)
	s.writeError(w, http.StatusNotFound, "Page not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Msgf("405 - Method Not Allowed: %s %s", r.Method, r.URL.Path)
	s.writeError(w, http.StatusMethodNotAllowed, "Method not supported")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set(utils.ContentTypeHeader, utils.JSONContentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("error encoding JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"status":  status,
	})
}

// ListPackages returns the .vsix files in dir sorted by name.
func ListPackages(dir string) ([]PackageEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]PackageEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !utils.IsVSIXFile(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entry := PackageEntry{
			Name:     de.Name(),
			Size:     info.Size(),
			SizeText: humanize.Bytes(uint64(info.Size())),
			Modified: info.ModTime(),
		}
		if manifest, err := extensions.ReadManifest(filepath.Join(dir, de.Name())); err == nil {
			entry.ID = manifest.ID()
			entry.Version = manifest.Version
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
