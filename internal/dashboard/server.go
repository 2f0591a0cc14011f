// internal/dashboard/server.go
package dashboard

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/poller"
	"github.com/tamzrod/vision-dashboard/internal/render"
)

// Options is the page-facing part of the configuration.
type Options struct {
	Title     string
	StreamURL string
	LogDir    string // "" disables /logs
}

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetupRoutes registers the dashboard endpoints.
func SetupRoutes(opts Options, surface *render.Surface, hub *Hub, stats func() poller.Stats, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", PageHandler(opts, surface, log))
	mux.HandleFunc("GET /api/view", ViewWebsocketHandler(hub, log))
	mux.HandleFunc("GET /api/state", StateHandler(surface))
	mux.HandleFunc("GET /api/poller", PollerHandler(stats))
	mux.HandleFunc("GET /logs/{level}", LogsHandler(opts.LogDir))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	return mux
}

// ---- page ----

type pageData struct {
	Title     string
	StreamURL string
	Frame     render.Frame
}

func PageHandler(opts Options, surface *render.Surface, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			Title:     opts.Title,
			StreamURL: opts.StreamURL,
			Frame:     surface.Frame(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := pageTemplate.Execute(w, data); err != nil && log != nil {
			log.Error("page render failed: %v", err)
		}
	}
}

// ---- websocket viewers ----

func ViewWebsocketHandler(hub *Hub, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			if log != nil {
				log.Warning("websocket upgrade error: %v", err)
			}
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		id, ok := hub.Register(connection)
		if !ok {
			return
		}
		defer hub.Unregister(id)

		// Viewers never send anything meaningful. Reading keeps pongs flowing
		// and tells us when the browser goes away.
		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// ---- JSON ----

func StateHandler(surface *render.Surface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, surface.Snapshot())
	}
}

func PollerHandler(stats func() poller.Stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if stats == nil {
			http.Error(w, "poller not running", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, stats())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(v)
}

// ---- logs ----

var logFiles = map[string]string{
	"info":    logger.InfoFile,
	"warning": logger.WarningFile,
	"error":   logger.ErrorFile,
}

func LogsHandler(logDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := logFiles[r.PathValue("level")]
		if !ok || logDir == "" {
			http.NotFound(w, r)
			return
		}
		serveLogFile(w, r, logDir, name)
	}
}

// serveLogFile serves a single log file as plain text.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filePath)
}
