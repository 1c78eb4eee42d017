package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"flowgrid/internal/render"
	"flowgrid/internal/sims/flow"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"
)

const (
	URIIndex = "/"
	URIState = "/state"
	URIWS    = "/ws"
	URIFrame = "/frame.png"

	hubTimeout   = 200 * time.Millisecond
	defaultTile  = 32
	maxFrameTile = 128
)

//go:embed static/index.html
var indexHTML []byte

// Server exposes a Hub over HTTP and websockets.
type Server struct {
	router   *way.Router
	hub      *Hub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewServer wires the routes for hub.
func NewServer(hub *Hub, log logrus.FieldLogger) *Server {
	s := &Server{hub: hub, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URIIndex, s.handleIndex())
	s.router.HandleFunc("GET", URIState, s.handleState())
	s.router.HandleFunc("GET", URIWS, s.handleWS())
	s.router.HandleFunc("GET", URIFrame, s.handleFrame())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	}
}

func (s *Server) handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), hubTimeout)
		defer cancel()
		msg, err := s.hub.State(ctx)
		if err != nil {
			s.log.WithError(err).Warn("state request failed")
			http.Error(w, "grid unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(msg); err != nil {
			s.log.WithError(err).Warn("failed to encode state")
		}
	}
}

func (s *Server) handleFrame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tile := defaultTile
		if v := r.URL.Query().Get("tile"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 2 || parsed > maxFrameTile {
				http.Error(w, "tile must be between 2 and "+strconv.Itoa(maxFrameTile), http.StatusBadRequest)
				return
			}
			tile = parsed
		}

		var cells []uint8
		var w0, h0 int
		ctx, cancel := context.WithTimeout(r.Context(), hubTimeout)
		defer cancel()
		err := s.hub.Do(ctx, func(sim *flow.Simulation) {
			cells = append([]uint8(nil), sim.Cells()...)
			size := sim.Size()
			w0, h0 = size.W, size.H
		})
		if err != nil {
			s.log.WithError(err).Warn("frame request failed")
			http.Error(w, "grid unavailable", http.StatusServiceUnavailable)
			return
		}

		img := render.Image(cells, w0, h0, flow.Palette(), tile, color.RGBA{R: 10, G: 10, B: 12, A: 255})
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			s.log.WithError(err).Warn("failed to encode frame")
		}
	}
}

func (s *Server) handleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		c := newClient(conn, s.log)

		ctx, cancel := context.WithTimeout(r.Context(), hubTimeout)
		err = s.hub.register(ctx, c)
		cancel()
		if err != nil {
			c.log.WithError(err).Warn("hub did not accept client")
			conn.Close()
			return
		}

		go c.writeLoop()
		c.readLoop(s.hub)
	}
}
