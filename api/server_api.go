package api

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	defaultPort             = 8000
	defaultTokenSecret      = "dev-only-match-token-secret"
	defaultTokenLifetime    = mb.DefaultMatchTTL
	defaultCleanupInterval  = time.Minute * 5
	URLQueryTokenKeyword    = "token"
	URLParamMatchUuid       = "matchUuid"
	restHandlerTimeout      = time.Second * 10
	maxAllowedPortNumber    = 65535
	minAllowedPortNumber    = 1
	wsHandshakeTimeout      = time.Second * 5
	wsReadWriteBufferLength = 2048
)

type Server struct {
	port           int
	stage          string
	tokenSecret    []byte
	tokenLifetime  time.Duration
	randSeed       int64
	matchOpts      []mb.MatchOption
	allowedOrigins map[string]bool
	ipnet          net.IPNet
	upgrader       websocket.Upgrader
	router         *chi.Mux

	Db           *sql.DB
	DbManager    sqlc.DbManager
	MatchManager mb.MatchManager
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		port:           defaultPort,
		stage:          StageDev,
		tokenLifetime:  defaultTokenLifetime,
		allowedOrigins: make(map[string]bool),
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	if len(server.tokenSecret) == 0 {
		if server.stage == StageProd {
			panic("a match token secret is required in prod")
		}
		server.tokenSecret = []byte(defaultTokenSecret)
	}
	if server.MatchManager == nil {
		server.MatchManager = mb.NewBattleshipMatchManager()
	}
	if server.Db != nil {
		server.DbManager = sqlc.NewDbManager(sqlc.New(server.Db))
	} else {
		server.DbManager = sqlc.NewDbManager(nil)
	}

	server.ipnet = getServerIpNet()
	server.upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: wsHandshakeTimeout,
		ReadBufferSize:   wsReadWriteBufferLength,
		WriteBufferSize:  wsReadWriteBufferLength,
		CheckOrigin:      server.checkOrigin,
	}
	server.router = server.routes()

	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < minAllowedPortNumber || port > maxAllowedPortNumber {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		s.Db = db
		return nil
	}
}

func WithMatchManager(matchManager mb.MatchManager) Option {
	return func(s *Server) error {
		if matchManager == nil {
			return fmt.Errorf("match manager cannot be nil")
		}
		s.MatchManager = matchManager
		return nil
	}
}

func WithTokenSecret(secret string) Option {
	return func(s *Server) error {
		if secret == "" {
			return nil
		}
		if len(secret) < 16 {
			return fmt.Errorf("match token secret must be at least 16 characters")
		}
		s.tokenSecret = []byte(secret)
		return nil
	}
}

// WithRandSeed makes every match of this server reproducible. Zero
// keeps the time based seed.
func WithRandSeed(seed int64) Option {
	return func(s *Server) error {
		s.randSeed = seed
		return nil
	}
}

// WithMatchOptions applies opts to every match the server creates, after
// the seed from WithRandSeed.
func WithMatchOptions(opts ...mb.MatchOption) Option {
	return func(s *Server) error {
		s.matchOpts = append(s.matchOpts, opts...)
		return nil
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		for _, origin := range origins {
			if origin != "" {
				s.allowedOrigins[origin] = true
			}
		}
		return nil
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.stage == StageDev {
		return true
	}
	return s.allowedOrigins[r.Header.Get("Origin")]
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	// websocket connections outlive any handler timeout
	r.Get("/battleship", s.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(restHandlerTimeout))
		r.Use(jsonContentType)

		r.Get("/health", s.handleHealth)
		r.With(s.requireMatchToken).Get("/matches/{"+URLParamMatchUuid+"}", s.handleSnapshot)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found")
	})
	return r
}

func (s *Server) Router() chi.Router {
	return s.router
}

// Expose this method to use it in testing
func (s *Server) GetIpNet() net.IPNet {
	return s.ipnet
}

func (s *Server) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(s.port)
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Str("stage", s.stage).Bool("analytics", s.DbManager.Analytics.Enabled()).Msg("listening")
	return http.ListenAndServe(s.Addr(), s.router)
}

// CleanupPeriodically drops matches nobody has touched for a while so
// abandoned connections do not pile up.
func (s *Server) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := s.MatchManager.RemoveStale(now)
			if len(removed) > 0 {
				log.Info().Strs("matches", removed).Msg("removed stale matches")
			}
		}
	}
}

// getServerIpNet picks the first non loopback IPv4 address. Hosts
// without one fall back to loopback.
func getServerIpNet() net.IPNet {
	fallback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list interfaces")
		return fallback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() {
				return net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}
			}
		}
	}
	return fallback
}
