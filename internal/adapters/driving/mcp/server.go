package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultVersion is reported to clients when no build version is set.
	DefaultVersion = "dev"

	drainTimeout = 5 * time.Second
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger for transport events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the implementation version advertised on initialise.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// Server exposes the ask tool and the regulation resources over MCP.
type Server struct {
	ports   *Ports
	logger  *zap.Logger
	version string
	server  *mcp.Server
}

// NewServer registers the tools and resources backed by ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingAskService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, logger: zap.NewNop(), version: DefaultVersion}
	for _, opt := range opts {
		opt(s)
	}
	s.server = mcp.NewServer(&mcp.Implementation{Name: "regula", Version: s.version}, nil)
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Version returns the advertised implementation version.
func (s *Server) Version() string { return s.version }

// Run serves one client over stdin and stdout until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("serving mcp over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP transport for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mcp http transport listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		return srv.Shutdown(drainCtx)
	})
	return g.Wait()
}
