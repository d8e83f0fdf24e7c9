// Command colormatch starts the Color Match game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, preset and data directories, debug logging,
// version output, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/colormatch/api"
	"github.com/wricardo/colormatch/game/config"
	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
	"github.com/wricardo/colormatch/logging"
	"github.com/wricardo/colormatch/transport/mcp"
	"github.com/wricardo/colormatch/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Color Match Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing difficulty presets")
	configName   = flag.String("config", envDefault("COLORMATCH_CONFIG", ""), "Preset to start with (default: classic)")
	dataDir      = flag.String("data-dir", envDefault("DATA_DIR", "data"), "Directory for the high score file")
	staticDir    = flag.String("static-dir", envDefault("STATIC_DIR", api.DefaultStaticDir), "Directory with the browser client")
	ephemeral    = flag.Bool("ephemeral", false, "Keep the high score in memory only")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// shutdownTimeout bounds HTTP shutdown and the final high score flush
const shutdownTimeout = 10 * time.Second

// envDefault returns the environment value for key, or fallback when unset.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                       # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config relaxed       # Start with the relaxed preset\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ephemeral -port 9090 # No high score file, port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp             # Run MCP stdio server\n", os.Args[0])
	}
}

// game bundles the wired components of one running session
type game struct {
	log     log15.Logger
	configs *config.Manager
	manager *session.Manager
	service service.GameService
	hub     *websocket.Hub
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger := logging.New(os.Stderr, *debug)
	if envErr == nil {
		logger.Debug("loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("error loading .env file", "err", envErr)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	logger.Info("starting", "app", AppName, "version", Version, "mode", mode)

	// Initialize services
	g, err := initializeServices(logger)
	if err != nil {
		logger.Crit("failed to initialize services", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		err = runStdioMCPWithInternalServer(ctx, g)

	case "server", "http":
		err = runHTTPServer(ctx, g)

	default:
		logger.Crit("unknown mode, use 'server' (default) or 'stdio-mcp'", "mode", mode)
		os.Exit(2)
	}

	if err != nil {
		logger.Crit("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// initializeServices wires the preset manager, high score store, session
// manager, game service and WebSocket hub.
func initializeServices(logger log15.Logger) (*game, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if *configName != "" {
		if err := configManager.SetDefault(*configName); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", *configName, err)
		}
	}
	gameConfig := configManager.GetDefault()

	var store session.HighScoreStore
	if *ephemeral {
		store = session.NewMemoryStore(nil)
	} else {
		fileStore, err := session.NewFileStore(*dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create score store: %w", err)
		}
		logger.Debug("high score file", "path", fileStore.Path())
		store = fileStore
	}

	eng, err := engine.NewEngine(gameConfig, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	manager := session.NewManager(eng, store, session.WithLogger(logger.New("component", "session")))
	gameService := service.NewGameService(manager, configManager)

	hub := websocket.NewHub(logger.New("component", "websocket"))
	hub.SetInputHandler(gameService)
	hub.SetSnapshotFunc(manager.State)
	manager.Subscribe(hub.Publish)

	return &game{
		log:     logger,
		configs: configManager,
		manager: manager,
		service: gameService,
		hub:     hub,
	}, nil
}

// newRouter combines the REST API, WebSocket and the /mcp endpoint
func newRouter(g *game, mcpClient *mcp.Client) http.Handler {
	apiServer := api.NewServer(g.service, g.hub, g.log.New("component", "api"))
	apiServer.SetStaticDir(*staticDir)

	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runBackground starts the session loop and the hub
func runBackground(eg *errgroup.Group, ctx context.Context, g *game) {
	eg.Go(func() error {
		return g.manager.Run(ctx)
	})
	eg.Go(func() error {
		g.hub.Run(ctx)
		return nil
	})
}

// flushScores waits for the last high score write before exit
func flushScores(g *game) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := g.manager.Flush(ctx); err != nil {
		g.log.Warn("high score writes still pending at exit", "err", err)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, g *game) error {
	addr := fmt.Sprintf("%s:%d", *host, *port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	router := newRouter(g, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	runBackground(eg, egCtx, g)

	eg.Go(func() error {
		g.log.Info("HTTP server listening", "addr", addr)
		g.log.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if ngrokShouldRun() {
		eg.Go(func() error {
			runNgrok(egCtx, g.log.New("component", "ngrok"), router)
			return nil
		})
	}

	// Graceful shutdown once a signal arrives or a component fails
	eg.Go(func() error {
		<-egCtx.Done()
		g.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			g.log.Warn("HTTP server shutdown error", "err", err)
		}
		return nil
	})

	err := eg.Wait()
	flushScores(g)
	return err
}

// ngrokShouldRun checks the flag and the NGROK_ENABLED environment variable
func ngrokShouldRun() bool {
	if *ngrokEnabled {
		return true
	}
	envEnabled := os.Getenv("NGROK_ENABLED")
	return envEnabled == "true" || envEnabled == "1"
}

// runNgrok serves handler through a public tunnel until ctx ends. Tunnel
// failures are logged; the local server keeps running.
func runNgrok(ctx context.Context, logger log15.Logger, handler http.Handler) {
	// Get auth token from flag or environment (support both naming conventions)
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envDefault("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	// Get domain from flag or environment
	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "err", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established", "url", ngrokURL,
		"api", ngrokURL+"/api", "ws", ngrokURL+"/ws", "mcp", ngrokURL+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "err", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Error("ngrok server error", "err", err)
	}
	logger.Info("ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, g *game) error {
	externalURL := "http://localhost:8080"
	g.log.Info("checking for external API server", "url", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		g.log.Info("external API server found, using it for MCP", "url", externalURL)
		return server.ServeStdio(mcp.NewClient(externalURL).GetMCPServer())
	}

	g.log.Info("no external API server found, starting internal HTTP server")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to get available port: %w", err)
	}
	internalAddr := listener.Addr().String()
	baseURL := fmt.Sprintf("http://%s", internalAddr)

	apiServer := api.NewServer(g.service, g.hub, g.log.New("component", "api"))
	httpServer := &http.Server{Handler: apiServer}

	eg, egCtx := errgroup.WithContext(ctx)
	runBackground(eg, egCtx, g)

	eg.Go(func() error {
		g.log.Info("internal HTTP server for MCP stdio", "addr", internalAddr)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("internal HTTP server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		g.log.Info("MCP stdio server ready")
		err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("MCP stdio server error: %w", err)
		}
		// stdin closed: stop the rest of the group
		return context.Canceled
	})

	err = eg.Wait()
	flushScores(g)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
