package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/hive/agent"
	"github.com/nstehr/hive/config"
	"github.com/nstehr/hive/ipc"
	"github.com/nstehr/hive/store"
)

const banner = `
██╗  ██╗██╗██╗   ██╗███████╗
██║  ██║██║██║   ██║██╔════╝
███████║██║██║   ██║█████╗
██╔══██║██║╚██╗ ██╔╝██╔══╝
██║  ██║██║ ╚████╔╝ ███████╗
╚═╝  ╚═╝╚═╝  ╚═══╝  ╚══════╝

Tick-Driven Colony Intelligence`

func main() {
	var (
		configPath = flag.String("config", "", "YAML tuning file")
		socketPath = flag.String("socket", "", "Unix socket to listen on (overrides config)")
		wsAddr     = flag.String("ws", "", "WebSocket listen address, e.g. :8090 (overrides config)")
		dbPath     = flag.String("db", "", "SQLite database path; \"memory\" keeps state in process (overrides config)")
	)
	flag.Parse()

	var level slog.LevelVar
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level})))

	fmt.Println(banner)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	level.Set(cfg.Level())
	if *socketPath != "" {
		cfg.Listen.Socket = *socketPath
	}
	if *wsAddr != "" {
		cfg.Listen.WebSocket = *wsAddr
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	slog.Info("starting hive", "socket", cfg.Listen.Socket, "websocket", cfg.Listen.WebSocket, "db", cfg.Store.Path)

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &server{cfg: cfg, configPath: *configPath, store: st, ctx: ctx}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Listen.Socket); err != nil {
		slog.Error("failed to clean up socket", "path", cfg.Listen.Socket, "error", err)
		os.Exit(1)
	}
	listener, err := net.Listen("unix", cfg.Listen.Socket)
	if err != nil {
		slog.Error("failed to listen on socket", "path", cfg.Listen.Socket, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(cfg.Listen.Socket)
	slog.Info("listening on domain socket", "path", cfg.Listen.Socket)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go srv.serve(ipc.NewStreamTransport(conn))
		}
	}()

	if cfg.Listen.WebSocket != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", ipc.WebSocketHandler(srv.serve))
		httpSrv := &http.Server{Addr: cfg.Listen.WebSocket, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("listening for websocket", "addr", cfg.Listen.WebSocket)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
}

func openStore(path string) (store.Store, error) {
	if path == "" || path == "memory" {
		slog.Warn("running without a database; memory is lost on exit")
		return store.NewMemStore(), nil
	}
	return store.OpenSQLite(path)
}

type server struct {
	cfg        config.Config
	configPath string
	store      store.Store
	ctx        context.Context
}

// serve runs one session for the life of the transport.
func (s *server) serve(t ipc.Transport) {
	kernel, err := agent.NewKernel(s.cfg, time.Now().UnixNano())
	if err != nil {
		slog.Error("failed to build kernel", "error", err)
		_ = t.Close()
		return
	}
	strategist := agent.NewStrategist(kernel.Rules(), s.configPath, s.cfg.Agent.ReloadTicks, s.cfg.Spawn.Directives)
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go strategist.Start(ctx)

	a := agent.New(s.store, kernel, strategist, time.Duration(s.cfg.Agent.SaveTimeoutMS)*time.Millisecond)
	c := ipc.NewConnection(t, nil)
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := a.HandleHello(env)
		if err == nil {
			c.Player = a.Player
		}
		return resp, err
	})
	c.RegisterHandler(ipc.TypeTick, a.HandleTick)
	c.ReadLoop()
	slog.Info("session ended", "session", a.ID, "player", a.Player)
}
