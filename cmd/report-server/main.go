package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"glimpseqc/internal/config"
	"glimpseqc/internal/infrastructure"
	transport "glimpseqc/internal/transport/http"
	"glimpseqc/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dir        = flag.String("dir", ".", "report directory to serve")
		addr       = flag.String("addr", "", "listen address as host:port (overrides config)")
		configPath = flag.String("config", "", "path to a config file (default: ./"+config.DefaultConfigFile+" when present)")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("glimpseqc report-server %s\n", contracts.Version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *addr != "" {
		host, port, err := splitAddr(*addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -addr %q: %v\n", *addr, err)
			return 1
		}
		cfg.Serve.Host = host
		cfg.Serve.Port = port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: initialize logging: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	if _, err := os.Stat(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: report directory %q: %v\n", *dir, err)
		return 1
	}

	router := transport.NewRouter(*dir, logger)
	srv := transport.NewServer(cfg.Serve, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("report preview server listening",
		slog.String("address", "http://"+srv.Addr()),
		slog.String("dir", *dir))
	fmt.Printf("Serving %s on http://%s\n", *dir, srv.Addr())

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
		return 1
	}
	<-errCh
	logger.Info("server stopped")
	return 0
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("port %q is not a number", portStr)
	}
	return host, port, nil
}
