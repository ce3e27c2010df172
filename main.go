// go_ytnotes turns a YouTube video into detailed notes.
//
// Paste a video link, get its transcript summarized by an LLM and translated
// into one of thirteen languages. Serves the web form on WEB_PORT and the
// youtube_notes MCP tool on MCP_PORT (empty MCP_PORT disables it).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/browser"

	"github.com/anatolykoptev/go_ytnotes/internal/app"
	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/notesserver"
	"github.com/anatolykoptev/go_ytnotes/internal/webui"
)

var version = "dev"

func main() {
	cfg := app.LoadConfig()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.LogLevel(cfg.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_ytnotes",
		slog.String("web_port", cfg.WebPort),
		slog.String("mcp_port", cfg.MCPPort),
	)

	addr := ":" + cfg.WebPort
	web := webui.New(pipeline, engine.FormatMetrics)
	webErr := make(chan error, 1)
	go func() { webErr <- web.ListenAndServe(ctx, addr) }()

	if cfg.OpenBrowser {
		go func() {
			time.Sleep(300 * time.Millisecond)
			if err := browser.OpenURL("http://localhost" + addr); err != nil {
				slog.Warn("open browser failed", slog.Any("error", err))
			}
		}()
	}

	if cfg.MCPPort == "" {
		if err := <-webErr; err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytnotes",
		Version: version,
	}, nil)
	notesserver.RegisterTools(server, pipeline)

	mcpErr := make(chan error, 1)
	go func() {
		mcpErr <- mcpserver.Run(server, mcpserver.Config{
			Name:         "go_ytnotes",
			Version:      version,
			Port:         cfg.MCPPort,
			WriteTimeout: 4 * cfg.Timeout(),
			Metrics:      engine.FormatMetrics,
		})
	}()

	select {
	case err = <-webErr:
	case err = <-mcpErr:
	}
	if err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
