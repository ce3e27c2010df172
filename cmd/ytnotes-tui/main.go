// ytnotes-tui is the terminal front end for go_ytnotes.
//
// Same configuration as the server binary; logs go to ytnotes-tui.log.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anatolykoptev/go_ytnotes/internal/app"
	"github.com/anatolykoptev/go_ytnotes/internal/tui"
)

func main() {
	cfg := app.LoadConfig()

	logFile, err := tea.LogToFile("ytnotes-tui.log", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: app.LogLevel(cfg.LogLevel),
	})))

	pipeline, err := app.NewPipeline(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.NewModel(pipeline), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("tui failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "tui failed: %v\n", err)
		os.Exit(1)
	}
}
