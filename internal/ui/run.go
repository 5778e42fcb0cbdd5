package ui

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
	"github.com/DaanHessen/fieldmap-tui/internal/util"
)

// Run loads the dataset through gw, boots the TUI and blocks until it exits.
func Run(ctx context.Context, gw engine.Gateway, cfg *util.Config, version string) error {
	m := initialModel(ctx, gw, cfg, version)
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := m.ctrl.Load(loadCtx, m.sess); err != nil {
		log.Printf("load failed: %v", err)
		m.notices.Notify("Could not load data: " + err.Error() + "\nSaving stays disabled. Press ctrl+r to retry.")
	}
	m.centerCamera()
	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := program.Run()
	return err
}
