package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/autosave"
	"github.com/sandeepkv93/studyd/internal/update"
)

func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(rootOpts, cmd)
		},
	}
}

func runTUI(opts *RootOptions, cmd *cobra.Command) error {
	return withRuntime(opts, cmd, func(rt *runtime) error {
		saver := autosave.New(rt.cfg.AutosaveDelay, 16)
		saver.Start()
		defer saver.Stop()

		m := update.NewModel(update.Deps{
			Store:    rt.store,
			Cascade:  rt.cascade,
			Autosave: saver,
			Config:   rt.cfg,
			Logger:   rt.logger,
			Now:      rt.now,
		})
		rt.logger.Info("tui start", "backend", rt.cfg.Backend, "autosave", rt.cfg.AutosaveDelay)

		program := tea.NewProgram(m,
			tea.WithAltScreen(),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
			tea.WithContext(cmd.Context()),
		)
		final, err := program.Run()
		if fm, ok := final.(update.Model); ok {
			fm = fm.Shutdown()
			if fm.LastError != nil {
				rt.logger.Warn("tui exit", "err", fm.LastError)
			}
		}
		if err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})
}
