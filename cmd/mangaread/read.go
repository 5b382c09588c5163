package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/adapters/tui"
)

var readCmd = &cobra.Command{
	Use:   "read <mangaId> [chapterIndex]",
	Short: "Ouvre le lecteur sur un chapitre",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaID, err := positiveArg(args[0], "mangaId")
		if err != nil {
			return err
		}
		chapterIndex := 1
		if len(args) == 2 {
			if chapterIndex, err = positiveArg(args[1], "chapterIndex"); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		st, logger, logs, err := openStack(ctx)
		if err != nil {
			return err
		}
		defer logs.Close()
		defer st.Close()

		events, cancel := st.Bus.Subscribe()
		defer cancel()

		sess, err := st.Reading.Open(ctx, mangaID, chapterIndex)
		if err != nil {
			return err
		}
		model, err := tui.New(ctx, tui.Options{
			Session:  sess,
			Settings: st.Settings,
			Events:   events,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}
