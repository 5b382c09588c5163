package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters <mangaId>",
	Short: "Liste les chapitres d'un manga",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaID, err := positiveArg(args[0], "mangaId")
		if err != nil {
			return err
		}
		st, _, logs, err := openStack(cmd.Context())
		if err != nil {
			return err
		}
		defer logs.Close()
		defer st.Close()

		chapters, err := st.Server.Chapters(cmd.Context(), mangaID)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			fmt.Println("No chapter for this manga.")
			return nil
		}

		columns := []table.Column{
			{Title: "#", Width: 5},
			{Title: "Chapter", Width: 40},
			{Title: "Pages", Width: 6},
			{Title: "Read", Width: 5},
		}
		rows := make([]table.Row, 0, len(chapters))
		for _, ch := range chapters {
			read := ""
			if ch.Read {
				read = "✓"
			}
			rows = append(rows, table.Row{strconv.Itoa(ch.Index), ch.String(), strconv.Itoa(ch.PageCount), read})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)
		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.Foreground(lipgloss.NoColor{}).Bold(false)
		t.SetStyles(s)

		fmt.Println(t.View())
		return nil
	},
}
