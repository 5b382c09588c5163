package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	timeout    time.Duration
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "mangaread",
	Short: "Lecteur de mangas en terminal pour Suwayomi",
	Long:  "Lit les chapitres d'un serveur Suwayomi, synchronise la progression sur AniList/MyAnimeList et interroge mangaread-server.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MANGAREAD_SERVER_URL", "http://127.0.0.1:8080"), "URL de mangaread-server")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout HTTP")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Fichier de configuration (défaut: mangaread.yaml)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
