package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Vérifie que mangaread-server répond",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(serverURL + "/api/v1/health")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Affiche la version du CLI et du serveur",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("mangaread", buildinfo.Current())
		return get(serverURL + "/api/v1/version")
	},
}

func get(url string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(strings.TrimRight(url, "/"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
	} else {
		os.Stdout.Write(b)
		os.Stdout.Write([]byte("\n"))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
