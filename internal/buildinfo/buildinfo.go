package buildinfo

import "runtime/debug"

// Injectées à la compilation via -ldflags :
//
//	-X github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo.Version=v0.1.0
//	-X github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo.Commit=abcdef
//	-X github.com/Guilhem-Bonnet/Manga-Reader/internal/buildinfo.Date=2026-10-19
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

// Current complète le commit depuis les infos VCS du binaire quand -ldflags
// ne l'a pas fourni.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String donne la forme courte affichée par le CLI.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		c := i.Commit
		if len(c) > 7 {
			c = c[:7]
		}
		s += " (" + c + ")"
	}
	return s
}
