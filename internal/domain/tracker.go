package domain

type TrackerKind string

const (
	TrackerAniList     TrackerKind = "anilist"
	TrackerMyAnimeList TrackerKind = "myanimelist"
)

// Tracker associe un manga local à ses identifiants distants.
// Un identifiant à 0 signifie que le tracker est inactif pour ce manga.
type Tracker struct {
	MangaID   int  `json:"mangaId"`
	AniListID int  `json:"anilistId"`
	MALID     int  `json:"malId"`
	Private   bool `json:"private"`

	// Dernière progression envoyée avec succès à chaque tracker.
	AniListProgress int `json:"anilistProgress"`
	MALProgress     int `json:"malProgress"`
}

func (t Tracker) HasAniListID() bool { return t.AniListID != 0 }

func (t Tracker) HasMALID() bool { return t.MALID != 0 }

type RemoteRef struct {
	Kind TrackerKind
	ID   int
}

// Remotes liste les associations actives, dans un ordre stable.
func (t Tracker) Remotes() []RemoteRef {
	var out []RemoteRef
	if t.HasAniListID() {
		out = append(out, RemoteRef{Kind: TrackerAniList, ID: t.AniListID})
	}
	if t.HasMALID() {
		out = append(out, RemoteRef{Kind: TrackerMyAnimeList, ID: t.MALID})
	}
	return out
}

// Progress renvoie la dernière progression synchronisée pour ce tracker.
func (t Tracker) Progress(kind TrackerKind) int {
	switch kind {
	case TrackerAniList:
		return t.AniListProgress
	case TrackerMyAnimeList:
		return t.MALProgress
	}
	return 0
}

func ParseTrackerKind(s string) (TrackerKind, bool) {
	switch TrackerKind(s) {
	case TrackerAniList, TrackerMyAnimeList:
		return TrackerKind(s), true
	}
	return "", false
}
