package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Chapter struct {
	ID      int `json:"id"`
	MangaID int `json:"mangaId"`

	// Index est la position 1-based du chapitre dans le manga (sourceOrder côté serveur).
	Index int `json:"index"`

	// Number est le numéro affiché (peut être décimal, ex: 10.5).
	Number float64 `json:"number"`

	Name         string    `json:"name"`
	PageCount    int       `json:"pageCount"`
	UploadDate   time.Time `json:"uploadDate"`
	Read         bool      `json:"read"`
	Bookmarked   bool      `json:"bookmarked"`
	LastPageRead int       `json:"lastPageRead"`
}

// Ordinal renvoie le numéro entier utilisé pour la progression des trackers.
func (c Chapter) Ordinal() int {
	if c.Number <= 0 || math.IsNaN(c.Number) {
		return 0
	}
	return int(math.Floor(c.Number))
}

func (c Chapter) String() string {
	if c.Name != "" {
		return c.Name
	}
	return "Chapter " + strconv.FormatFloat(c.Number, 'f', -1, 64)
}

// PageRef pointe vers une page d'un chapitre. Immuable une fois chargée.
type PageRef struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// NewPageRefs construit la séquence ordonnée des pages. Les URLs relatives
// sont résolues par rapport à baseURL.
func NewPageRefs(baseURL string, urls []string) []PageRef {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	out := make([]PageRef, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if base != "" && !strings.Contains(u, "://") {
			if !strings.HasPrefix(u, "/") {
				u = "/" + u
			}
			u = base + u
		}
		out = append(out, PageRef{Index: i, URL: u})
	}
	return out
}
