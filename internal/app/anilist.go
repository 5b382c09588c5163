package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

var ErrAniListNotConfigured = errors.New("anilist not configured")

// AniListTracker lit et écrit la progression de lecture d'un manga sur AniList.
type AniListTracker struct {
	token    string
	endpoint string
	client   *http.Client

	mu       sync.Mutex
	viewerID int
}

func NewAniListTracker(token string) *AniListTracker {
	return &AniListTracker{
		token:    strings.TrimSpace(token),
		endpoint: "https://graphql.anilist.co",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *AniListTracker) WithEndpoint(endpoint string) *AniListTracker {
	if strings.TrimSpace(endpoint) != "" {
		s.endpoint = strings.TrimSpace(endpoint)
	}
	return s
}

func (s *AniListTracker) Kind() domain.TrackerKind { return domain.TrackerAniList }

type aniListGraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type aniListGraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

type aniListGraphQLResponse[T any] struct {
	Data   T                     `json:"data"`
	Errors []aniListGraphQLError `json:"errors,omitempty"`
}

type AniListViewer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type viewerData struct {
	Viewer AniListViewer `json:"Viewer"`
}

func (s *AniListTracker) Viewer(ctx context.Context) (AniListViewer, error) {
	if s == nil || s.token == "" {
		return AniListViewer{}, ErrAniListNotConfigured
	}

	req := aniListGraphQLRequest{Query: `query { Viewer { id name } }`}
	var out aniListGraphQLResponse[viewerData]
	if err := s.do(ctx, req, &out); err != nil {
		return AniListViewer{}, err
	}
	if len(out.Errors) > 0 {
		return AniListViewer{}, errors.New(out.Errors[0].Message)
	}
	return out.Data.Viewer, nil
}

// userID met en cache l'id du compte associé au token.
func (s *AniListTracker) userID(ctx context.Context) (int, error) {
	s.mu.Lock()
	id := s.viewerID
	s.mu.Unlock()
	if id != 0 {
		return id, nil
	}
	v, err := s.Viewer(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.viewerID = v.ID
	s.mu.Unlock()
	return v.ID, nil
}

type mediaListData struct {
	MediaList *struct {
		Progress int `json:"progress"`
	} `json:"MediaList"`
}

// Progress renvoie le nombre de chapitres lus; 0 si le manga n'est pas dans
// la liste de l'utilisateur.
func (s *AniListTracker) Progress(ctx context.Context, mediaID int) (int, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return 0, err
	}

	req := aniListGraphQLRequest{
		Query:     `query($mangaId:Int,$userId:Int){ MediaList(mediaId:$mangaId, userId:$userId){ progress } }`,
		Variables: map[string]any{"mangaId": mediaID, "userId": userID},
	}
	var out aniListGraphQLResponse[mediaListData]
	err = s.do(ctx, req, &out)
	var httpErr *aniListHTTPError
	if errors.As(err, &httpErr) && httpErr.status == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(out.Errors) > 0 {
		if out.Errors[0].Status == http.StatusNotFound {
			return 0, nil
		}
		return 0, errors.New(out.Errors[0].Message)
	}
	if out.Data.MediaList == nil {
		return 0, nil
	}
	return out.Data.MediaList.Progress, nil
}

type saveEntryData struct {
	SaveMediaListEntry struct {
		ID       int `json:"id"`
		Progress int `json:"progress"`
	} `json:"SaveMediaListEntry"`
}

func (s *AniListTracker) SetProgress(ctx context.Context, mediaID int, value int) error {
	if s == nil || s.token == "" {
		return ErrAniListNotConfigured
	}
	req := aniListGraphQLRequest{
		Query:     `mutation($mangaId:Int,$progress:Int){ SaveMediaListEntry(mediaId:$mangaId, progress:$progress){ id progress } }`,
		Variables: map[string]any{"mangaId": mediaID, "progress": value},
	}
	var out aniListGraphQLResponse[saveEntryData]
	if err := s.do(ctx, req, &out); err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		return errors.New(out.Errors[0].Message)
	}
	return nil
}

type aniListHTTPError struct {
	status int
	text   string
}

func (e *aniListHTTPError) Error() string { return "anilist http error: " + e.text }

func (s *AniListTracker) do(ctx context.Context, req aniListGraphQLRequest, out any) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "mangaread-server")
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return &CodedError{Code: "tracker_unavailable", Message: "anilist", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &aniListHTTPError{status: resp.StatusCode, text: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("anilist decode: %w", err)
	}
	return nil
}
