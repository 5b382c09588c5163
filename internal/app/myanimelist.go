package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
)

var ErrMyAnimeListNotConfigured = errors.New("myanimelist not configured")

// MyAnimeListTracker utilise l'API v2 de MyAnimeList (token OAuth2 utilisateur).
type MyAnimeListTracker struct {
	token    string
	endpoint string
	client   *http.Client
}

func NewMyAnimeListTracker(token string) *MyAnimeListTracker {
	return &MyAnimeListTracker{
		token:    strings.TrimSpace(token),
		endpoint: "https://api.myanimelist.net/v2",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *MyAnimeListTracker) WithEndpoint(endpoint string) *MyAnimeListTracker {
	if strings.TrimSpace(endpoint) != "" {
		s.endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	}
	return s
}

func (s *MyAnimeListTracker) Kind() domain.TrackerKind { return domain.TrackerMyAnimeList }

type malMangaStatus struct {
	MyListStatus *struct {
		NumChaptersRead int    `json:"num_chapters_read"`
		Status          string `json:"status"`
	} `json:"my_list_status"`
}

func (s *MyAnimeListTracker) Progress(ctx context.Context, mangaID int) (int, error) {
	var out malMangaStatus
	path := fmt.Sprintf("/manga/%d?fields=my_list_status", mangaID)
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	if out.MyListStatus == nil {
		return 0, nil
	}
	return out.MyListStatus.NumChaptersRead, nil
}

func (s *MyAnimeListTracker) SetProgress(ctx context.Context, mangaID int, value int) error {
	form := url.Values{}
	form.Set("num_chapters_read", strconv.Itoa(value))
	path := fmt.Sprintf("/manga/%d/my_list_status", mangaID)
	return s.do(ctx, http.MethodPatch, path, form, nil)
}

func (s *MyAnimeListTracker) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if s == nil || s.token == "" {
		return ErrMyAnimeListNotConfigured
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mangaread-server")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return &CodedError{Code: "tracker_unavailable", Message: "myanimelist", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &CodedError{Code: "http_status", Message: "myanimelist http error: " + resp.Status}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("myanimelist decode: %w", err)
	}
	return nil
}
