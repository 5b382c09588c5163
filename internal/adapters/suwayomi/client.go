// Package suwayomi parle à l'API GraphQL d'un serveur Suwayomi.
package suwayomi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/domain"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
)

const chapterFields = `id mangaId sourceOrder chapterNumber name pageCount uploadDate isRead isBookmarked lastPageRead`

type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBasicAuth active l'authentification basique du serveur.
func (c *Client) WithBasicAuth(username, password string) *Client {
	c.username = strings.TrimSpace(username)
	c.password = password
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type chapterNode struct {
	ID            int     `json:"id"`
	MangaID       int     `json:"mangaId"`
	SourceOrder   int     `json:"sourceOrder"`
	ChapterNumber float64 `json:"chapterNumber"`
	Name          string  `json:"name"`
	PageCount     int     `json:"pageCount"`
	UploadDate    string  `json:"uploadDate"`
	IsRead        bool    `json:"isRead"`
	IsBookmarked  bool    `json:"isBookmarked"`
	LastPageRead  int     `json:"lastPageRead"`
}

func (n chapterNode) toDomain() domain.Chapter {
	ch := domain.Chapter{
		ID:           n.ID,
		MangaID:      n.MangaID,
		Index:        n.SourceOrder,
		Number:       n.ChapterNumber,
		Name:         n.Name,
		PageCount:    n.PageCount,
		Read:         n.IsRead,
		Bookmarked:   n.IsBookmarked,
		LastPageRead: n.LastPageRead,
	}
	// uploadDate est un timestamp en millisecondes sérialisé en chaîne.
	if ms, err := strconv.ParseInt(n.UploadDate, 10, 64); err == nil && ms > 0 {
		ch.UploadDate = time.UnixMilli(ms).UTC()
	}
	return ch
}

type chaptersData struct {
	Chapters struct {
		Nodes []chapterNode `json:"nodes"`
	} `json:"chapters"`
}

// Chapter renvoie ports.ErrNotFound si le manga n'a pas de chapitre à cet index.
func (c *Client) Chapter(ctx context.Context, mangaID, index int) (domain.Chapter, error) {
	req := graphQLRequest{
		Query:     `query($mangaId:Int!,$sourceOrder:Int!){ chapters(condition:{mangaId:$mangaId, sourceOrder:$sourceOrder}){ nodes{ ` + chapterFields + ` } } }`,
		Variables: map[string]any{"mangaId": mangaID, "sourceOrder": index},
	}
	var out graphQLResponse[chaptersData]
	if err := c.do(ctx, req, &out); err != nil {
		return domain.Chapter{}, err
	}
	if err := firstError(out.Errors); err != nil {
		return domain.Chapter{}, err
	}
	if len(out.Data.Chapters.Nodes) == 0 {
		return domain.Chapter{}, fmt.Errorf("manga %d chapter %d: %w", mangaID, index, ports.ErrNotFound)
	}
	return out.Data.Chapters.Nodes[0].toDomain(), nil
}

type mangaChaptersData struct {
	Manga *struct {
		Chapters struct {
			Nodes []chapterNode `json:"nodes"`
		} `json:"chapters"`
	} `json:"manga"`
}

// Chapters liste les chapitres du manga dans l'ordre de la source.
func (c *Client) Chapters(ctx context.Context, mangaID int) ([]domain.Chapter, error) {
	req := graphQLRequest{
		Query:     `query($id:Int!){ manga(id:$id){ chapters{ nodes{ ` + chapterFields + ` } } } }`,
		Variables: map[string]any{"id": mangaID},
	}
	var out graphQLResponse[mangaChaptersData]
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if err := firstError(out.Errors); err != nil {
		return nil, err
	}
	if out.Data.Manga == nil {
		return nil, fmt.Errorf("manga %d: %w", mangaID, ports.ErrNotFound)
	}
	nodes := out.Data.Manga.Chapters.Nodes
	list := make([]domain.Chapter, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, n.toDomain())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list, nil
}

type pagesData struct {
	FetchChapterPages struct {
		Pages []string `json:"pages"`
	} `json:"fetchChapterPages"`
}

func (c *Client) ChapterPages(ctx context.Context, chapterID int) ([]string, error) {
	req := graphQLRequest{
		Query:     `mutation($id:Int!){ fetchChapterPages(input:{chapterId:$id}){ pages } }`,
		Variables: map[string]any{"id": chapterID},
	}
	var out graphQLResponse[pagesData]
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if err := firstError(out.Errors); err != nil {
		return nil, err
	}
	return out.Data.FetchChapterPages.Pages, nil
}

type updateChapterData struct {
	UpdateChapter struct {
		Chapter struct {
			ID     int  `json:"id"`
			IsRead bool `json:"isRead"`
		} `json:"chapter"`
	} `json:"updateChapter"`
}

func (c *Client) SetChapterRead(ctx context.Context, chapterID int) error {
	req := graphQLRequest{
		Query:     `mutation($id:Int!,$isRead:Boolean!){ updateChapter(input:{id:$id, patch:{isRead:$isRead}}){ chapter{ id isRead } } }`,
		Variables: map[string]any{"id": chapterID, "isRead": true},
	}
	var out graphQLResponse[updateChapterData]
	if err := c.do(ctx, req, &out); err != nil {
		return err
	}
	if err := firstError(out.Errors); err != nil {
		return err
	}
	if !out.Data.UpdateChapter.Chapter.IsRead {
		return fmt.Errorf("chapter %d: server did not mark it read", chapterID)
	}
	return nil
}

// About renvoie le nom et la version du serveur (sonde de santé).
func (c *Client) About(ctx context.Context) (string, error) {
	req := graphQLRequest{Query: `query{ aboutServer{ name version } }`}
	var out graphQLResponse[struct {
		AboutServer struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"aboutServer"`
	}]
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if err := firstError(out.Errors); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Data.AboutServer.Name + " " + out.Data.AboutServer.Version), nil
}

func firstError(errs []graphQLError) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New("suwayomi: " + errs[0].Message)
}

func (c *Client) do(ctx context.Context, req graphQLRequest, out any) error {
	if c.baseURL == "" {
		return errors.New("suwayomi: no server url")
	}
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/graphql", bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("suwayomi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.New("suwayomi http error: " + resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("suwayomi decode: %w", err)
	}
	return nil
}
