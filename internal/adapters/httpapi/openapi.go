package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/httpjson"
)

// handleOpenAPI renvoie un document OpenAPI minimal de l'API.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonBody := func(schemaRef string) map[string]any {
		return map[string]any{
			"required": true,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	noContent := map[string]any{"description": "No Content"}

	// Toutes les actions de session renvoient l'état à jour.
	sessionAction := func(bodyRef, okRef string) map[string]any {
		return map[string]any{
			"post": map[string]any{
				"requestBody": jsonBody(bodyRef),
				"responses": map[string]any{
					"200": jsonOK(okRef),
					"400": jsonErr,
					"404": jsonErr,
					"409": jsonErr,
					"502": jsonErr,
				},
			},
		}
	}

	str := map[string]any{"type": "string"}
	integer := map[string]any{"type": "integer"}
	boolean := map[string]any{"type": "boolean"}
	number := map[string]any{"type": "number", "format": "double"}
	origin := map[string]any{"type": "string", "enum": []any{"user", "system"}, "default": "user"}
	control := map[string]any{"type": "string", "enum": []any{"left", "right"}}

	object := func(props map[string]any, required ...any) map[string]any {
		o := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			o["required"] = required
		}
		return o
	}

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Manga Reader API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"OpenAPIDocument": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				"Error": object(map[string]any{"error": str, "code": str}, "error"),
				"ReaderSettings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"direction": map[string]any{"type": "string", "enum": []any{"ltr", "rtl"}},
						"mode":      map[string]any{"type": "string", "enum": []any{"paged", "strip"}},
					},
					"additionalProperties": false,
				},
				"MangaReaderSettings": object(map[string]any{
					"mangaId":   integer,
					"settings":  map[string]any{"$ref": "#/components/schemas/ReaderSettings"},
					"overrides": boolean,
				}, "mangaId", "settings", "overrides"),
				"NavigationState": object(map[string]any{
					"mangaId":        integer,
					"chapterId":      integer,
					"chapterIndex":   integer,
					"pageIndex":      integer,
					"pageCount":      integer,
					"hasNextChapter": boolean,
					"direction":      str,
					"mode":           str,
					"pageField":      str,
					"zoom":           number,
					"read":           boolean,
				}),
				"Session": object(map[string]any{
					"id":    str,
					"state": map[string]any{"$ref": "#/components/schemas/NavigationState"},
				}, "id", "state"),
				"SessionList": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/Session"},
				},
				"OpenSessionRequest": object(map[string]any{"mangaId": integer, "chapterIndex": integer}, "mangaId", "chapterIndex"),
				"ControlRequest":     object(map[string]any{"control": control}, "control"),
				"KeyRequest": object(map[string]any{
					"key": map[string]any{"type": "string", "enum": []any{"ArrowLeft", "ArrowRight"}},
				}, "key"),
				"PageRequest":       object(map[string]any{"input": str, "origin": origin}, "input"),
				"ChapterRequest":    object(map[string]any{"index": integer, "origin": origin}, "index"),
				"VisibilityRequest": object(map[string]any{"index": integer, "ratio": number, "origin": origin}, "index", "ratio"),
				"WheelRequest":      object(map[string]any{"deltaY": number}, "deltaY"),
				"AcceptedResponse": object(map[string]any{
					"accepted": boolean,
					"session":  map[string]any{"$ref": "#/components/schemas/Session"},
				}, "accepted", "session"),
				"WheelResponse": object(map[string]any{
					"zoom":    number,
					"session": map[string]any{"$ref": "#/components/schemas/Session"},
				}, "zoom", "session"),
				"PageList": object(map[string]any{
					"sessionId": str,
					"pages": map[string]any{
						"type":  "array",
						"items": object(map[string]any{"index": integer, "url": str}),
					},
				}),
				"ChapterList": map[string]any{
					"type": "array",
					"items": object(map[string]any{
						"id":           integer,
						"mangaId":      integer,
						"index":        integer,
						"number":       number,
						"name":         str,
						"pageCount":    integer,
						"uploadDate":   map[string]any{"type": "string", "format": "date-time"},
						"read":         boolean,
						"bookmarked":   boolean,
						"lastPageRead": integer,
					}),
				},
				"Tracker": object(map[string]any{
					"mangaId":         integer,
					"anilistId":       integer,
					"malId":           integer,
					"private":         boolean,
					"anilistProgress": integer,
					"malProgress":     integer,
				}),
				"SyncResult": object(map[string]any{
					"mangaId":  integer,
					"ordinal":  integer,
					"accepted": boolean,
					"remotes": map[string]any{
						"type":  "array",
						"items": object(map[string]any{"kind": str, "id": integer}),
					},
				}),
				"NotificationList": map[string]any{
					"type": "array",
					"items": object(map[string]any{
						"id":        str,
						"level":     map[string]any{"type": "string", "enum": []any{"info", "error"}},
						"message":   str,
						"mangaId":   integer,
						"chapterId": integer,
						"createdAt": map[string]any{"type": "string", "format": "date-time"},
					}),
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/openapi.json": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/OpenAPIDocument")}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "SSE"}}},
			},
			"/api/v1/sessions": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/SessionList")}},
				"post": map[string]any{
					"requestBody": jsonBody("#/components/schemas/OpenSessionRequest"),
					"responses": map[string]any{
						"201": jsonOK("#/components/schemas/Session"),
						"400": jsonErr,
						"404": jsonErr,
						"502": jsonErr,
					},
				},
			},
			"/api/v1/sessions/{id}": map[string]any{
				"get":    map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Session"), "404": jsonErr}},
				"delete": map[string]any{"responses": map[string]any{"204": noContent, "404": jsonErr}},
			},
			"/api/v1/sessions/{id}/pages": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/PageList"), "404": jsonErr}},
			},
			"/api/v1/sessions/{id}/chapters": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/ChapterList"), "404": jsonErr, "502": jsonErr}},
			},
			"/api/v1/sessions/{id}/controls":         sessionAction("#/components/schemas/ControlRequest", "#/components/schemas/Session"),
			"/api/v1/sessions/{id}/keys":             sessionAction("#/components/schemas/KeyRequest", "#/components/schemas/Session"),
			"/api/v1/sessions/{id}/chapter-controls": sessionAction("#/components/schemas/ControlRequest", "#/components/schemas/Session"),
			"/api/v1/sessions/{id}/page":             sessionAction("#/components/schemas/PageRequest", "#/components/schemas/AcceptedResponse"),
			"/api/v1/sessions/{id}/chapter":          sessionAction("#/components/schemas/ChapterRequest", "#/components/schemas/AcceptedResponse"),
			"/api/v1/sessions/{id}/visibility":       sessionAction("#/components/schemas/VisibilityRequest", "#/components/schemas/Session"),
			"/api/v1/sessions/{id}/wheel":            sessionAction("#/components/schemas/WheelRequest", "#/components/schemas/WheelResponse"),
			"/api/v1/settings/reader": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/ReaderSettings"), "500": jsonErr}},
				"put": map[string]any{
					"parameters": []any{
						map[string]any{"name": "fromManga", "in": "query", "schema": integer},
					},
					"requestBody": jsonBody("#/components/schemas/ReaderSettings"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/ReaderSettings"),
						"400": jsonErr,
						"500": jsonErr,
					},
				},
			},
			"/api/v1/mangas/{mangaId}/reader-settings": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/MangaReaderSettings"), "400": jsonErr}},
				"put": map[string]any{
					"requestBody": jsonBody("#/components/schemas/ReaderSettings"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/MangaReaderSettings"),
						"400": jsonErr,
					},
				},
				"delete": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/MangaReaderSettings"), "400": jsonErr}},
			},
			"/api/v1/mangas/{mangaId}/tracker": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Tracker"), "400": jsonErr}},
				"put": map[string]any{
					"requestBody": jsonBody("#/components/schemas/Tracker"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Tracker"),
						"400": jsonErr,
					},
				},
			},
			"/api/v1/mangas/{mangaId}/tracker/sync": map[string]any{
				"post": map[string]any{"responses": map[string]any{
					"200": jsonOK("#/components/schemas/SyncResult"),
					"202": jsonOK("#/components/schemas/SyncResult"),
					"502": jsonErr,
				}},
			},
			"/api/v1/trackers/anilist/viewer": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}, "400": jsonErr, "501": jsonErr, "502": jsonErr}},
			},
			"/api/v1/notifications": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/NotificationList")}},
			},
			"/api/v1/notifications/{id}": map[string]any{
				"delete": map[string]any{"responses": map[string]any{"204": noContent, "404": jsonErr}},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, doc)
}
