package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "ZotProf Backend",
    "description": "Course search, professor insights and a schedule-planning chat for UCI students",
    "version": "1.0"
  },
  "basePath": "/",
  "tags": [
    {"name": "search"}, {"name": "professors"}, {"name": "grades"},
    {"name": "chat"}, {"name": "admin"}, {"name": "health"}
  ],
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Session store unavailable"}}}},
    "/api/search": {"get": {"tags": ["search"], "summary": "Search courses or professors",
      "parameters": [
        {"name": "q", "in": "query", "required": true, "type": "string"},
        {"name": "type", "in": "query", "type": "string", "enum": ["class", "professor"]},
        {"name": "term", "in": "query", "type": "string"}
      ],
      "responses": {"200": {"description": "Search result"}, "400": {"description": "Unparseable query or invalid term"}, "502": {"description": "Catalog unavailable"}}}},
    "/api/search-intent": {"post": {"tags": ["search"], "summary": "Parse a natural-language search",
      "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"query": {"type": "string"}}}}],
      "responses": {"200": {"description": "Structured intent"}}}},
    "/api/professors/{name}": {"get": {"tags": ["professors"], "summary": "Professor profile",
      "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
      "responses": {"200": {"description": "Profile, found=false when unknown"}}}},
    "/api/grades": {"get": {"tags": ["grades"], "summary": "Grade distribution",
      "parameters": [
        {"name": "instructor", "in": "query", "required": true, "type": "string"},
        {"name": "courseNumber", "in": "query", "required": true, "type": "string"}
      ],
      "responses": {"200": {"description": "Percentages or null"}, "502": {"description": "Grades unavailable"}}}},
    "/api/chat/sessions": {"post": {"tags": ["chat"], "summary": "Start a chat session",
      "parameters": [{"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"context": {"type": "string"}, "professor": {"type": "string"}, "course": {"type": "string"}}}}],
      "responses": {"201": {"description": "Session with greeting"}}}},
    "/api/chat/sessions/{id}": {
      "get": {"tags": ["chat"], "summary": "Get a chat session", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "Conversation state"}, "404": {"description": "Not found"}}},
      "delete": {"tags": ["chat"], "summary": "Delete a chat session", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
    },
    "/api/chat/sessions/{id}/messages": {"post": {"tags": ["chat"], "summary": "Send a chat message",
      "parameters": [
        {"name": "id", "in": "path", "required": true, "type": "string"},
        {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"message": {"type": "string"}}}}
      ],
      "responses": {"200": {"description": "Next state and assistant messages"}, "404": {"description": "Not found"}}}},
    "/api/admin/cache/purge": {"post": {"tags": ["admin"], "summary": "Purge in-process caches",
      "parameters": [{"name": "X-Admin-Key", "in": "header", "type": "string"}],
      "responses": {"200": {"description": "Purged entry counts"}, "401": {"description": "Invalid admin key"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
