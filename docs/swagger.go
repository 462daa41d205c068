// Package docs Content Showcase API
//
// Content Showcase serves an editorial article collection with category
// tabs, debounced search, sorting, cumulative pagination and bookmarks.
//
// swagger:meta
package docs

import "github.com/swaggo/swag"

// @title Content Showcase API
// @version 1.0
// @description Article discovery with per-visitor sessions and a newsletter signup

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func init() {
	swag.Register(swag.Name, &swag.Spec{
		InfoInstanceName: "swagger",
		SwaggerTemplate:  docTemplate,
	})
}

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Content Showcase API",
        "description": "Article discovery with per-visitor sessions and a newsletter signup",
        "version": "1.0.0",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "localhost:8080",
    "basePath": "/",
    "schemes": ["http", "https"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "operationId": "healthCheck",
                "responses": {
                    "200": {
                        "description": "Service is healthy",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {"type": "string", "example": "healthy"},
                                "articles": {"type": "integer"},
                                "sessions": {"type": "integer"}
                            }
                        }
                    }
                }
            }
        },
        "/api/v1/categories": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List categories with article counts, All first",
                "operationId": "getCategories",
                "responses": {
                    "200": {"description": "Categories and sort modes"}
                }
            }
        },
        "/api/v1/articles": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Filter, sort and page the catalog without a session",
                "operationId": "getArticles",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string", "enum": ["All", "Lifestyle", "Tech", "Craft", "Design"]},
                    {"name": "q", "in": "query", "type": "string", "description": "Case-insensitive match on title or excerpt"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["Newest", "Most Popular"]},
                    {"name": "page", "in": "query", "type": "integer", "description": "Pages revealed so far (cumulative)"},
                    {"name": "page_size", "in": "query", "type": "integer", "description": "Articles per page, at most 50"},
                    {"name": "$filter", "in": "query", "type": "string", "description": "OData filter on id, title, excerpt, category, author, publish_date, tags"}
                ],
                "responses": {
                    "200": {"description": "Visible articles", "schema": {"$ref": "#/definitions/ArticlePage"}},
                    "400": {"description": "Invalid query"}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Start a session; articles load after a short delay",
                "operationId": "createSession",
                "responses": {
                    "201": {"description": "Session created", "schema": {"$ref": "#/definitions/Session"}}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Current view of a session",
                "operationId": "getSession",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "200": {"description": "Session", "schema": {"$ref": "#/definitions/Session"}},
                    "404": {"description": "Unknown session"}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Close a session",
                "operationId": "deleteSession",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "204": {"description": "Closed"},
                    "404": {"description": "Unknown session"}
                }
            }
        },
        "/api/v1/sessions/{id}/category": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Select a category tab",
                "operationId": "setCategory",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"category": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}},
                    "400": {"description": "Unknown category"},
                    "404": {"description": "Unknown session"}
                }
            }
        },
        "/api/v1/sessions/{id}/search": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Type into the search box; applied after 300ms without typing unless commit is set",
                "operationId": "setSearch",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"query": {"type": "string"}, "commit": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}},
                    "404": {"description": "Unknown session"}
                }
            }
        },
        "/api/v1/sessions/{id}/sort": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Change the sort mode",
                "operationId": "setSort",
                "parameters": [
                    {"$ref": "#/parameters/sessionId"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"sort": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}},
                    "400": {"description": "Unknown sort mode"},
                    "404": {"description": "Unknown session"}
                }
            }
        },
        "/api/v1/sessions/{id}/more": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Reveal the next page",
                "operationId": "loadMore",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}},
                    "409": {"description": "Articles not loaded yet"}
                }
            }
        },
        "/api/v1/sessions/{id}/reset": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Clear category and search",
                "operationId": "resetFilters",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}}
                }
            }
        },
        "/api/v1/sessions/{id}/retry": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Retry a failed load",
                "operationId": "retry",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "200": {"description": "Updated view", "schema": {"$ref": "#/definitions/View"}}
                }
            }
        },
        "/api/v1/sessions/{id}/bookmarks/{article}": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Toggle a bookmark",
                "operationId": "toggleBookmark",
                "parameters": [{"$ref": "#/parameters/sessionId"}, {"$ref": "#/parameters/articleId"}],
                "responses": {
                    "200": {"description": "New bookmark membership"},
                    "404": {"description": "Unknown session or article"},
                    "409": {"description": "Articles not loaded yet"}
                }
            }
        },
        "/api/v1/sessions/{id}/articles/{article}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Article preview",
                "operationId": "getArticle",
                "parameters": [{"$ref": "#/parameters/sessionId"}, {"$ref": "#/parameters/articleId"}],
                "responses": {
                    "200": {"description": "Article detail"},
                    "404": {"description": "Unknown session or article"},
                    "409": {"description": "Articles not loaded yet"}
                }
            }
        },
        "/api/v1/sessions/{id}/notifications": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Drain pending notifications",
                "operationId": "getNotifications",
                "parameters": [{"$ref": "#/parameters/sessionId"}],
                "responses": {
                    "200": {"description": "Notifications, oldest first"}
                }
            }
        },
        "/api/v1/newsletter": {
            "post": {
                "tags": ["Newsletter"],
                "summary": "Submit an email address",
                "operationId": "subscribe",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"email": {"type": "string"}}}}
                ],
                "responses": {
                    "202": {"description": "Submission accepted", "schema": {"$ref": "#/definitions/Subscription"}},
                    "400": {"description": "Invalid email", "schema": {"$ref": "#/definitions/Subscription"}}
                }
            }
        },
        "/api/v1/newsletter/{id}": {
            "get": {
                "tags": ["Newsletter"],
                "summary": "Submission state",
                "operationId": "getSubscription",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}],
                "responses": {
                    "200": {"description": "Submission", "schema": {"$ref": "#/definitions/Subscription"}},
                    "404": {"description": "Unknown submission"}
                }
            }
        }
    },
    "parameters": {
        "sessionId": {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
        "articleId": {"name": "article", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "ArticleCard": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "category": {"type": "string"},
                "author": {"type": "object", "properties": {"name": {"type": "string"}, "avatar": {"type": "string"}}},
                "publish_date": {"type": "string", "example": "2024-01-15"},
                "display_date": {"type": "string", "example": "January 15, 2024"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "more_tags": {"type": "integer"},
                "image": {"type": "string"},
                "bookmarked": {"type": "boolean"}
            }
        },
        "ArticlePage": {
            "type": "object",
            "properties": {
                "articles": {"type": "array", "items": {"$ref": "#/definitions/ArticleCard"}},
                "total": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "empty_hint": {"type": "string"}
            }
        },
        "View": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["loading", "ready", "error"]},
                "query": {
                    "type": "object",
                    "properties": {
                        "category": {"type": "string"},
                        "raw_search": {"type": "string"},
                        "search": {"type": "string"},
                        "sort": {"type": "string"},
                        "page": {"type": "integer"}
                    }
                },
                "search_pending": {"type": "boolean"},
                "articles": {"type": "array", "items": {"$ref": "#/definitions/ArticleCard"}},
                "total": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "empty": {"type": "boolean"},
                "empty_hint": {"type": "string"},
                "placeholders": {"type": "integer"},
                "error": {"type": "string"},
                "bookmarks": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "created": {"type": "string", "format": "date-time"},
                "view": {"$ref": "#/definitions/View"}
            }
        },
        "Subscription": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "state": {"type": "string", "enum": ["idle", "validating", "success", "error"]},
                "email": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    },
    "tags": [
        {"name": "Health", "description": "Health check endpoints"},
        {"name": "Catalog", "description": "Stateless catalog queries"},
        {"name": "Sessions", "description": "Per-visitor discovery sessions"},
        {"name": "Newsletter", "description": "Newsletter signup"}
    ]
}`
