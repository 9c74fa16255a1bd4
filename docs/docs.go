// Package docs holds the OpenAPI document served at /openapi.json. Keep it in
// step with the swag annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RootResponse"}}
                }
            }
        },
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PingResponse"}}
                }
            }
        },
        "/api/v1/reactions/summary": {
            "get": {
                "description": "Counts by kind and by emoji across all actors.",
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Reaction counts for a target",
                "parameters": [
                    {"type": "string", "description": "Target type", "name": "target_type", "in": "query", "required": true},
                    {"type": "string", "description": "Target ID", "name": "target_id", "in": "query", "required": true},
                    {"type": "string", "description": "kind+emoji", "name": "breakdown", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SummaryNode"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reactions/rating": {
            "get": {
                "description": "average is null when count is 0.",
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Rating summary for a target",
                "parameters": [
                    {"type": "string", "description": "Target type", "name": "target_type", "in": "query", "required": true},
                    {"type": "string", "description": "Target ID", "name": "target_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RatingSummaryNode"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reactions/mine": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Current actor's reactions",
                "parameters": [
                    {"type": "string", "description": "Target type", "name": "target_type", "in": "query", "required": true},
                    {"type": "string", "description": "Comma separated target IDs", "name": "target_ids", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.ReactionRecord"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reactions/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Flips LIKE, FAVORITE, BOOKMARK or an EMOJI for the current actor. The server decides on/off.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Toggle a reaction",
                "parameters": [
                    {"description": "Target and kind", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ToggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MutationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/reactions/rate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reactions"],
                "summary": "Set a rating",
                "parameters": [
                    {"description": "Target and value (1..5)", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MutationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/api/v1/widgets/{type}/{id}": {
            "get": {
                "description": "Aggregate counts and rating for one target. Partial data is returned with X-Reaction-Partial when a backing query fails.",
                "produces": ["application/json"],
                "tags": ["widgets"],
                "summary": "Public reaction widget data",
                "parameters": [
                    {"type": "string", "description": "Target type", "name": "type", "in": "path", "required": true},
                    {"type": "string", "description": "Target ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WidgetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "model.PingResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "model.RootResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "string"}}
        },
        "model.SummaryNode": {
            "type": "object",
            "properties": {
                "by_emoji": {"type": "object", "additionalProperties": {"type": "integer"}},
                "by_kind": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "model.RatingSummaryNode": {
            "type": "object",
            "properties": {"average": {"type": "number"}, "count": {"type": "integer"}}
        },
        "model.ReactionRecord": {
            "type": "object",
            "properties": {
                "emoji": {"type": "string"},
                "kind": {"type": "string", "enum": ["LIKE", "FAVORITE", "BOOKMARK", "EMOJI", "RATING"]},
                "target_id": {"type": "string"},
                "target_type": {"type": "string"},
                "value": {"type": "integer"}
            }
        },
        "model.ToggleRequest": {
            "type": "object",
            "required": ["kind", "target_id", "target_type"],
            "properties": {
                "emoji": {"type": "string"},
                "kind": {"type": "string", "enum": ["LIKE", "FAVORITE", "BOOKMARK", "EMOJI"]},
                "target_id": {"type": "string"},
                "target_type": {"type": "string"}
            }
        },
        "model.RateRequest": {
            "type": "object",
            "required": ["target_id", "target_type", "value"],
            "properties": {
                "target_id": {"type": "string"},
                "target_type": {"type": "string"},
                "value": {"type": "integer", "maximum": 5, "minimum": 1}
            }
        },
        "model.MutationResponse": {
            "type": "object",
            "properties": {"active": {"type": "boolean"}, "status": {"type": "string"}}
        },
        "model.WidgetResponse": {
            "type": "object",
            "properties": {
                "bookmarks": {"type": "integer"},
                "emojis": {"type": "object", "additionalProperties": {"type": "integer"}},
                "favorites": {"type": "integer"},
                "likes": {"type": "integer"},
                "rating_avg": {"type": "number"},
                "rating_count": {"type": "integer"},
                "target_id": {"type": "string"},
                "target_type": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo is the registered swag spec for the document above.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Reactions API",
	Description:      "Reaction and rating aggregation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
