// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/kokoro-server/main.go
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
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [
                    {"description": "Email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.principalResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/signout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.meResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/usernames/{username}/availability": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Username availability",
                "parameters": [
                    {"type": "string", "description": "Candidate username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.availabilityResponse"}}
                }
            }
        },
        "/setup": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Claim a username",
                "parameters": [
                    {"description": "Username and display name", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.setupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.profileMutationResponse"}},
                    "303": {"description": "See Other"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/edit-username/{username}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Rename a profile",
                "parameters": [
                    {"type": "string", "description": "Current username", "name": "username", "in": "path", "required": true},
                    {"description": "New username", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.renameRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileMutationResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/dashboard/{username}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.dashboardResponse"}},
                    "303": {"description": "See Other"},
                    "308": {"description": "Permanent Redirect"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/dashboard/{username}/{stream}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Publish an entry",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true},
                    {"type": "string", "description": "thought or people", "name": "stream", "in": "path", "required": true},
                    {"description": "Entry content", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.appendRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.entryResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/profiles/{username}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Public profile",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true},
                    {"type": "string", "description": "IANA timezone for day grouping", "name": "tz", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.publicProfileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/og": {
            "get": {
                "produces": ["image/svg+xml"],
                "tags": ["public"],
                "summary": "OpenGraph image",
                "parameters": [
                    {"type": "string", "description": "Card title", "name": "title", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "redirect": {"type": "string"}}
        },
        "handler.signUpRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 6}}
        },
        "handler.signInRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.setupRequest": {
            "type": "object",
            "required": ["username"],
            "properties": {"username": {"type": "string"}, "display_name": {"type": "string", "maxLength": 80}}
        },
        "handler.renameRequest": {
            "type": "object",
            "required": ["new_username"],
            "properties": {"new_username": {"type": "string"}}
        },
        "handler.appendRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string"}}
        },
        "handler.principalResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}}
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_at": {"type": "string"},
                "principal": {"$ref": "#/definitions/handler.principalResponse"}
            }
        },
        "handler.profileLinks": {
            "type": "object",
            "properties": {"public": {"type": "string"}, "dashboard": {"type": "string"}}
        },
        "handler.profileResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "display_username": {"type": "string"},
                "display_name": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "_links": {"$ref": "#/definitions/handler.profileLinks"}
            }
        },
        "handler.meResponse": {
            "type": "object",
            "properties": {
                "principal": {"$ref": "#/definitions/handler.principalResponse"},
                "profile": {"$ref": "#/definitions/handler.profileResponse"}
            }
        },
        "handler.profileMutationResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/handler.profileResponse"},
                "redirect": {"type": "string"}
            }
        },
        "handler.availabilityResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "status": {"type": "string", "enum": ["invalid", "available", "taken"]}
            }
        },
        "handler.entryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "stream": {"type": "string"},
                "content": {"type": "string"},
                "title": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.streamResponse": {
            "type": "object",
            "properties": {
                "current": {"$ref": "#/definitions/handler.entryResponse"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/handler.entryResponse"}}
            }
        },
        "handler.dashboardResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/handler.profileResponse"},
                "created": {"type": "boolean"},
                "thoughts": {"$ref": "#/definitions/handler.streamResponse"},
                "people": {"$ref": "#/definitions/handler.streamResponse"}
            }
        },
        "handler.dayGroupResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "label": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/handler.entryResponse"}}
            }
        },
        "handler.publicProfileResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/handler.profileResponse"},
                "timezone": {"type": "string"},
                "thoughts": {"$ref": "#/definitions/handler.streamResponse"},
                "people": {"$ref": "#/definitions/handler.streamResponse"},
                "thought_days": {"type": "array", "items": {"$ref": "#/definitions/handler.dayGroupResponse"}},
                "people_days": {"type": "array", "items": {"$ref": "#/definitions/handler.dayGroupResponse"}},
                "generated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "kokoro API",
	Description:      "Public thoughts and contacts profiles: identity, username registry, dashboard and public pages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
