package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Intern Dashboard API",
        "description": "Intern performance dashboard: filtered dataset views, aggregates, notes and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Dataset", "description": "Filter metadata"},
        {"name": "Interns", "description": "Filtered intern records"},
        {"name": "Dashboard", "description": "KPIs and aggregates"},
        {"name": "Notes", "description": "Per intern mentor notes"},
        {"name": "Exports", "description": "Asynchronous exports"},
        {"name": "Authentication", "description": "Bearer tokens for write endpoints"}
    ],
    "parameters": {
        "department": {"name": "department", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
        "status": {"name": "status", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
        "qualityMin": {"name": "qualityMin", "in": "query", "type": "number"},
        "qualityMax": {"name": "qualityMax", "in": "query", "type": "number"},
        "from": {"name": "from", "in": "query", "type": "string", "format": "date"},
        "to": {"name": "to", "in": "query", "type": "string", "format": "date"},
        "search": {"name": "search", "in": "query", "type": "string"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dataset/options": {
            "get": {
                "tags": ["Dataset"],
                "summary": "Filter options and reset criteria",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Dataset not loaded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interns": {
            "get": {
                "tags": ["Interns"],
                "summary": "List interns",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/qualityMin"},
                    {"$ref": "#/parameters/qualityMax"},
                    {"$ref": "#/parameters/from"},
                    {"$ref": "#/parameters/to"},
                    {"$ref": "#/parameters/search"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["id", "name", "quality", "feedback", "days", "assigned"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/interns/export.csv": {
            "get": {
                "tags": ["Interns"],
                "summary": "Download filtered interns as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/qualityMin"},
                    {"$ref": "#/parameters/qualityMax"},
                    {"$ref": "#/parameters/from"},
                    {"$ref": "#/parameters/to"},
                    {"$ref": "#/parameters/search"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/interns/{id}": {
            "get": {
                "tags": ["Interns"],
                "summary": "Intern detail with per name means and note",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "KPIs, aggregates, top performers and feedback distribution",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/qualityMin"},
                    {"$ref": "#/parameters/qualityMax"},
                    {"$ref": "#/parameters/from"},
                    {"$ref": "#/parameters/to"},
                    {"$ref": "#/parameters/search"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/monthly": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Monthly aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/departments": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Department aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List notes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notes/consistency": {
            "get": {
                "tags": ["Notes"],
                "summary": "Compare note files",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notes/export": {
            "get": {
                "tags": ["Notes"],
                "summary": "Download notes",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "json"]}
                ],
                "responses": {
                    "200": {"description": "Notes file"}
                }
            }
        },
        "/notes/{internId}": {
            "get": {
                "tags": ["Notes"],
                "summary": "Get one note",
                "parameters": [
                    {"name": "internId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Notes"],
                "summary": "Save a note",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "internId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveNoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown intern", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Persist failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Export file"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SaveNoteRequest": {
            "type": "object",
            "required": ["note"],
            "properties": {
                "note": {"type": "string"}
            }
        },
        "FilterQuery": {
            "type": "object",
            "properties": {
                "departments": {"type": "array", "items": {"type": "string"}},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "qualityMin": {"type": "number"},
                "qualityMax": {"type": "number"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "search": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["kind", "format"],
            "properties": {
                "kind": {"type": "string", "enum": ["interns", "notes"]},
                "format": {"type": "string", "enum": ["csv", "json", "pdf"]},
                "filter": {"$ref": "#/definitions/FilterQuery"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
