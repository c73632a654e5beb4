package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Complaint Desk API",
        "description": "Complaint submission, triage, messaging and reporting backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login, registration and password reset"},
        {"name": "Complaints", "description": "Citizen complaint submission and tracking"},
        {"name": "Messages", "description": "Public and private complaint threads"},
        {"name": "Admin", "description": "Triage, assignment, statistics and reports"},
        {"name": "Officer", "description": "Officer work queue"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness probe",
                "responses": {"200": {"description": "Database reachable"}, "503": {"description": "Database unreachable"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a citizen account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Registered"}, "409": {"description": "Username or email taken"}}
            }
        },
        "/api/users/reset-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the caller's password",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Password updated"}, "401": {"description": "Current password mismatch"}}
            }
        },
        "/api/complaints/submit": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Submit a complaint with optional attachments",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "subject", "type": "string", "required": true},
                    {"in": "formData", "name": "description", "type": "string"},
                    {"in": "formData", "name": "submission_type", "type": "string", "required": true, "enum": ["Public", "Anonymous"]},
                    {"in": "formData", "name": "category", "type": "string"},
                    {"in": "formData", "name": "priority", "type": "string"},
                    {"in": "formData", "name": "user_id", "type": "string"},
                    {"in": "formData", "name": "files", "type": "file"}
                ],
                "responses": {"201": {"description": "Complaint submitted"}, "400": {"description": "Validation failed"}}
            }
        },
        "/api/complaints/{id}": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Fetch a complaint",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Complaint"}}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Complaints"],
                "summary": "Edit complaint fields",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Updated"}}
            }
        },
        "/api/complaints/{id}/withdraw": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Withdraw a complaint",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Withdrawn"}, "409": {"description": "Not withdrawable"}}
            }
        },
        "/api/complaints/user/{userId}": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List complaints filed by a user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "userId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/messages/send": {
            "post": {
                "tags": ["Messages"],
                "summary": "Post a message on a complaint",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SendMessageRequest"}}],
                "responses": {"201": {"description": "Sent"}, "400": {"description": "Invalid complaint, sender or recipient"}}
            }
        },
        "/api/messages/complaint/{id}/public": {
            "get": {
                "tags": ["Messages"],
                "summary": "Public thread",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/admin/complaints": {
            "get": {
                "tags": ["Admin"],
                "summary": "List complaints",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "status", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "assigned_to", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/admin/complaints/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Complaint counts by status",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ComplaintStats"}}}
            }
        },
        "/api/admin/complaints/escalated": {
            "get": {
                "tags": ["Admin"],
                "summary": "In-progress complaints older than the escalation threshold",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/admin/complaints/{id}/assign": {
            "put": {
                "tags": ["Admin"],
                "summary": "Assign an officer",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Assigned"}, "400": {"description": "Invalid complaint or officer ID"}}
            }
        },
        "/api/admin/reports/generate": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export complaints created in a date range",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "start_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "end_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]},
                    {"in": "query", "name": "categories", "type": "string"}
                ],
                "responses": {"200": {"description": "Report file"}, "500": {"description": "Error generating PDF"}}
            }
        },
        "/api/officer/complaints/{officerId}": {
            "get": {
                "tags": ["Officer"],
                "summary": "Complaints assigned to an officer",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "officerId", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/officer/complaints/{id}/status": {
            "put": {
                "tags": ["Officer"],
                "summary": "Change the status of an assigned complaint",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "Updated"}, "409": {"description": "Transition not allowed"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "SendMessageRequest": {
            "type": "object",
            "properties": {
                "complaint_id": {"type": "string"},
                "sender_id": {"type": "string"},
                "recipient_id": {"type": "string"},
                "content": {"type": "string"},
                "message_type": {"type": "string", "enum": ["PUBLIC", "PRIVATE"]}
            }
        },
        "Complaint": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "description": {"type": "string"},
                "submission_type": {"type": "string"},
                "status": {"type": "string", "enum": ["New", "IN PROGRESS", "Resolved", "WITHDRAWN"]},
                "priority": {"type": "string"},
                "category": {"type": "string"},
                "user_id": {"type": "string"},
                "assigned_to_id": {"type": "string"},
                "submitted_by": {"type": "string"},
                "assigned_to": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ComplaintStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "new": {"type": "integer"},
                "assigned": {"type": "integer"},
                "resolved": {"type": "integer"}
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
