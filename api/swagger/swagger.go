package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Evaluation API",
        "description": "Action-dispatch backend for the course evaluation form",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Exec", "description": "Action protocol endpoint"},
        {"name": "Auth", "description": "Operator authentication"},
        {"name": "Exports", "description": "Downloadable reports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exec": {
            "get": {
                "tags": ["Exec"],
                "summary": "Dispatch a read action",
                "parameters": [
                    {"name": "action", "in": "query", "type": "string", "description": "health, getCourses, getEvaluations, getInstructors, getStats"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Unknown action or invalid filter", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Exec"],
                "summary": "Dispatch a write action",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExecRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation or protocol error", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Admin action without token", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Duplicate slot or course code", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Operator login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Bad credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/exports/evaluations.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download evaluations as CSV",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/exports/stats.pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the statistics report as PDF",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "ExecRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "data": {"type": "object"},
                "courseId": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            },
            "required": ["action"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "version": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/ErrorBody"}
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
