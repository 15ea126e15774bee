package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Timetable API",
        "description": "Academic timetable lifecycle and room reservation engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Timetable authoring and lifecycle"},
        {"name": "Constraints", "description": "Scheduling rule management"},
        {"name": "Catalog", "description": "Read-only resource catalog"}
    ],
    "paths": {
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetables",
                "parameters": [
                    {"name": "formationId", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Open a new draft timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable with its entries",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a draft or invalidated timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/entries": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Replace the full entry set of an editable timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceEntriesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not editable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/conflicts": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Run conflict detection without changing state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/validate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Validate an editable timetable and materialize its reservations",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Validated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Blocking conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/invalidate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Invalidate a validated timetable and release its reservations",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Invalidated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/publish": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Publish a validated timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Run the optimization port against an editable timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not editable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "501": {"description": "No optimizer configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/constraints": {
            "get": {
                "tags": ["Constraints"],
                "summary": "List active scheduling rules",
                "parameters": [
                    {"name": "targetType", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Constraints"],
                "summary": "Register a scheduling rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateConstraintRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/constraints/{id}": {
            "delete": {
                "tags": ["Constraints"],
                "summary": "Deactivate a scheduling rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/catalog/rooms": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List rooms",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/modules": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List teaching modules",
                "parameters": [
                    {"name": "formationId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/teachers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List teachers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateTimetableRequest": {
            "type": "object",
            "properties": {
                "formationId": {"type": "string"},
                "academicYear": {"type": "integer"},
                "semester": {"type": "string", "enum": ["S1", "S2"]},
                "semesterStart": {"type": "string", "format": "date-time"}
            },
            "required": ["formationId", "academicYear", "semester", "semesterStart"]
        },
        "ScheduleEntryRequest": {
            "type": "object",
            "properties": {
                "moduleId": {"type": "string"},
                "atomKind": {"type": "string", "enum": ["LECTURE", "TUTORIAL", "LAB", "INTERNSHIP", "SEMINAR"]},
                "teacherId": {"type": "string"},
                "audienceKind": {"type": "string", "enum": ["SECTION", "GROUP"]},
                "audienceId": {"type": "string"},
                "audienceSize": {"type": "integer"},
                "dayOfWeek": {"type": "integer", "minimum": 1, "maximum": 7},
                "startMinute": {"type": "integer"},
                "endMinute": {"type": "integer"},
                "roomId": {"type": "string"},
                "recurrence": {"type": "string", "enum": ["WEEKLY", "BIWEEKLY"]},
                "startWeek": {"type": "integer"},
                "endWeek": {"type": "integer"},
                "requiresReservation": {"type": "boolean"}
            },
            "required": ["moduleId", "atomKind", "teacherId", "audienceKind", "audienceId", "dayOfWeek", "endMinute", "recurrence", "startWeek", "endWeek"]
        },
        "ReplaceEntriesRequest": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ScheduleEntryRequest"}
                }
            },
            "required": ["entries"]
        },
        "CreateConstraintRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "target": {"type": "string", "enum": ["TEACHER", "ROOM", "SUBJECT", "TIME", "GROUP"]},
                "class": {"type": "string", "enum": ["MANDATORY", "PREFERRED", "OPTIONAL"]},
                "weight": {"type": "integer", "minimum": 1, "maximum": 10},
                "params": {"type": "object"}
            },
            "required": ["description", "target", "class", "weight"]
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "loads": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ModuleLoadRequest"}
                },
                "maxIterations": {"type": "integer"},
                "timeoutSecs": {"type": "integer"}
            },
            "required": ["loads"]
        },
        "ModuleLoadRequest": {
            "type": "object",
            "properties": {
                "moduleId": {"type": "string"},
                "atomKind": {"type": "string"},
                "teacherId": {"type": "string"},
                "audienceKind": {"type": "string"},
                "audienceId": {"type": "string"},
                "audienceSize": {"type": "integer"},
                "weeklyHours": {"type": "integer"},
                "needsRoom": {"type": "boolean"}
            },
            "required": ["moduleId", "atomKind", "teacherId", "audienceKind", "audienceId", "weeklyHours"]
        },
        "Conflict": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "severity": {"type": "string", "enum": ["BLOCKING", "ADVISORY"]},
                "entry_ids": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"}
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
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/Conflict"}},
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
