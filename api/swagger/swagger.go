package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Maktab API",
        "description": "Student curriculum progress engine for madrasa classes",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Progress", "description": "Per-student progress form, submission and audit"},
        {"name": "Transitions", "description": "Stage graduations, track switches and milestones"},
        {"name": "Due", "description": "Monthly due-date queue"},
        {"name": "Reports", "description": "Class progress overviews and exports"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/students/{id}/progress/form": {
            "get": {
                "tags": ["Progress"],
                "summary": "Progress form for a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "Student has no group assigned"}
                }
            }
        },
        "/students/{id}/progress": {
            "post": {
                "tags": ["Progress"],
                "summary": "Submit a progress update",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Precondition not met"},
                    "422": {"description": "Candidate incomplete for the applicable track"},
                    "428": {"description": "Confirmation token required"}
                }
            }
        },
        "/students/{id}/progress/audit": {
            "get": {
                "tags": ["Progress"],
                "summary": "Progress change history",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/transitions/quran": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Move a student from Qaidah to Quran",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Not eligible"}
                }
            }
        },
        "/students/{id}/transitions/hifz": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Move a student from Quran to Hifz",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Not eligible"}
                }
            }
        },
        "/students/{id}/transitions/skip-to-hifz": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Skip the remaining Juz Amma surahs and start Hifz",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Not on the Juz Amma sub-track"},
                    "428": {"description": "Confirmation token required"}
                }
            }
        },
        "/students/{id}/transitions/move-back": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Move a Hifz student back onto the Juz Amma track",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Not on the Hifz sub-track"},
                    "428": {"description": "Confirmation token required"}
                }
            }
        },
        "/students/{id}/milestones/propose": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Propose a confirmation-gated action",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProposeConfirmationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Token issued"}
                }
            }
        },
        "/students/{id}/milestones/hafiz": {
            "post": {
                "tags": ["Transitions"],
                "summary": "Mark a Hifz student as hafiz",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "428": {"description": "Confirmation token required"}
                }
            },
            "delete": {
                "tags": ["Transitions"],
                "summary": "Clear the hafiz flag",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/progress/due": {
            "get": {
                "tags": ["Due"],
                "summary": "Students whose progress update is due",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/due/sweep": {
            "post": {
                "tags": ["Due"],
                "summary": "Run the due-date sweep for the current month",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/progress/due/skip": {
            "post": {
                "tags": ["Due"],
                "summary": "Skip a due student or class (records are left untouched)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DueSkipRequest"}}
                ],
                "responses": {
                    "204": {"description": "Accepted, nothing changed"}
                }
            }
        },
        "/reports/classes/{group}/progress": {
            "get": {
                "tags": ["Reports"],
                "summary": "Class progress overview",
                "parameters": [
                    {"name": "group", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/classes/{group}/progress.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Class progress overview as CSV",
                "parameters": [
                    {"name": "group", "in": "path", "type": "string", "required": true}
                ],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV attachment"}
                }
            }
        },
        "/reports/classes/{group}/progress.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Class progress overview as PDF",
                "parameters": [
                    {"name": "group", "in": "path", "type": "string", "required": true}
                ],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF attachment"}
                }
            }
        }
    },
    "definitions": {
        "SubmitProgressRequest": {
            "type": "object",
            "properties": {
                "qaidah_level": {"type": "integer"},
                "qaidah_completed": {"type": "boolean"},
                "duas": {"$ref": "#/definitions/DuasStatus"},
                "quran_juz": {"type": "integer"},
                "quran_completed": {"type": "boolean"},
                "tajweed_level": {"type": "integer"},
                "tajweed_completed": {"type": "boolean"},
                "juz_amma_surah": {"type": "integer"},
                "juz_amma_completed": {"type": "boolean"},
                "hifz_sabak": {"type": "integer"},
                "hifz_s_para": {"type": "integer"},
                "hifz_daur": {"type": "integer"},
                "hifz_graduated": {"type": "boolean"},
                "confirmation_token": {"type": "string"}
            }
        },
        "DuasStatus": {
            "type": "object",
            "properties": {
                "book": {"type": "string", "enum": ["Book 1", "Book 2"]},
                "level": {"type": "integer"},
                "completed": {"type": "boolean"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "properties": {
                "confirmation_token": {"type": "string"}
            }
        },
        "ProposeConfirmationRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["skip_to_hifz", "move_back_to_juz_amma", "mark_hafiz", "complete_milestone"]},
                "flag": {"type": "string", "description": "completion field a complete_milestone token covers"}
            }
        },
        "DueSkipRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "group": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"}
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
