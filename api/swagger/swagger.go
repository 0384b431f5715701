package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA ADP Teacher Assignment Scheduler",
        "description": "Administrative API binding teachers to weekly class slots without double-booking.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Assignments",
            "description": "Teacher to class, subject and weekly slot bindings"
        },
        {
            "name": "Teachers",
            "description": "Teacher scoped assignment routes kept for older clients"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Store unavailable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/assignments": {
            "post": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Create teacher assignment",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "409": {
                        "description": "Slot already taken",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "503": {
                        "description": "Timed out, retry",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateAssignmentRequest"
                        }
                    }
                ]
            },
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "List active assignments",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "classId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "day",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    },
                    {
                        "name": "pageSize",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    }
                ]
            }
        },
        "/admin/assignments/{id}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Get assignment detail",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "description": "Soft-deleted assignments remain readable by id.",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    }
                ]
            },
            "put": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Update assignment",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "409": {
                        "description": "Slot already taken",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateAssignmentRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Soft-delete assignment",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    }
                ]
            }
        },
        "/admin/assignments/teacher/{teacherId}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "List a teacher's active assignments",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    }
                ]
            }
        },
        "/admin/assignments/class/{classId}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "List a class's active assignments",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    }
                ]
            }
        },
        "/admin/assignments/teacher/{teacherId}/schedule/{day}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "A teacher's schedule for one weekday",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "day",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    }
                ]
            }
        },
        "/admin/assignments/statistics/overview": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Assignment overview",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/admin/teachers/{teacherId}/assign-classes": {
            "post": {
                "tags": [
                    "Teachers"
                ],
                "summary": "Assign several classes to a teacher at once",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "409": {
                        "description": "Slot already taken",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "description": "All entries are created or none are.",
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignClassesRequest"
                        }
                    }
                ]
            }
        },
        "/admin/teachers/{teacherId}/subject-assignment": {
            "delete": {
                "tags": [
                    "Teachers"
                ],
                "summary": "Remove assignments by class, section and subject",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RemoveSubjectAssignmentRequest"
                        }
                    }
                ]
            }
        }
    },
    "definitions": {
        "CreateAssignmentRequest": {
            "type": "object",
            "required": [
                "teacherId",
                "classId",
                "section",
                "grade",
                "subject",
                "day",
                "time"
            ],
            "properties": {
                "teacherId": {
                    "type": "string"
                },
                "classId": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                }
            }
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "teacherId": {
                    "type": "string"
                },
                "classId": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                }
            }
        },
        "LegacyClassAssignment": {
            "type": "object",
            "required": [
                "class",
                "section",
                "subject",
                "grade",
                "time",
                "day"
            ],
            "properties": {
                "class": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                }
            }
        },
        "AssignClassesRequest": {
            "type": "object",
            "required": [
                "assignedClasses"
            ],
            "properties": {
                "assignedClasses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/LegacyClassAssignment"
                    }
                }
            }
        },
        "RemoveSubjectAssignmentRequest": {
            "type": "object",
            "required": [
                "classId",
                "section",
                "subject"
            ],
            "properties": {
                "classId": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                }
            }
        },
        "TeacherAssignment": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "classId": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "time": {
                    "type": "string"
                },
                "createdBy": {
                    "type": "string"
                },
                "updatedBy": {
                    "type": "string"
                },
                "timeMinutes": {
                    "type": "integer"
                },
                "isActive": {
                    "type": "boolean"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "object"
                },
                "message": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "details": {
                    "type": "object"
                },
                "retryable": {
                    "type": "boolean"
                },
                "count": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "pageSize": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                }
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
