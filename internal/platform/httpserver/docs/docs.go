// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/healthz": {
			"get": {
				"summary": "Liveness probe",
				"tags": [
					"platform"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/process/states": {
			"get": {
				"summary": "List process states",
				"tags": [
					"process"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/process/{process_id}/gates": {
			"get": {
				"summary": "List gate templates of a process",
				"tags": [
					"process"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "process_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow": {
			"post": {
				"summary": "Initialize a campaign workflow",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow/state": {
			"get": {
				"summary": "Current workflow state",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow/states": {
			"get": {
				"summary": "Process states with completion status",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow/gates": {
			"get": {
				"summary": "Gates of a campaign",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow/history": {
			"get": {
				"summary": "Transition history",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/campaigns/{campaign_id}/workflow/advance": {
			"post": {
				"summary": "Advance to the next state",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/AdvanceRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limited",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"503": {
						"description": "Store unavailable",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/gates/{gate_id}/approve": {
			"post": {
				"summary": "Approve a gate",
				"tags": [
					"workflow"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "gate_id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/ApproveGateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Validation error",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limited",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/admin/campaigns/{campaign_id}/workflow/reset": {
			"post": {
				"summary": "Reset a workflow to the first state",
				"tags": [
					"admin"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "campaign_id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/ResetRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limited",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/artifacts": {
			"post": {
				"summary": "Register an artifact for review",
				"tags": [
					"review"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/RegisterArtifactRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Validation error",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limited",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/artifacts/{artifact_id}": {
			"get": {
				"summary": "Get artifact review",
				"tags": [
					"review"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "artifact_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/artifacts/{artifact_id}/review": {
			"patch": {
				"summary": "Update artifact review status",
				"tags": [
					"review"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "artifact_id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "body",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/UpdateReviewRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Validation error",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					},
					"429": {
						"description": "Rate limited",
						"schema": {
							"$ref": "#/definitions/ErrorResponse"
						}
					}
				}
			}
		},
		"/v1/documents/{document_id}/reviews": {
			"get": {
				"summary": "Artifacts and review summary of a document",
				"tags": [
					"review"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"name": "document_id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/v1/documents/reviews/summary": {
			"get": {
				"summary": "Review summaries of all documents",
				"tags": [
					"review"
				],
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		}
	},
	"definitions": {
		"ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"AdvanceRequest": {
			"type": "object",
			"properties": {
				"requested_by": {
					"type": "string"
				},
				"expected_state_id": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"ApproveGateRequest": {
			"type": "object",
			"properties": {
				"approved_by": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				}
			}
		},
		"ResetRequest": {
			"type": "object",
			"properties": {
				"reason": {
					"type": "string"
				}
			}
		},
		"RegisterArtifactRequest": {
			"type": "object",
			"properties": {
				"artifact_id": {
					"type": "string"
				},
				"document_id": {
					"type": "string"
				},
				"artifact_type": {
					"type": "string"
				},
				"title": {
					"type": "string"
				}
			}
		},
		"UpdateReviewRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"pending_review",
						"reviewed",
						"needs_revision"
					]
				},
				"reviewed_by": {
					"type": "string"
				},
				"notes": {
					"type": "string"
				},
				"expected_status": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/",
	Schemes:		  []string{},
	Title:			"legisflow API",
	Description:	  "Legislative advocacy workflow and artifact review API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
