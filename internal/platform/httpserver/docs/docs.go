// Package docs exposes the OpenAPI document served at /swagger/doc.json.
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
        "/api/tally/v1/intake/barcode": {
            "post": {
                "tags": ["intake"],
                "summary": "Resolve a double-keyed barcode to its result form",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms": {
            "get": {
                "tags": ["forms"],
                "summary": "List result forms",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["forms"],
                "summary": "Create a replacement result form",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/tally/v1/forms/{form_id}": {
            "get": {
                "tags": ["forms"],
                "summary": "Fetch a result form with its results and reconciliation entries",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/intake": {
            "post": {
                "tags": ["intake"],
                "summary": "Receive a physical form at the intake station",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/data-entry": {
            "post": {
                "tags": ["data-entry"],
                "summary": "Submit a blind data entry pass",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/corrections": {
            "get": {
                "tags": ["corrections"],
                "summary": "Preview mismatches between the two entry passes",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["corrections"],
                "summary": "Arbitrate mismatched entries",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/quality-control": {
            "post": {
                "tags": ["quality-control"],
                "summary": "Record a quality control decision",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/audits/review": {
            "post": {
                "tags": ["audit"],
                "summary": "Record an audit team or supervisor review",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/clearances/review": {
            "post": {
                "tags": ["clearance"],
                "summary": "Record a clearance team or supervisor review",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/forms/{form_id}/recall": {
            "post": {
                "tags": ["recall"],
                "summary": "Request recall of an archived form",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/tally/v1/recalls/{request_id}/resolve": {
            "post": {
                "tags": ["recall"],
                "summary": "Approve or reject a pending recall request",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/tallies/{tally_id}/results": {
            "get": {
                "tags": ["results"],
                "summary": "Aggregate candidate totals per ballot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tally/v1/tallies/{tally_id}/exports/candidate-votes": {
            "get": {
                "tags": ["exports"],
                "produces": ["text/csv"],
                "summary": "Export candidate vote totals as CSV",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quorum Tally API",
	Description:      "Result form intake, dual data entry, and tally reporting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
