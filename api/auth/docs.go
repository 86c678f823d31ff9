// Package auth registers the generated OpenAPI document with swag so the
// /swagger/ endpoint can serve it. Regenerate with:
//
//	swag init -g internal/auth/http/router.go -o api/auth
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Vult Labs",
            "url": "https://github.com/vultlabs/vult"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get a user",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Delete a user",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/users/{id}/{action}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Change a user's lifecycle status",
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/v1/users/{id}/password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["Users"],
                "summary": "Change a user's password",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/v1/users/{id}/roles/{roleID}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Assign a role to a user",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Remove a role from a user",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/roles": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Roles"],
                "summary": "List all roles",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Roles"],
                "summary": "Create a role",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/v1/roles/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Roles"],
                "summary": "Get a role",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Roles"],
                "summary": "Update a role",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Roles"],
                "summary": "Delete a role",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/invitations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "List invitations",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Mint an invitation",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/v1/invitations/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Invitations"],
                "summary": "Cancel an invitation",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/v1/invitations/redeem": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Redeem an invitation",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Vult Identity Service API",
	Description:      "Identity and access-control service issuing HS256-signed bearer tokens and enforcing role/privilege based authorization.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
