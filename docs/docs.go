// Package docs 注册 swagger 文档，由 gin-swagger 在非生产环境提供
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
        "/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Login name and password",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/admin.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/user": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "New user",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/accounts.RegisterRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/common.Response"}},
                    "409": {"description": "Login name already exists", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/user/list": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/user/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Get user",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Delete user",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "403": {"description": "Only the user themself", "schema": {"$ref": "#/definitions/common.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/photosOfUser/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Photos of user",
                "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/photos/new": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Upload photo",
                "parameters": [{"type": "file", "description": "Image file", "name": "uploadedphoto", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Missing or invalid image", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/photos/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Delete photo",
                "parameters": [{"type": "string", "description": "Photo ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/commentsOfPhoto/{photo_id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Add comment",
                "parameters": [
                    {"type": "string", "description": "Photo ID", "name": "photo_id", "in": "path", "required": true},
                    {"description": "Comment text", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/comments.commentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Empty comment", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Photo not found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/commentsOfPhoto/{photo_id}/{comment_id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Delete comment",
                "parameters": [
                    {"type": "string", "description": "Photo ID", "name": "photo_id", "in": "path", "required": true},
                    {"type": "string", "description": "Comment ID", "name": "comment_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/images/{file_name}": {
            "get": {
                "produces": ["image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"],
                "tags": ["images"],
                "summary": "Get image bytes",
                "parameters": [{"type": "string", "description": "Stored file name", "name": "file_name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/test": {
            "get": {
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Schema info",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            }
        },
        "/test/{p}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Diagnostics",
                "parameters": [{"type": "string", "description": "info or counts", "name": "p", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/test/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Schema info",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            }
        },
        "/test/counts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["test"],
                "summary": "Collection counts",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}}
            }
        }
    },
    "definitions": {
        "accounts.RegisterRequest": {
            "type": "object",
            "properties": {
                "login_name": {"type": "string"},
                "password": {"type": "string"},
                "password_confirm": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "location": {"type": "string"},
                "description": {"type": "string"},
                "occupation": {"type": "string"}
            }
        },
        "admin.loginRequest": {
            "type": "object",
            "properties": {
                "login_name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "comments.commentRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"}
            }
        },
        "common.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "kind": {"type": "string"},
                "msg": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Photo Share API",
	Description:      "Photo sharing with per-user photos, comments and session login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
