// Package docs registers the OpenAPI document served at /swagger.
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
        "/table-orders/table/{tableId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "List every order placed at a table",
                "parameters": [{"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Create a dine-in order with its items and seat it",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateTableOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/table-orders/table/{tableId}/current": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Get the order currently seated at a table",
                "parameters": [{"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/table-orders/table/{tableId}/cart": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Get the active cart of a table",
                "parameters": [{"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Add a product to the table's cart, opening one if needed",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AddToCartRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Remove quantity of a product from the table's cart",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RemoveFromCartRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/table-orders/table/{tableId}/cart/open": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Return the table's cart, creating an empty one if none is active",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "tableId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/models.CartSeed"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/table-orders/{orderId}/complete-and-clear": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["table-orders"],
                "summary": "Complete an order with payment and release its table for cleaning",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "orderId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/models.PaymentDetails"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/tables/{id}/clear": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Detach the current order and move the table to CLEANING",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RestaurantTable"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/tables/{id}/mark-available": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Mark a cleaned table AVAILABLE",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.RestaurantTable"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Move an order to a new status",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/receipt": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get a time limited link to the archived receipt of a completed order",
                "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string", "example": "VALIDATION_ERROR"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "models.AddToCartRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "order_id": {"type": "string", "format": "uuid"},
                "product_id": {"type": "string", "format": "uuid"},
                "quantity": {"type": "integer", "example": 1},
                "unit_price": {"type": "string", "example": "8.25"},
                "number_of_guests": {"type": "integer"},
                "customer_id": {"type": "string", "format": "uuid"},
                "special_instructions": {"type": "string"}
            }
        },
        "models.RemoveFromCartRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "order_id": {"type": "string", "format": "uuid"},
                "product_id": {"type": "string", "format": "uuid"},
                "quantity": {"type": "integer", "example": 1},
                "remove_entire_item": {"type": "boolean"}
            }
        },
        "models.CartSeed": {
            "type": "object",
            "properties": {
                "order_id": {"type": "string", "format": "uuid"},
                "number_of_guests": {"type": "integer"},
                "customer_id": {"type": "string", "format": "uuid"},
                "special_instructions": {"type": "string"}
            }
        },
        "models.CreateTableOrderRequest": {
            "type": "object",
            "properties": {
                "number_of_guests": {"type": "integer"},
                "customer_id": {"type": "string", "format": "uuid"},
                "special_instructions": {"type": "string"},
                "items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "product_id": {"type": "string", "format": "uuid"},
                            "quantity": {"type": "integer"},
                            "unit_price": {"type": "string"}
                        }
                    }
                }
            }
        },
        "models.PaymentDetails": {
            "type": "object",
            "properties": {
                "payment_method": {"type": "string", "example": "cash"},
                "payment_reference": {"type": "string"}
            }
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "order_number": {"type": "string", "example": "ORD-20260101-1A2B"},
                "status": {"type": "string", "enum": ["PENDING", "IN_PROGRESS", "READY", "COMPLETED", "CANCELLED"]},
                "order_type": {"type": "string", "enum": ["DINE_IN", "TAKEOUT", "DELIVERY"]},
                "table_id": {"type": "string", "format": "uuid"},
                "total_amount": {"type": "string", "example": "16.50"},
                "items": {"type": "array", "items": {"type": "object"}}
            }
        },
        "models.RestaurantTable": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "table_number": {"type": "string", "example": "T1"},
                "capacity": {"type": "integer"},
                "status": {"type": "string", "enum": ["AVAILABLE", "OCCUPIED", "RESERVED", "CLEANING", "MAINTENANCE"]},
                "current_order_id": {"type": "string", "format": "uuid"}
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "restopos API",
	Description:      "Table and order lifecycle for restaurant point of sale.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
