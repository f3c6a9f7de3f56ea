// Package docs 由swag生成的OpenAPI文档注册
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
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["系统"], "summary": "健康检查",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.HealthResponse"}}}}
        },
        "/ready": {
            "get": {"produces": ["application/json"], "tags": ["系统"], "summary": "就绪检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/controllers.HealthResponse"}}}}
        },
        "/datasets/current": {
            "get": {"produces": ["application/json"], "tags": ["数据集"], "summary": "当前数据集",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/datasets/upload": {
            "post": {"consumes": ["multipart/form-data"], "produces": ["application/json"], "tags": ["数据集"], "summary": "上传数据集",
                "parameters": [
                    {"type": "file", "description": "数据文件", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "CSV字符集，默认utf-8", "name": "charset", "in": "formData"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/datasets/reload": {
            "post": {"produces": ["application/json"], "tags": ["数据集"], "summary": "重新加载默认数据集",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/dashboard/options": {
            "get": {"produces": ["application/json"], "tags": ["仪表盘"], "summary": "筛选可选值",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/dashboard/query": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["仪表盘"], "summary": "仪表盘查询",
                "parameters": [{"description": "查询条件", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/models.QueryRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/dashboard/export": {
            "post": {"consumes": ["application/json"], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "tags": ["仪表盘"], "summary": "导出Excel",
                "parameters": [{"description": "导出条件", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/models.ExportRequest"}}],
                "responses": {
                    "200": {"description": "xlsx文件", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.APIResponse"}}}}
        },
        "/sse/dataset": {
            "get": {"tags": ["事件"], "summary": "订阅数据集事件",
                "responses": {"200": {"description": "SSE事件流", "schema": {"type": "string"}}}}
        }
    },
    "definitions": {
        "controllers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "msg": {"type": "string", "example": "操作成功"},
                "status": {"type": "integer", "example": 0}
            }
        },
        "controllers.HealthResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "sales-dashboard-service"},
                "status": {"type": "string", "example": "ok"},
                "timestamp": {"type": "string", "example": "2024-01-01T00:00:00Z"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "models.FilterRequest": {
            "type": "object",
            "properties": {
                "regions": {"type": "array", "items": {"type": "string"}},
                "categories": {"type": "array", "items": {"type": "string"}},
                "segments": {"type": "array", "items": {"type": "string"}},
                "ship_modes": {"type": "array", "items": {"type": "string"}},
                "start_date": {"type": "string", "example": "2023-01-01"},
                "end_date": {"type": "string", "example": "2023-12-31"},
                "columns": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "models.SortRequest": {
            "type": "object",
            "properties": {
                "column": {"type": "string", "example": "Sales"},
                "descending": {"type": "boolean"}
            }
        },
        "models.QueryRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/models.FilterRequest"},
                "sort": {"type": "array", "items": {"$ref": "#/definitions/models.SortRequest"}},
                "page": {"type": "integer", "example": 1},
                "page_size": {"type": "integer", "example": 50}
            }
        },
        "models.ExportRequest": {
            "type": "object",
            "properties": {
                "filters": {"$ref": "#/definitions/models.FilterRequest"},
                "sort": {"type": "array", "items": {"$ref": "#/definitions/models.SortRequest"}}
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
	Title:            "销售数据仪表盘服务 API",
	Description:      "销售数据过滤、聚合与导出服务，为前端仪表盘提供指标卡片、图表数据与Excel导出",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
