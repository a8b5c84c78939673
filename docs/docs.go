// Package docs 由 swag init 生成，重新生成会覆盖本文件
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API支持",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/cron/interview-reminders": {
            "post": {
                "description": "投递所有到期未发送的面试提醒，需要 X-Cron-Secret 或 Bearer 共享密钥",
                "produces": ["application/json"],
                "tags": ["定时任务"],
                "summary": "执行面试提醒扫描",
                "parameters": [
                    {"type": "string", "description": "共享密钥", "name": "X-Cron-Secret", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SweepSummary"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/candidate/tests/{id}/submit": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["测试"],
                "summary": "提交测试答案",
                "parameters": [
                    {"type": "string", "description": "测试ID", "name": "id", "in": "path", "required": true},
                    {"description": "答案", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.SubmitTestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SubmitTestResponse"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/employer/tests/{id}/assign": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["测试"],
                "summary": "给候选人分配测试",
                "parameters": [
                    {"type": "string", "description": "模板ID", "name": "id", "in": "path", "required": true},
                    {"description": "候选人", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.AssignTestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "definitions": {
        "controller.AssignTestRequest": {
            "type": "object",
            "required": ["candidateId"],
            "properties": {"candidateId": {"type": "integer"}}
        },
        "controller.SubmitTestRequest": {
            "type": "object",
            "properties": {"answers": {"type": "object", "additionalProperties": true}}
        },
        "service.SubmitTestResponse": {
            "type": "object",
            "properties": {
                "resultId": {"type": "string"},
                "score": {"type": "integer"},
                "passed": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "service.SweepSummary": {
            "type": "object",
            "properties": {
                "processed": {"type": "integer"},
                "errors": {"type": "integer"},
                "skipped": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TalentMatch 后端 API",
	Description:      "TalentMatch 招聘撮合平台的后端服务器，包含能力测试评分与面试提醒。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
