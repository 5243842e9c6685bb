// Package docs registra la especificación Swagger del API.
// Regenerar con: swag init -g cmd/api/main.go -o docs
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
        "/pets": {
            "get": {"tags": ["pets"], "summary": "Listar mascotas del usuario"},
            "post": {"tags": ["pets"], "summary": "Registrar mascota"}
        },
        "/pets/{petID}": {
            "get": {"tags": ["pets"], "summary": "Ver mascota"},
            "delete": {"tags": ["pets"], "summary": "Borrar mascota"}
        },
        "/pets/{petID}/owners/{userID}/approve": {
            "post": {"tags": ["pets"], "summary": "Aprobar co-dueño pendiente"}
        },
        "/pets/{petID}/access/code": {
            "post": {"tags": ["access"], "summary": "Emitir (o reusar) access code"}
        },
        "/pets/{petID}/access/share-token": {
            "post": {"tags": ["access"], "summary": "Emitir share token (QR)"}
        },
        "/pets/{petID}/access/vet-token": {
            "post": {"tags": ["access"], "summary": "Emitir vet access token (QR)"}
        },
        "/access/code/verify": {
            "post": {"tags": ["access"], "summary": "Verificar access code"}
        },
        "/access/share/{token}": {
            "post": {"tags": ["access"], "summary": "Canjear share token"}
        },
        "/access/vet/{token}": {
            "post": {"tags": ["access"], "summary": "Canjear vet access token"}
        },
        "/pets/{petID}/records/vaccinations": {
            "get": {"tags": ["records"], "summary": "Listar vacunaciones"},
            "post": {"tags": ["records"], "summary": "Registrar vacunación"}
        },
        "/pets/{petID}/records/medications": {
            "get": {"tags": ["records"], "summary": "Listar medicaciones"},
            "post": {"tags": ["records"], "summary": "Registrar medicación"}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Medical Records API",
	Description:      "Acceso compartido a historiales médicos de mascotas: códigos, tokens QR y registros.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
