// Package docs provides generated OpenAPI documentation.
//
// pdfstruct API
//
//	@title			pdfstruct API
//	@version		1.0
//	@description	PDF structure extraction API: headings, reading order, tables, and content trees.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/pdfstruct/pdfstruct
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/pdfstruct/serve.go -o ./swagger --parseDependency --parseInternal
