// Package docs provides generated OpenAPI documentation.
//
// qaflow API
//
//	@title			qaflow API
//	@version		1.0
//	@description	Question-file analysis pipeline: normalize a CSV or workbook, extract structured answers with an LLM and persist a JSON artifact.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/qaflow
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/qaflow/serve.go -o ./swagger --parseDependency --parseInternal --outputTypes go
