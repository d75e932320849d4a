package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"

	"github.com/jackzampolin/qaflow/internal/api"

	// Registers the OpenAPI document with swag.
	_ "github.com/jackzampolin/qaflow/docs/swagger"
)

// SwaggerEndpoint serves the Swagger UI and its doc.json under /swagger/.
type SwaggerEndpoint struct{}

func (e *SwaggerEndpoint) Route() (string, string, http.HandlerFunc) {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
	return "GET", "/swagger/", ui.ServeHTTP
}

func (e *SwaggerEndpoint) RequiresInit() bool { return false }

func (e *SwaggerEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "swagger",
		Short: "Print the OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc map[string]any
			if err := client.Get(cmd.Context(), "/swagger/doc.json", &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}

// SwaggerDoc returns the registered OpenAPI document.
func SwaggerDoc() (string, error) {
	return swag.ReadDoc()
}
