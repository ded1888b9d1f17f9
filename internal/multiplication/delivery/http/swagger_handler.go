package http

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/multiplication-service/docs"
)

// OpenAPIPath serves the generated API document
const OpenAPIPath = "/openapi.json"

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router) {
	router.HandleFunc(OpenAPIPath, ServeOpenAPI).Methods("GET")

	// Swagger UI
	router.PathPrefix("/docs/").Handler(httpSwagger.Handler(
		httpSwagger.URL(OpenAPIPath),
	))
}

// ServeOpenAPI writes the API document rendered from docs.SwaggerInfo
func ServeOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
}
