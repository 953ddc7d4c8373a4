package http

import (
	"net/http"
	"strings"

	"github.com/aretw0/jseval"
	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI describes the routes served by Routes.
func OpenAPI() *openapi3.T {
	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema())

	invokeRequest := openapi3.NewObjectSchema().
		WithProperty("identifier", openapi3.NewStringSchema()).
		WithProperty("args", openapi3.NewArraySchema().WithItems(openapi3.NewSchema()))
	invokeRequest.Required = []string{"args"}

	invokeResponse := openapi3.NewObjectSchema().
		WithProperty("result", openapi3.NewSchema()).
		WithProperty("error", openapi3.NewStringSchema())

	invoke := openapi3.NewOperation()
	invoke.OperationID = "invoke"
	invoke.Summary = "Call a function in the interpreter, by default the evaluation entry point"
	invoke.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(invokeRequest),
	}
	invoke.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("The JSON value returned", invokeResponse)),
		openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Invalid request body", errorSchema)),
		openapi3.WithStatus(http.StatusNotFound, jsonResponse("Identifier not defined in the interpreter", errorSchema)),
		openapi3.WithStatus(http.StatusUnprocessableEntity, jsonResponse("Script failed", errorSchema)),
		openapi3.WithStatus(http.StatusGatewayTimeout, jsonResponse("Evaluation timed out", errorSchema)),
	)

	events := openapi3.NewOperation()
	events.OperationID = "subscribeEvents"
	events.Summary = "Stream one event per invocation served"
	events.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Server-Sent Events carrying JSON invocation events").
				WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/event-stream"})),
		}),
	)

	health := openapi3.NewOperation()
	health.OperationID = "getHealth"
	health.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("Server is up",
			openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema()))),
	)

	info := openapi3.NewOperation()
	info.OperationID = "getInfo"
	info.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("Server and channel description",
			openapi3.NewObjectSchema().
				WithProperty("app", openapi3.NewStringSchema()).
				WithProperty("version", openapi3.NewStringSchema()).
				WithProperty("entry_point", openapi3.NewStringSchema()).
				WithProperty("direct", openapi3.NewBoolSchema()))),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "jseval API",
			Version: strings.TrimSpace(jseval.Version),
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/invoke", &openapi3.PathItem{Post: invoke}),
			openapi3.WithPath("/events", &openapi3.PathItem{Get: events}),
			openapi3.WithPath("/health", &openapi3.PathItem{Get: health}),
			openapi3.WithPath("/info", &openapi3.PathItem{Get: info}),
		),
	}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema),
	}
}

// GetOpenAPI handles the GET /openapi.json request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OpenAPI())
}

// GetSwagger serves Swagger UI for /openapi.json.
func (s *Server) GetSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>jseval API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
