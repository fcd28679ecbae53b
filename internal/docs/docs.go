// Package docs serves the Swagger UI page and the OpenAPI document.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/fakturera/internal/response"
	"github.com/wichananm65/fakturera/internal/router"
)

//go:embed openapi.json
var openapiJSON []byte

const page = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Fakturera API Documentation</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.10.3/swagger-ui.css" />
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.10.3/swagger-ui-bundle.js"></script>
  <script src="https://unpkg.com/swagger-ui-dist@5.10.3/swagger-ui-standalone-preset.js"></script>
  <script>
    window.onload = function() {
      SwaggerUIBundle({
        url: '/swagger.json',
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        plugins: [SwaggerUIBundle.plugins.DownloadUrl],
        layout: "StandaloneLayout"
      });
    };
  </script>
</body>
</html>`

type server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Handler struct {
	doc      map[string]json.RawMessage
	localURL string
}

// NewHandler parses the embedded document. port is used for the local
// development server entry.
func NewHandler(port string) (*Handler, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(openapiJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	return &Handler{doc: doc, localURL: "http://localhost:" + port}, nil
}

func (h *Handler) Routes() router.Table {
	return router.Table{
		{Method: fiber.MethodGet, Path: "/api-docs", Handler: h.page},
		{Method: fiber.MethodGet, Path: "/swagger.json", Handler: h.document},
	}
}

func (h *Handler) page(c *fiber.Ctx) error {
	return response.HTML(c, fiber.StatusOK, page)
}

func (h *Handler) document(c *fiber.Ctx) error {
	servers, err := json.Marshal([]server{
		{URL: BaseURL(c), Description: "Current server"},
		{URL: h.localURL, Description: "Local development"},
	})
	if err != nil {
		return err
	}

	doc := make(map[string]json.RawMessage, len(h.doc))
	for k, v := range h.doc {
		doc[k] = v
	}
	doc["servers"] = servers
	return response.JSON(c, fiber.StatusOK, doc)
}

// BaseURL is the externally visible origin of the request, honouring
// X-Forwarded-Proto and X-Forwarded-Host. Default ports are dropped.
func BaseURL(c *fiber.Ctx) string {
	proto := firstValue(c.Get(fiber.HeaderXForwardedProto))
	if proto == "" {
		proto = c.Protocol()
	}
	host := firstValue(c.Get(fiber.HeaderXForwardedHost))
	if host == "" {
		host = c.Hostname()
	}
	if host == "" {
		host = "localhost:3000"
	}
	switch {
	case proto == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case proto == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return proto + "://" + host
}

func firstValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
