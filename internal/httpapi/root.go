package httpapi

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
	"github.com/valyala/fasthttp"
)

func (s *Server) apiRoot(ctx *fasthttp.RequestCtx) {
	base := s.baseURLFor(ctx)
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{
		"stories": base + "/api/instagram/stories/",
		"users":   base + "/api/instagram/users/",
		"schema":  base + "/api/schema/",
		"docs":    base + "/api/docs/",
		"admin":   base + "/admin/",
	})
}

func (s *Server) healthz(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString("ok")
}

// schema serves the OpenAPI document, as YAML when ?format=yaml is given.
func (s *Server) schema(ctx *fasthttp.RequestCtx) {
	doc := openAPIDocument(s.baseURLFor(ctx))

	if string(ctx.QueryArgs().Peek("format")) == "yaml" {
		body, err := yaml.Marshal(doc)
		if err != nil {
			s.writeError(ctx, err)
			return
		}
		ctx.SetContentType("application/yaml; charset=utf-8")
		ctx.SetBody(body)
		return
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	writeRaw(ctx, fasthttp.StatusOK, body)
}

const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>Instagram archive API</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({url: "/api/schema/", dom_id: "#swagger-ui"});
  </script>
</body>
</html>
`

func (s *Server) docs(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(docsPage)
}
