// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"bytes"
	"html/template"
	"net/http"
)

type layoutData struct {
	Title       string
	SiteTitle   string
	Description string
	ThemeID     string
	Stylesheet  string
	Header      template.HTML
	Body        template.HTML
	Footer      template.HTML
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}{{if and .SiteTitle (ne .SiteTitle .Title)}} | {{.SiteTitle}}{{end}}</title>
  {{- with .Description}}
  <meta name="description" content="{{.}}">
  {{- end}}
  {{- with .Stylesheet}}
  <link rel="stylesheet" href="{{.}}">
  {{- end}}
</head>
<body class="theme-{{.ThemeID}}">
{{.Header}}
<main>
{{.Body}}
</main>
{{.Footer}}
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Code}} {{.Status}}</title>
  <style>body{font-family:system-ui,sans-serif;text-align:center;padding:4rem;color:#333}</style>
</head>
<body>
  <h1>{{.Code}}</h1>
  <p>{{.Status}}</p>
  <p><a href="/">Home</a></p>
</body>
</html>
`))

// RenderError renders the generic error page for an HTTP status.
func RenderError(code int) []byte {
	var buf bytes.Buffer
	_ = errorTmpl.Execute(&buf, struct {
		Code   int
		Status string
	}{code, http.StatusText(code)})
	return buf.Bytes()
}
