// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package components

import (
	"embed"
	"io/fs"
)

//go:embed assets/default
var defaultAssets embed.FS

// DefaultThemeID names the compiled theme every other theme falls back to.
const DefaultThemeID = "default"

const heroSrc = `<section class="bp-hero bp-hero--{{default "center" .align}}">
  <div class="bp-hero__inner">
    <h1 class="bp-hero__title">{{.title}}</h1>
    {{- with .subtitle}}
    <p class="bp-hero__subtitle">{{.}}</p>
    {{- end}}
    {{- if and .cta_label .cta_url}}
    <a class="bp-button bp-button--primary" href="{{.cta_url}}">{{.cta_label}}</a>
    {{- end}}
  </div>
  {{- with .image_url}}
  <img class="bp-hero__image" src="{{.}}" alt="">
  {{- end}}
</section>`

const textSrc = `<div class="bp-text bp-text--{{default "left" .align}}">{{markdown .content}}</div>`

const imageSrc = `<figure class="bp-image">
  <img src="{{.src}}" alt="{{.alt}}"{{with .width}} width="{{.}}"{{end}} loading="lazy">
  {{- with .caption}}
  <figcaption>{{.}}</figcaption>
  {{- end}}
</figure>`

const buttonSrc = `<a class="bp-button bp-button--{{default "primary" .variant}}" href="{{.url}}"{{if .new_tab}} target="_blank" rel="noopener"{{end}}>{{.label}}</a>`

const columnsSrc = `<div class="bp-columns">
  {{- range .columns}}
  <div class="bp-columns__col">
    {{- with .title}}
    <h3>{{.}}</h3>
    {{- end}}
    {{markdown .content}}
  </div>
  {{- end}}
</div>`

const spacerSrc = `<div class="bp-spacer" style="height: {{default 32 .height}}px"></div>`

const navigationSrc = `{{- $site := ._site -}}
<header class="bp-nav">
  <a class="bp-nav__brand" href="/">{{if .brand}}{{.brand}}{{else if $site}}{{$site.Title}}{{end}}</a>
  <nav>
    <ul class="bp-nav__links">
      {{- if $site}}{{range $site.Navigation}}
      <li><a href="{{.URL}}"{{if .NewTab}} target="_blank" rel="noopener"{{end}}>{{.Label}}</a></li>
      {{- end}}{{end}}
    </ul>
  </nav>
</header>`

const footerSrc = `{{- $site := ._site -}}
<footer class="bp-footer">
  {{- if and .show_navigation $site}}
  <nav>
    <ul class="bp-footer__links">
      {{- range $site.Navigation}}
      <li><a href="{{.URL}}">{{.Label}}</a></li>
      {{- end}}
    </ul>
  </nav>
  {{- end}}
  <p class="bp-footer__text">{{with .text}}{{.}}{{else}}&copy; {{year}}{{if $site}} {{$site.Title}}{{end}}{{end}}</p>
</footer>`

func init() {
	t := NewTheme(DefaultThemeID, "Default", nil)
	t.Version = "1.0.0"
	t.Stylesheet = "default.css"
	t.Assets, _ = fs.Sub(defaultAssets, "assets/default")

	t.Add(mustTemplateComponent("hero", heroSrc,
		Field{Name: "title", Kind: KindString, Required: true},
		Field{Name: "subtitle", Kind: KindString},
		Field{Name: "image_url", Kind: KindString},
		Field{Name: "cta_label", Kind: KindString},
		Field{Name: "cta_url", Kind: KindString},
		Field{Name: "align", Kind: KindString},
	))
	t.Add(mustTemplateComponent("text", textSrc,
		Field{Name: "content", Kind: KindString, Required: true, Description: "Markdown"},
		Field{Name: "align", Kind: KindString},
	))
	t.Add(mustTemplateComponent("image", imageSrc,
		Field{Name: "src", Kind: KindString, Required: true},
		Field{Name: "alt", Kind: KindString},
		Field{Name: "caption", Kind: KindString},
		Field{Name: "width", Kind: KindNumber},
	))
	t.Add(mustTemplateComponent("button", buttonSrc,
		Field{Name: "label", Kind: KindString, Required: true},
		Field{Name: "url", Kind: KindString, Required: true},
		Field{Name: "variant", Kind: KindString},
		Field{Name: "new_tab", Kind: KindBool},
	))
	t.Add(mustTemplateComponent("columns", columnsSrc,
		Field{Name: "columns", Kind: KindArray, Required: true, Description: "list of {title, content}"},
	))
	t.Add(mustTemplateComponent("spacer", spacerSrc,
		Field{Name: "height", Kind: KindNumber},
	))
	t.Add(mustTemplateComponent("navigation", navigationSrc,
		Field{Name: "brand", Kind: KindString},
	))
	t.Add(mustTemplateComponent("footer", footerSrc,
		Field{Name: "text", Kind: KindString},
		Field{Name: "show_navigation", Kind: KindBool},
	))

	Register(t)
}
