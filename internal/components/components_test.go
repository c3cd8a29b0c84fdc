package components

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockpress/internal/themes"
)

func render(t *testing.T, l *Loader, themeID, typ string, props Props) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, l.Render(&buf, themeID, typ, props))
	return buf.String()
}

func TestDefaultThemeIsCompiled(t *testing.T) {
	assert.Contains(t, CompiledIDs(), DefaultThemeID)
	th, ok := Compiled(DefaultThemeID)
	require.True(t, ok)
	assert.Equal(t, []string{"button", "columns", "footer", "hero", "image", "navigation", "spacer", "text"}, th.Types())
}

func TestDefaultComponents(t *testing.T) {
	l := NewLoader(nil)
	site := SiteContext{
		Title:      "Acme",
		Navigation: []NavLink{{Label: "About", URL: "/about"}, {Label: "Docs", URL: "https://docs.example.com", NewTab: true}},
	}

	tests := []struct {
		typ   string
		props Props
		want  []string
	}{
		{"hero", Props{"title": "Welcome", "subtitle": "Hi", "cta_label": "Go", "cta_url": "/start"},
			[]string{`<h1 class="bp-hero__title">Welcome</h1>`, `<p class="bp-hero__subtitle">Hi</p>`, `href="/start"`}},
		{"hero", Props{"title": "<b>x</b>"}, []string{"&lt;b&gt;x&lt;/b&gt;"}},
		{"text", Props{"content": "**hi** there"}, []string{"<strong>hi</strong>", "bp-text--left"}},
		{"image", Props{"src": "/a.png", "alt": "A", "width": float64(400), "caption": "Cap"},
			[]string{`src="/a.png"`, `alt="A"`, `width="400"`, "<figcaption>Cap</figcaption>"}},
		{"button", Props{"label": "Buy", "url": "/buy", "new_tab": true}, []string{`href="/buy"`, `target="_blank"`, ">Buy</a>"}},
		{"button", Props{"label": "Bad", "url": "javascript:alert(1)"}, []string{"#ZgotmplZ"}},
		{"columns", Props{"columns": []any{
			map[string]any{"title": "One", "content": "first"},
			map[string]any{"content": "*second*"},
		}}, []string{"<h3>One</h3>", "<p>first</p>", "<em>second</em>"}},
		{"spacer", Props{"height": float64(40)}, []string{"height: 40px"}},
		{"spacer", Props{}, []string{"height: 32px"}},
		{"navigation", Props{SiteKey: site}, []string{">Acme</a>", `href="/about"`, `target="_blank"`}},
		{"navigation", Props{"brand": "Brand"}, []string{">Brand</a>"}},
		{"footer", Props{"text": "Bye", "show_navigation": true, SiteKey: site}, []string{"Bye", `href="/about"`}},
		{"footer", Props{SiteKey: site}, []string{"&copy;", "Acme"}},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			out := render(t, l, DefaultThemeID, tt.typ, tt.props)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRenderValidatesProps(t *testing.T) {
	l := NewLoader(nil)
	var buf bytes.Buffer

	err := l.Render(&buf, DefaultThemeID, "hero", Props{"subtitle": 3.0})
	var pe *PropsError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "hero", pe.Component)
	assert.Equal(t, []string{"subtitle must be string", "title is required"}, pe.Problems)
	assert.Empty(t, buf.String())

	err = l.Render(&buf, DefaultThemeID, "text", Props{"content": "   "})
	require.True(t, errors.As(err, &pe))
}

func TestResolveErrors(t *testing.T) {
	l := NewLoader(nil)
	_, err := l.Resolve(DefaultThemeID, "carousel")
	assert.ErrorIs(t, err, ErrComponentNotFound)
	_, err = l.Resolve("ghost", "hero")
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestSchemaKinds(t *testing.T) {
	s := Schema{Fields: []Field{
		{Name: "n", Kind: KindNumber},
		{Name: "b", Kind: KindBool},
		{Name: "a", Kind: KindArray},
		{Name: "o", Kind: KindObject},
		{Name: "x", Kind: KindAny},
	}}
	assert.NoError(t, s.Validate("c", Props{"n": 1.5, "b": true, "a": []any{}, "o": map[string]any{}, "x": "anything"}))
	err := s.Validate("c", Props{"n": "1", "b": "true", "a": "x", "o": []any{}})
	var pe *PropsError
	require.True(t, errors.As(err, &pe))
	assert.Len(t, pe.Problems, 4)
	assert.NoError(t, s.Validate("c", Props{}), "optional fields may be absent")
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() { Register(NewTheme(DefaultThemeID, "again", nil)) })
}

// writeTheme lays out a disk theme with a custom hero component.
func writeTheme(t *testing.T, dir, id, heroTemplate string) {
	t.Helper()
	p := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(filepath.Join(p, "blocks"), 0o755))
	manifest := `name: ` + id + `
version: "2.0.0"
stylesheet: site.css
components:
  - type: hero
    template: blocks/hero.html
    props:
      - name: title
        type: string
        required: true
  - type: quote
    template: blocks/quote.html
    props:
      - name: text
        type: string
        required: true
`
	require.NoError(t, os.WriteFile(filepath.Join(p, "theme.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(p, "blocks", "hero.html"), []byte(heroTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(p, "blocks", "quote.html"), []byte(`<blockquote>{{.text}}</blockquote>`), 0o644))
}

func TestDiskThemeWithFallback(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "modern", `<h1 class="modern">{{.title}}</h1>`)
	l := NewLoader(themes.NewRegistry(themes.Options{Dir: dir}))

	assert.Equal(t, `<h1 class="modern">Hello</h1>`, render(t, l, "modern", "hero", Props{"title": "Hello"}))
	assert.Equal(t, `<blockquote>Wise</blockquote>`, render(t, l, "modern", "quote", Props{"text": "Wise"}))
	assert.Contains(t, render(t, l, "modern", "text", Props{"content": "plain"}), "<p>plain</p>", "undeclared types use the default theme")

	_, err := l.Resolve(DefaultThemeID, "quote")
	assert.ErrorIs(t, err, ErrComponentNotFound, "default theme is not affected")

	th, err := l.Theme("modern")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", th.Version)
	assert.Equal(t, "site.css", th.Stylesheet)
	assert.Equal(t, []string{"modern"}, l.Cached())
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "modern", `{{.title}}`)
	l := NewLoader(themes.NewRegistry(themes.Options{Dir: dir}))

	infos, err := l.Describe("modern")
	require.NoError(t, err)
	owners := map[string]string{}
	for _, i := range infos {
		owners[i.Type] = i.Theme
	}
	assert.Equal(t, "modern", owners["hero"])
	assert.Equal(t, "modern", owners["quote"])
	assert.Equal(t, DefaultThemeID, owners["text"])
}

func TestSwitchingThemeDropsOldCache(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "modern", `<h1>modern v1 {{.title}}</h1>`)
	writeTheme(t, dir, "classic", `<h1>classic {{.title}}</h1>`)
	l := NewLoader(themes.NewRegistry(themes.Options{Dir: dir}))

	assert.Contains(t, render(t, l, "modern", "hero", Props{"title": "x"}), "modern v1")

	// Edits on disk are not seen while cached.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modern", "blocks", "hero.html"), []byte(`<h1>modern v2 {{.title}}</h1>`), 0o644))
	assert.Contains(t, render(t, l, "modern", "hero", Props{"title": "x"}), "modern v1")

	// Switching a site from modern to classic invalidates modern.
	l.Invalidate("modern")
	assert.Contains(t, render(t, l, "classic", "hero", Props{"title": "x"}), "classic")
	assert.Equal(t, []string{"classic"}, l.Cached())

	assert.Contains(t, render(t, l, "modern", "hero", Props{"title": "x"}), "modern v2")

	l.InvalidateAll()
	assert.Empty(t, l.Cached())
}

func TestDiskThemeErrors(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(themes.NewRegistry(themes.Options{Dir: dir}))

	_, err := l.Theme("missing")
	assert.ErrorIs(t, err, ErrThemeNotFound)

	_, err = l.Theme("../etc")
	assert.ErrorIs(t, err, ErrThemeNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "badkind"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badkind", "theme.yaml"), []byte(
		"components:\n  - type: x\n    template: x.html\n    props:\n      - {name: a, type: date}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badkind", "x.html"), []byte("x"), 0o644))
	_, err = l.Theme("badkind")
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "badtmpl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badtmpl", "theme.yaml"), []byte(
		"components:\n  - type: x\n    template: x.html\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badtmpl", "x.html"), []byte("{{.a"), 0o644))
	_, err = l.Theme("badtmpl")
	assert.Error(t, err)
	assert.Empty(t, l.Cached())
}

func TestConcurrentThemeLoad(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "modern", `{{.title}}`)
	l := NewLoader(themes.NewRegistry(themes.Options{Dir: dir}))

	var wg sync.WaitGroup
	got := make([]*Theme, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			th, err := l.Theme("modern")
			assert.NoError(t, err)
			got[i] = th
		}(i)
	}
	wg.Wait()
	for _, th := range got[1:] {
		assert.Same(t, got[0], th)
	}
}

func TestThemeCacheGenerationGuard(t *testing.T) {
	c := newThemeCache()
	gen := c.generation("a")
	c.invalidate("a")
	assert.False(t, c.put("a", gen, NewTheme("a", "a", nil)), "stale build is not stored")
	assert.True(t, c.put("a", c.generation("a"), NewTheme("a", "a", nil)))

	gen = c.generation("a")
	c.invalidateAll()
	assert.False(t, c.put("a", gen, NewTheme("a", "a", nil)))
}

func TestDefaultThemeAssets(t *testing.T) {
	th, ok := Compiled(DefaultThemeID)
	require.True(t, ok)
	require.NotNil(t, th.Assets)
	data, err := fs.ReadFile(th.Assets, th.Stylesheet)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".bp-hero")
}
