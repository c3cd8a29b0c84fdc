package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blockpress/internal/components"
	"blockpress/internal/models"
	"blockpress/internal/session"
	"blockpress/internal/snapshot"
	"blockpress/internal/store"
	"blockpress/internal/tenant"
	"blockpress/internal/themes"
)

type fakeSites struct {
	mu    sync.Mutex
	sites map[uuid.UUID]*models.Site
}

func newFakeSites(sites ...*models.Site) *fakeSites {
	f := &fakeSites{sites: map[uuid.UUID]*models.Site{}}
	for _, s := range sites {
		f.sites[s.ID] = s
	}
	return f
}

func (f *fakeSites) List() ([]models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Site{}
	for _, s := range f.sites {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSites) FindByID(id uuid.UUID) (*models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sites[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSites) domainTaken(d *string, except uuid.UUID) bool {
	if d == nil {
		return false
	}
	for id, s := range f.sites {
		if id != except && s.Domain != nil && *s.Domain == *d {
			return true
		}
	}
	return false
}

func (f *fakeSites) Create(site *models.Site) (*models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.domainTaken(site.Domain, uuid.Nil) {
		return nil, store.ErrDuplicateDomain
	}
	cp := *site
	cp.ID = uuid.New()
	f.sites[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeSites) Update(site *models.Site) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sites[site.ID]; !ok {
		return store.ErrNotFound
	}
	if f.domainTaken(site.Domain, site.ID) {
		return store.ErrDuplicateDomain
	}
	cp := *site
	f.sites[site.ID] = &cp
	return nil
}

func (f *fakeSites) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sites[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.sites, id)
	return nil
}

type fakePages struct {
	mu    sync.Mutex
	pages []models.Page
}

func (f *fakePages) ListBySite(siteID uuid.UUID) ([]models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Page{}
	for _, p := range f.pages {
		if p.SiteID == siteID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePages) find(match func(p models.Page) bool) *models.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pages {
		if match(p) {
			cp := p
			return &cp
		}
	}
	return nil
}

func (f *fakePages) FindByID(siteID, id uuid.UUID) (*models.Page, error) {
	return f.find(func(p models.Page) bool { return p.SiteID == siteID && p.ID == id }), nil
}

func (f *fakePages) FindPublishedBySlug(siteID uuid.UUID, slug string) (*models.Page, error) {
	return f.find(func(p models.Page) bool {
		return p.SiteID == siteID && p.Slug == slug && p.IsPublished()
	}), nil
}

func (f *fakePages) slugTaken(p *models.Page) bool {
	for _, q := range f.pages {
		if q.SiteID == p.SiteID && q.Slug == p.Slug && q.ID != p.ID {
			return true
		}
	}
	return false
}

func (f *fakePages) Create(p *models.Page) (*models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken(p) {
		return nil, store.ErrDuplicateSlug
	}
	cp := *p
	cp.ID = uuid.New()
	f.pages = append(f.pages, cp)
	return &cp, nil
}

func (f *fakePages) Update(p *models.Page) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken(p) {
		return store.ErrDuplicateSlug
	}
	for i, q := range f.pages {
		if q.SiteID == p.SiteID && q.ID == p.ID {
			cp := *p
			cp.Blocks = nil
			f.pages[i] = cp
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakePages) Delete(siteID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.pages {
		if q.SiteID == siteID && q.ID == id {
			f.pages = append(f.pages[:i], f.pages[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeBlocks struct {
	mu     sync.Mutex
	blocks map[uuid.UUID][]models.Block
}

func newFakeBlocks() *fakeBlocks {
	return &fakeBlocks{blocks: map[uuid.UUID][]models.Block{}}
}

func (f *fakeBlocks) List(parentID uuid.UUID) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Block{}, f.blocks[parentID]...), nil
}

func (f *fakeBlocks) FindByID(parentID, id uuid.UUID) (*models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blocks[parentID] {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBlocks) Create(b *models.Block) (*models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	cp.ID = uuid.New()
	cp.OrderIndex = len(f.blocks[b.ParentID])
	f.blocks[b.ParentID] = append(f.blocks[b.ParentID], cp)
	return &cp, nil
}

func (f *fakeBlocks) Update(b *models.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.blocks[b.ParentID]
	for i := range list {
		if list[i].ID == b.ID {
			list[i] = *b
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeBlocks) Delete(parentID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.blocks[parentID]
	for i := range list {
		if list[i].ID == id {
			f.blocks[parentID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeBlocks) Replace(parentID uuid.UUID, blocks []models.Block) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Block, 0, len(blocks))
	for i, b := range blocks {
		b.ID = uuid.New()
		b.ParentID = parentID
		b.OrderIndex = i
		out = append(out, b)
	}
	f.blocks[parentID] = out
	return append([]models.Block{}, out...), nil
}

func (f *fakeBlocks) Reorder(parentID uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.blocks[parentID]
	if len(ids) != len(list) {
		return store.ErrOrderMismatch
	}
	byID := map[uuid.UUID]models.Block{}
	for _, b := range list {
		byID[b.ID] = b
	}
	out := make([]models.Block, 0, len(ids))
	for i, id := range ids {
		b, ok := byID[id]
		if !ok {
			return store.ErrOrderMismatch
		}
		delete(byID, id)
		b.OrderIndex = i
		out = append(out, b)
	}
	f.blocks[parentID] = out
	return nil
}

type fakeTemplates struct {
	mu        sync.Mutex
	templates []models.Template
	touched   int
}

func (f *fakeTemplates) ListBySite(siteID uuid.UUID) ([]models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Template{}
	for _, t := range f.templates {
		if t.SiteID == siteID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) FindByID(siteID, id uuid.UUID) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.templates {
		if t.SiteID == siteID && t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTemplates) Create(t *models.Template) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	cp.ID = uuid.New()
	cp.Version = 1
	f.templates = append(f.templates, cp)
	return &cp, nil
}

func (f *fakeTemplates) Update(t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.templates {
		if f.templates[i].SiteID == t.SiteID && f.templates[i].ID == t.ID {
			f.templates[i].Name = t.Name
			f.templates[i].ThemeID = t.ThemeID
			f.templates[i].Version++
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeTemplates) Touch(siteID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched++
	return nil
}

func (f *fakeTemplates) Activate(siteID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var typ models.TemplateType
	found := false
	for _, t := range f.templates {
		if t.SiteID == siteID && t.ID == id {
			typ, found = t.Type, true
		}
	}
	if !found {
		return store.ErrNotFound
	}
	for i := range f.templates {
		if f.templates[i].SiteID == siteID && f.templates[i].Type == typ {
			f.templates[i].IsActive = f.templates[i].ID == id
		}
	}
	return nil
}

func (f *fakeTemplates) Delete(siteID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.templates {
		if t.SiteID == siteID && t.ID == id {
			if t.IsActive {
				return store.ErrActiveTemplate
			}
			f.templates = append(f.templates[:i], f.templates[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeNavigation struct {
	mu    sync.Mutex
	items []models.NavigationItem
}

func (f *fakeNavigation) ListBySite(siteID uuid.UUID) ([]models.NavigationItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.NavigationItem{}
	for _, n := range f.items {
		if n.SiteID == siteID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeNavigation) ListVisible(siteID uuid.UUID) ([]models.NavigationItem, error) {
	all, _ := f.ListBySite(siteID)
	out := []models.NavigationItem{}
	for _, n := range all {
		if n.IsVisible {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNavigation) FindByID(siteID, id uuid.UUID) (*models.NavigationItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.SiteID == siteID && n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNavigation) Create(n *models.NavigationItem) (*models.NavigationItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	cp.ID = uuid.New()
	cp.OrderIndex = len(f.items)
	f.items = append(f.items, cp)
	return &cp, nil
}

func (f *fakeNavigation) Update(n *models.NavigationItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].SiteID == n.SiteID && f.items[i].ID == n.ID {
			f.items[i] = *n
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeNavigation) Delete(siteID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.SiteID == siteID && n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeNavigation) Reorder(siteID uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pos := map[uuid.UUID]int{}
	for i, id := range ids {
		pos[id] = i
	}
	count := 0
	for _, n := range f.items {
		if n.SiteID == siteID {
			if _, ok := pos[n.ID]; !ok {
				return store.ErrOrderMismatch
			}
			count++
		}
	}
	if count != len(ids) || len(pos) != len(ids) {
		return store.ErrOrderMismatch
	}
	for i := range f.items {
		if f.items[i].SiteID == siteID {
			f.items[i].OrderIndex = pos[f.items[i].ID]
		}
	}
	return nil
}

type fakeSettings struct {
	mu     sync.Mutex
	values map[uuid.UUID]models.SiteSettings
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: map[uuid.UUID]models.SiteSettings{}}
}

func (f *fakeSettings) All(siteID uuid.UUID) (models.SiteSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := models.SiteSettings{}
	for k, v := range f.values[siteID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSettings) Set(siteID uuid.UUID, key, value string) error {
	return f.SetMany(siteID, map[string]string{key: value})
}

func (f *fakeSettings) SetMany(siteID uuid.UUID, settings map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[siteID] == nil {
		f.values[siteID] = models.SiteSettings{}
	}
	for k, v := range settings {
		f.values[siteID][k] = v
	}
	return nil
}

type invalidation struct {
	siteID uuid.UUID
	entity string
	action string
}

// fakeEngine renders a page as its title and keeps an in-memory page cache.
type fakeEngine struct {
	mu            sync.Mutex
	cache         map[string][]byte
	invalidations []invalidation
	renders       int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{cache: map[string][]byte{}}
}

func (f *fakeEngine) RenderPage(site *models.Site, page *models.Page) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	return []byte("<html><body>" + page.Title + "</body></html>"), nil
}

func (f *fakeEngine) CachedPage(_ context.Context, siteID uuid.UUID, slug string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	html, ok := f.cache[siteID.String()+":"+slug]
	return html, ok
}

func (f *fakeEngine) StorePage(_ context.Context, siteID uuid.UUID, slug string, html []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[siteID.String()+":"+slug] = html
}

func (f *fakeEngine) InvalidateSite(_ context.Context, siteID uuid.UUID, entityType string, _ uuid.UUID, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.cache {
		if strings.HasPrefix(k, siteID.String()+":") {
			delete(f.cache, k)
		}
	}
	f.invalidations = append(f.invalidations, invalidation{siteID, entityType, action})
}

// fakeLoader knows the compiled default theme plus the named disk themes.
type fakeLoader struct {
	mu          sync.Mutex
	disk        map[string]bool
	invalidated []string
	all         int
}

func newFakeLoader(disk ...string) *fakeLoader {
	f := &fakeLoader{disk: map[string]bool{}}
	for _, id := range disk {
		f.disk[id] = true
	}
	return f
}

func (f *fakeLoader) Theme(id string) (*components.Theme, error) {
	if t, ok := components.Compiled(id); ok {
		return t, nil
	}
	if id == "broken" {
		return nil, fmt.Errorf("parse manifest /srv/themes/broken/theme.yaml: yaml: line 3: mapping values are not allowed")
	}
	if f.disk[id] {
		def, _ := components.Compiled(components.DefaultThemeID)
		return components.NewTheme(id, strings.ToUpper(id[:1])+id[1:], def), nil
	}
	return nil, fmt.Errorf("%w: %s", components.ErrThemeNotFound, id)
}

func (f *fakeLoader) Describe(themeID string) ([]components.Info, error) {
	t, err := f.Theme(themeID)
	if err != nil {
		return nil, err
	}
	out := []components.Info{}
	for _, typ := range t.Types() {
		c, owner, _ := t.Lookup(typ)
		out = append(out, components.Info{Type: typ, Theme: owner.ID, Schema: c.Schema()})
	}
	return out, nil
}

func (f *fakeLoader) Invalidate(themeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, themeID)
}

func (f *fakeLoader) InvalidateAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all++
}

func (f *fakeLoader) Cached() []string { return []string{} }

type fakeRegistry struct {
	ids         []string
	invalidated int
}

func (f *fakeRegistry) Available() []string      { return append([]string{}, f.ids...) }
func (f *fakeRegistry) IsBuiltin(id string) bool { return id == components.DefaultThemeID }
func (f *fakeRegistry) Invalidate()              { f.invalidated++ }

func (f *fakeRegistry) Manifest(id string) (*themes.Manifest, error) {
	if id == "broken" {
		return nil, fmt.Errorf("parse manifest /srv/themes/broken/theme.yaml: bad yaml")
	}
	return &themes.Manifest{ID: id, Name: "Theme " + id, Version: "2.0.0",
		Components: []themes.ComponentSpec{{Type: "hero", Template: "hero.html"}}}, nil
}

type fakeSnapshots struct {
	mu      sync.Mutex
	calls   []uuid.UUID
	all     int
	success bool
}

func (f *fakeSnapshots) Generate(_ context.Context, siteID uuid.UUID) snapshot.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, siteID)
	res := snapshot.Result{SiteID: siteID, Success: f.success, Counts: map[string]int{snapshot.FilePages: 1}}
	if !f.success {
		res.Error = "write failed"
	}
	return res
}

func (f *fakeSnapshots) GenerateAll(ctx context.Context) ([]snapshot.Result, error) {
	f.mu.Lock()
	f.all++
	f.mu.Unlock()
	return []snapshot.Result{f.Generate(ctx, uuid.New())}, nil
}

type fakeTenants struct {
	match       *tenant.Match
	invalidated int
}

func (f *fakeTenants) Resolve(*http.Request) (*tenant.Match, error) { return f.match, nil }
func (f *fakeTenants) Invalidate()                                  { f.invalidated++ }
func (f *fakeTenants) CacheKeys() []string                          { return []string{"domain:example.com"} }

type fakeUsers struct {
	users   map[uuid.UUID]*models.User
	secrets map[uuid.UUID]string
	enabled map[uuid.UUID]bool
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]*models.User{}, secrets: map[uuid.UUID]string{}, enabled: map[uuid.UUID]bool{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) SetTOTPSecret(userID uuid.UUID, secret string) error {
	f.secrets[userID] = secret
	f.users[userID].TOTPSecret = &secret
	return nil
}

func (f *fakeUsers) EnableTOTP(userID uuid.UUID) error {
	f.enabled[userID] = true
	f.users[userID].TOTPEnabled = true
	return nil
}

func (f *fakeUsers) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

type fakeSessions struct {
	created   []*session.Data
	updated   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test"})
	return "test", nil
}

func (f *fakeSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	f.updated = append(f.updated, data)
	return nil
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed++
	return nil
}

type fakeCacheLog struct{}

func (fakeCacheLog) RecentEntries(limit int) ([]store.CacheLogEntry, error) {
	return []store.CacheLogEntry{{ID: 1, EntityType: "page", Action: "update"}}, nil
}

type fakePageKeys struct{}

func (fakePageKeys) Keys(_ context.Context, siteID uuid.UUID) ([]string, error) {
	return []string{"page:" + siteID.String() + ":home"}, nil
}
