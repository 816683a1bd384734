package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/auth"
	"github.com/blaemedia/alx-project-nexus/internal/cart"
	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/events"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/blaemedia/alx-project-nexus/internal/store"
	"github.com/blaemedia/alx-project-nexus/internal/thumbs"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shopperEmail    = "ada@example.com"
	shopperPassword = "correct-horse"
)

// fakeBackend mimics the REST backend closely enough for page flows.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu         sync.Mutex
	access     string
	revoked    bool
	lines      map[int]models.CartLine
	nextLine   int
	lastSearch string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Subject:   "1",
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	b := &fakeBackend{t: t, access: tok, lines: map[int]models.CartLine{}, nextLine: 1}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /store/categories/{$}", b.categories)
	mux.HandleFunc("GET /store/products/{$}", b.products)
	mux.HandleFunc("GET /store/products/{id}/{$}", b.product)
	mux.HandleFunc("GET /store/cart-items/{$}", b.withAuth(b.listLines))
	mux.HandleFunc("POST /store/cart-items/{$}", b.withAuth(b.createLine))
	mux.HandleFunc("PATCH /store/cart-items/{id}/{$}", b.withAuth(b.updateLine))
	mux.HandleFunc("DELETE /store/cart-items/{id}/{$}", b.withAuth(b.deleteLine))
	mux.HandleFunc("POST /auth/jwt/create/{$}", b.createToken)
	mux.HandleFunc("GET /auth/users/me/{$}", b.withAuth(b.me))
	mux.HandleFunc("POST /auth/users/reset_password_confirm/{$}", b.resetConfirm)
	mux.HandleFunc("GET /media/", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		ok := !b.revoked && r.Header.Get("Authorization") == "Bearer "+b.access
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type", "code": "token_not_valid"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]interface{}{
		{"id": 1, "name": "Footwear", "slug": "footwear", "cat_thumbnail": "categories/shoes.png", "image_url": nil},
		{"id": 2, "name": "Bags", "slug": "bags", "cat_thumbnail": nil, "image_url": nil},
	})
}

var catalogProducts = []map[string]interface{}{
	{"id": 7, "name": "Shoe 12", "slug": "shoe-12", "price": "1200.50", "image": "products/shoe.png", "in_stock": true},
	{"id": 9, "name": "Tote Bag", "slug": "tote-bag", "price": "35000", "image": nil, "in_stock": false},
}

func (b *fakeBackend) products(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	b.mu.Lock()
	b.lastSearch = search
	b.mu.Unlock()

	out := []map[string]interface{}{}
	for _, p := range catalogProducts {
		if search == "" || strings.Contains(strings.ToLower(p["name"].(string)), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(out), "results": out})
}

func (b *fakeBackend) product(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	for _, p := range catalogProducts {
		if p["id"] == id {
			detail := map[string]interface{}{"description": "A fine item.", "promotion": "", "images": []interface{}{}}
			for k, v := range p {
				detail[k] = v
			}
			writeJSON(w, http.StatusOK, detail)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No Product matches the given query."})
}

func (b *fakeBackend) listLines(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.CartLine{}
	for id := 1; id < b.nextLine; id++ {
		if l, ok := b.lines[id]; ok {
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) createLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Product  int `json:"product"`
		Quantity int `json:"quantity"`
	}
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&in))

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if l.Product == in.Product {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"The fields user, product must make a unique set."}})
			return
		}
	}
	line := models.CartLine{ID: b.nextLine, User: 1, Product: in.Product, Quantity: in.Quantity}
	b.lines[line.ID] = line
	b.nextLine++
	writeJSON(w, http.StatusCreated, line)
}

func (b *fakeBackend) updateLine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	var in struct {
		Quantity int `json:"quantity"`
	}
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&in))

	b.mu.Lock()
	defer b.mu.Unlock()
	line, ok := b.lines[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	line.Quantity = in.Quantity
	b.lines[id] = line
	writeJSON(w, http.StatusOK, line)
}

func (b *fakeBackend) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	delete(b.lines, id)
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) createToken(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&in))
	if in.Email != shopperEmail || in.Password != shopperPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": b.access, "refresh": "refresh-1"})
}

func (b *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "email": shopperEmail, "first_name": "Ada"})
}

func (b *fakeBackend) resetConfirm(w http.ResponseWriter, r *http.Request) {
	var in api.ResetConfirmation
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(&in))
	if in.Token != "good-token" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"token": {"Invalid token for given user."}})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) cartLines() []models.CartLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.CartLine, 0, len(b.lines))
	for _, l := range b.lines {
		out = append(out, l)
	}
	return out
}

func (b *fakeBackend) revoke() {
	b.mu.Lock()
	b.revoked = true
	b.mu.Unlock()
}

type testApp struct {
	backend *fakeBackend
	vault   *store.Store
	broker  *events.Broker
	server  *httptest.Server
	client  *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	backend := newFakeBackend(t)

	vault, err := store.NewStore(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { vault.Close() })
	require.NoError(t, vault.Migrate())

	client := api.New(api.Options{BaseURL: backend.srv.URL, Timeout: 2 * time.Second, RetryWait: time.Millisecond})
	display := catalog.NewDisplay(client.BaseURL(), "/static/images/placeholder.svg", "₦")
	fetcher := catalog.NewFetcher(client, display)
	broker := events.NewBroker(4)
	manager := session.NewManager(session.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false, "", time.Hour), vault, time.Hour)
	authService := auth.NewService(client)

	templates := NewTemplateCache()
	templates.AddDisplayFuncs(display)
	require.NoError(t, templates.Load(os.DirFS(filepath.Join("..", "..", "templates"))))

	pages := &Pages{Templates: templates, Sessions: manager}
	router := &Router{
		Home: &HomeHandler{Pages: pages, Catalog: fetcher},
		Cart: &CartHandler{
			Pages:      pages,
			Reconciler: cart.NewReconciler(client, broker),
			Aggregator: cart.NewAggregator(client, fetcher, display, broker),
			Badge:      cart.BadgeSilent,
		},
		Auth:           &AuthHandler{Pages: pages, Auth: authService},
		Events:         &EventsHandler{Broker: broker, Heartbeat: time.Second},
		Thumbs:         &ThumbHandler{Thumbs: thumbs.NewService(display, time.Second)},
		Static:         os.DirFS(filepath.Join("..", "..", "static")),
		Session:        LoadSession(manager, authService),
		RequestTimeout: 5 * time.Second,
		ImageOrigins:   []string{client.BaseURL()},
	}

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testApp{
		backend: backend,
		vault:   vault,
		broker:  broker,
		server:  srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	resp, _ := a.post(t, "/signin", url.Values{"email": {shopperEmail}, "password": {shopperPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/account", resp.Header.Get("Location"))
}

func (a *testApp) liveSessions(t *testing.T) int {
	t.Helper()
	live, _, err := a.vault.SessionStats(context.Background(), time.Now())
	require.NoError(t, err)
	return live
}

func TestHome_RendersCardsWithResolvedImages(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, "Footwear")
	assert.Contains(t, body, "/thumb?src="+url.QueryEscape(app.backend.srv.URL+"/media/categories/shoes.png"))
	assert.Contains(t, body, `src="/static/images/placeholder.svg"`)
	assert.Contains(t, body, "<h3>Shoe</h3>")
	assert.Contains(t, body, "₦1,200.50")
	assert.Contains(t, body, "₦35,000.00")
	assert.Contains(t, body, "Out of stock")
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), app.backend.srv.URL)
}

func TestShop_SearchIsForwarded(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/shop?search=tote&page=4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tote", app.backend.lastSearch)
	assert.Contains(t, body, "Tote Bag")
	assert.NotContains(t, body, "<h3>Shoe</h3>")
	assert.Contains(t, body, "Page 1 of 1")
}

func TestProduct_DetailAndNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/products/7")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "A fine item.")
	assert.Contains(t, body, app.backend.srv.URL+"/media/products/shoe.png")

	resp, _ = app.get(t, "/products/404")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.get(t, "/products/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignIn_WrongCredentialsStoresNothing(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/signin", url.Values{"email": {shopperEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email or password is incorrect")
	assert.Contains(t, body, `value="`+shopperEmail+`"`)
	assert.Zero(t, app.liveSessions(t))
}

func TestSignIn_ValidationNeverCallsBackend(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/signin", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email is invalid")
	assert.Contains(t, body, "Password is required")
}

func TestSignIn_SuccessStoresTokensAndShowsAccount(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)
	assert.Equal(t, 1, app.liveSessions(t))

	resp, body := app.get(t, "/account")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Ada!")
	assert.Contains(t, body, "Welcome back!")

	resp, _ = app.get(t, "/signin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = app.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, app.liveSessions(t))
}

func TestSignIn_SessionCookieWorksOverPlainHTTP(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.post(t, "/signin", url.Values{"email": {shopperEmail}, "password": {shopperPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.False(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	u, err := url.Parse(app.server.URL)
	require.NoError(t, err)
	var names []string
	for _, c := range app.client.Jar.Cookies(u) {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, session.CookieName)
}

func TestCart_AddRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.post(t, "/cart/add", url.Values{"product_id": {"7"}, "name": {"Shoe 12"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/signin", resp.Header.Get("Location"))

	_, body := app.get(t, "/signin")
	assert.Contains(t, body, "Please login to add items to cart")
	assert.Empty(t, app.backend.cartLines())

	_, body = app.get(t, "/cart")
	assert.Contains(t, body, "Please login to view your cart")
}

func TestCart_AddTwiceMergesAndTotals(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	for i := 0; i < 2; i++ {
		resp, _ := app.post(t, "/cart/add", url.Values{"product_id": {"7"}, "name": {"Shoe 12"}, "next": {"/shop?page=1"}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/shop?page=1", resp.Header.Get("Location"))
	}

	lines := app.backend.cartLines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	_, body := app.get(t, "/cart")
	assert.Contains(t, body, "Shoe 12 added to cart")
	assert.Contains(t, body, "₦2,401.00")
	assert.Contains(t, body, "Items: 2")

	resp, body := app.get(t, "/cart/count")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":2}`, body)
}

func TestCart_ConcurrentAddsKeepOneLine(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.client.PostForm(app.server.URL+"/cart/add", url.Values{"product_id": {"7"}})
			if assert.NoError(t, err) {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	lines := app.backend.cartLines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCart_UpdateRemoveAndClear(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)
	app.post(t, "/cart/add", url.Values{"product_id": {"7"}})
	app.post(t, "/cart/add", url.Values{"product_id": {"9"}})

	lines := app.backend.cartLines()
	require.Len(t, lines, 2)
	var shoeLine int
	for _, l := range lines {
		if l.Product == 7 {
			shoeLine = l.ID
		}
	}

	resp, _ := app.post(t, "/cart/update", url.Values{"line_id": {strconv.Itoa(shoeLine)}, "product_id": {"7"}, "quantity": {"3"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body := app.get(t, "/cart")
	assert.Contains(t, body, "₦3,601.50")

	app.post(t, "/cart/update", url.Values{"line_id": {strconv.Itoa(shoeLine)}, "product_id": {"7"}, "quantity": {"0"}})
	_, body = app.get(t, "/cart")
	assert.Contains(t, body, "Quantity must be at least 1.")

	resp, _ = app.post(t, "/cart/remove", url.Values{"line_id": {strconv.Itoa(shoeLine)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Len(t, app.backend.cartLines(), 1)

	resp, body = app.post(t, "/cart/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "All items have been removed from your cart")
	assert.Contains(t, body, "Your cart is empty.")
	assert.Empty(t, app.backend.cartLines())
}

func TestCart_RejectedTokenSignsOut(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)
	app.backend.revoke()

	resp, _ := app.get(t, "/cart")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/signin", resp.Header.Get("Location"))
	assert.Zero(t, app.liveSessions(t))

	_, body := app.get(t, "/signin")
	assert.Contains(t, body, msgSessionExpired)
}

func TestCartCount_AnonymousIsZero(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.get(t, "/cart/count")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0}`, body)
}

func TestResetPassword(t *testing.T) {
	app := newTestApp(t)

	_, body := app.get(t, "/reset-password")
	assert.Contains(t, body, auth.MsgInvalidResetLink)

	resp, body := app.post(t, "/reset-password", url.Values{
		"uid": {"MQ"}, "token": {"stale"}, "password": {"new-password-1"}, "confirm": {"new-password-1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid or expired token: Invalid token for given user.")

	resp, _ = app.post(t, "/reset-password", url.Values{
		"uid": {"MQ"}, "token": {"good-token"}, "password": {"new-password-1"}, "confirm": {"new-password-1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get(t, "/signin")
	assert.Contains(t, body, "Your password has been reset successfully.")
}

func TestEvents_AnonymousGetsNoContent(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.get(t, "/events/cart")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEvents_StreamsCartChanges(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, app.server.URL+"/events/cart", nil)
	require.NoError(t, err)
	resp, err := app.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "retry: 5000\n", line)

	app.post(t, "/cart/add", url.Values{"product_id": {"7"}})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	assert.Equal(t, fmt.Sprintf("event: %s\n", events.KindCart), line)
}

func TestThumb_RejectsForeignSources(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.get(t, "/thumb?src="+url.QueryEscape("https://elsewhere.example/a.png")+"&w=100")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.get(t, "/thumb?src=products/missing.png&w=100")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticAndHealth(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, _ = app.get(t, "/static/images/placeholder.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
