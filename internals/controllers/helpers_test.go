package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/routes"
	"github.com/shivang-26/techCommunity-website/internals/testutil"
)

// api drives the assembled router through a real HTTP client with a cookie
// jar, so session and bearer cookies behave as they would in a browser.
type api struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	db     *gorm.DB
	sender *testutil.FakeSender
	google *testutil.FakeExchanger
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET_KEY", "test-signing-secret")
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	db := testutil.NewDB(t)
	sender := testutil.NewFakeSender()
	google := &testutil.FakeExchanger{}

	router, err := routes.SetupRouter(db, sender, google)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &api{
		t:      t,
		srv:    srv,
		client: &http.Client{Jar: jar},
		db:     db,
		sender: sender,
		google: google,
	}
}

// freshClient returns a client with an empty cookie jar, for requests that
// must not carry existing credentials.
func (a *api) freshClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &http.Client{Jar: jar}
}

func (a *api) do(client *http.Client, method, path string, body any) (*http.Response, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(a.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	resp.Body.Close()

	var parsed map[string]any
	if len(raw) > 0 {
		// Some endpoints (profile pictures, arrays) aren't JSON objects;
		// callers that care use doRaw instead.
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func (a *api) post(path string, body any) (*http.Response, map[string]any) {
	return a.do(a.client, http.MethodPost, path, body)
}

func (a *api) get(path string) (*http.Response, map[string]any) {
	return a.do(a.client, http.MethodGet, path, nil)
}

// doRaw issues a request and returns the untouched response body.
func (a *api) doRaw(client *http.Client, method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	a.t.Helper()

	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	require.NoError(a.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	resp.Body.Close()
	return resp, raw
}

// registerAndVerify walks a user through the registration flow and leaves
// the client logged in (verification auto-logs-in).
func (a *api) registerAndVerify(username, email, password string) {
	a.t.Helper()

	resp, _ := a.post("/api/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)

	code := a.sender.LastCode(email)
	require.NotEmpty(a.t, code)

	resp, _ = a.post("/api/auth/verify-otp", map[string]string{"email": email, "otp": code})
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
}

func (a *api) logout() {
	a.t.Helper()
	resp, _ := a.post("/api/auth/logout", nil)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
}

// multipartFile builds a multipart body with a single profilePic part.
func multipartFile(t *testing.T, fieldContentType string, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profilePic"; filename="upload"`))
	h.Set("Content-Type", fieldContentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func userField(t *testing.T, body map[string]any, field string) any {
	t.Helper()
	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "response has no user object: %v", body)
	return user[field]
}
