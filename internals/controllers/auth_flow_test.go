package controllers_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivang-26/techCommunity-website/internals/models"
	"github.com/shivang-26/techCommunity-website/internals/oauth"
)

func TestRegisterRequiresAllFields(t *testing.T) {
	a := newAPI(t)

	for _, body := range []map[string]string{
		{"email": "alice@x.com", "password": "secret1"},
		{"username": "alice", "password": "secret1"},
		{"username": "alice", "email": "alice@x.com"},
		{"username": "  ", "email": "alice@x.com", "password": "secret1"},
	} {
		resp, _ := a.post("/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRegisterVerifyLoginLogoutFlow(t *testing.T) {
	a := newAPI(t)

	// Register: 200, user exists unverified, OTP dispatched.
	resp, _ := a.post("/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, a.sender.LastCode("alice@x.com"))

	var stored models.User
	require.NoError(t, a.db.Where("email = ?", "alice@x.com").First(&stored).Error)
	assert.False(t, stored.IsVerified)
	assert.NotEqual(t, "secret1", stored.Password)

	// Login before verification is rejected.
	resp, _ = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Verify: auto-login, user projection returned.
	resp, body := a.post("/api/auth/verify-otp", map[string]string{
		"email": "alice@x.com", "otp": a.sender.LastCode("alice@x.com"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, userField(t, body, "isVerified"))

	// Session from verification authenticates /me.
	resp, body = a.get("/api/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", userField(t, body, "username"))
	assert.Equal(t, "user", userField(t, body, "role"))

	a.logout()

	// After logout neither cookie works.
	resp, _ = a.get("/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Fresh login succeeds and restores access.
	resp, body = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, stored.ID, userField(t, body, "id"))

	resp, _ = a.get("/api/auth/me")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	// Same email, different username and case: still a conflict.
	resp, _ := a.post("/api/auth/register", map[string]string{
		"username": "somebody", "email": "Alice@X.com", "password": "other99",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVerifyOtpRejectsWrongAndStaleCodes(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.post("/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := a.sender.LastCode("alice@x.com")

	wrong := "000000"
	if wrong == first {
		wrong = "000001"
	}
	resp, _ = a.post("/api/auth/verify-otp", map[string]string{"email": "alice@x.com", "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Reissue supersedes: only the latest code verifies.
	resp, _ = a.post("/api/auth/forgot-password", map[string]string{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := a.sender.LastCode("alice@x.com")

	if first != second {
		resp, _ = a.post("/api/auth/verify-otp", map[string]string{"email": "alice@x.com", "otp": first})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, _ = a.post("/api/auth/verify-otp", map[string]string{"email": "alice@x.com", "otp": second})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")
	a.logout()

	cases := []map[string]string{
		{"email": "nobody@x.com", "password": "secret1"},
		{"email": "alice@x.com", "password": "wrong-password"},
	}
	for _, body := range cases {
		resp, parsed := a.post("/api/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		// Unknown email and wrong password are indistinguishable in the
		// response body.
		assert.Equal(t, "Invalid email or password.", parsed["message"])
	}
}

func TestMeAcceptsBearerHeader(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	var bearer string
	for _, cookie := range a.client.Jar.Cookies(mustParseURL(t, a.srv.URL)) {
		if cookie.Name == "token" {
			bearer = cookie.Value
		}
	}
	require.NotEmpty(t, bearer)

	// A cookie-less client with only the Authorization header gets through.
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := a.freshClient().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutIsIdempotent(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.post("/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	a.registerAndVerify("alice", "alice@x.com", "secret1")
	a.logout()
	a.logout()
}

func TestChangePassword(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	// Validation failures first.
	resp, _ := a.post("/api/auth/change-password", map[string]string{
		"currentPassword": "secret1", "newPassword": "new", "confirmPassword": "new",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.post("/api/auth/change-password", map[string]string{
		"currentPassword": "secret1", "newPassword": "newsecret", "confirmPassword": "different",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.post("/api/auth/change-password", map[string]string{
		"currentPassword": "not-it", "newPassword": "newsecret", "confirmPassword": "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.post("/api/auth/change-password", map[string]string{
		"currentPassword": "secret1", "newPassword": "newsecret", "confirmPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer logs in, the new one does.
	a.logout()
	resp, _ = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForgotAndResetPassword(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")
	a.logout()

	resp, _ := a.post("/api/auth/forgot-password", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.post("/api/auth/forgot-password", map[string]string{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code := a.sender.LastCode("alice@x.com")
	require.NotEmpty(t, code)

	// The pre-check does not consume the code.
	resp, _ = a.post("/api/auth/verify-reset-otp", map[string]string{"email": "alice@x.com", "otp": code})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.post("/api/auth/reset-password", map[string]string{
		"email": "alice@x.com", "otp": code, "newPassword": "tiny",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.post("/api/auth/reset-password", map[string]string{
		"email": "alice@x.com", "otp": code, "newPassword": "brandnew",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Code is consumed by the reset.
	resp, _ = a.post("/api/auth/reset-password", map[string]string{
		"email": "alice@x.com", "otp": code, "newPassword": "brandnew2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "brandnew"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGoogleAuthIsIdempotent(t *testing.T) {
	a := newAPI(t)
	a.google.Claims = &oauth.Claims{
		Email:   "alice@x.com",
		Name:    "Alice Example",
		Picture: "https://lh3.example/alice.png",
		Subject: "google-sub-1",
	}

	resp, body := a.post("/api/auth/google", map[string]string{"authorizationCode": "code-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	firstID := userField(t, body, "id")

	var stored models.User
	require.NoError(t, a.db.Where("email = ?", "alice@x.com").First(&stored).Error)
	assert.True(t, stored.IsVerified)
	assert.Equal(t, models.ProviderGoogle, stored.AuthProvider)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "google-sub-1", *stored.GoogleID)
	assert.Empty(t, stored.Password)

	// Second federated login resolves to the same account.
	resp, body = a.post("/api/auth/google", map[string]string{"authorizationCode": "code-2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstID, userField(t, body, "id"))

	var count int64
	require.NoError(t, a.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// And the session it minted works.
	resp, _ = a.get("/api/auth/me")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGoogleAuthLinksExistingLocalAccount(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")
	a.logout()

	a.google.Claims = &oauth.Claims{
		Email:   "alice@x.com",
		Name:    "Alice Example",
		Picture: "https://lh3.example/alice.png",
		Subject: "google-sub-1",
	}
	resp, _ := a.post("/api/auth/google", map[string]string{"authorizationCode": "code-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, a.db.Where("email = ?", "alice@x.com").First(&stored).Error)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "google-sub-1", *stored.GoogleID)
	assert.Equal(t, "https://lh3.example/alice.png", stored.PictureURL)

	// Password login still works after linking.
	a.logout()
	resp, _ = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGoogleAuthExchangeFailure(t *testing.T) {
	a := newAPI(t)
	a.google.Err = assert.AnError

	resp, body := a.post("/api/auth/google", map[string]string{"authorizationCode": "bad-code"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body["details"])
}

func TestProfilePictureUploadAndServe(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	var stored models.User
	require.NoError(t, a.db.Where("email = ?", "alice@x.com").First(&stored).Error)

	// 2MB PNG is accepted and served back byte-for-byte.
	png := bytes.Repeat([]byte{0x89}, 2<<20)
	body, contentType := multipartFile(t, "image/png", png)
	resp, _ := a.doRaw(a.client, http.MethodPost, "/api/auth/upload-profile-pic", body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := a.doRaw(a.freshClient(), http.MethodGet, "/api/auth/profile-picture/"+itoa(stored.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Len(t, raw, len(png))

	// Over the 5MB cap.
	big, contentType := multipartFile(t, "image/png", bytes.Repeat([]byte{0x1}, 6<<20))
	resp, _ = a.doRaw(a.client, http.MethodPost, "/api/auth/upload-profile-pic", big, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Not an image.
	text, contentType := multipartFile(t, "text/plain", []byte("hello"))
	resp, _ = a.doRaw(a.client, http.MethodPost, "/api/auth/upload-profile-pic", text, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No file attached.
	resp, _ = a.post("/api/auth/upload-profile-pic", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfilePictureMissing(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	var stored models.User
	require.NoError(t, a.db.Where("email = ?", "alice@x.com").First(&stored).Error)

	// User exists but has no picture; unknown ids behave the same.
	resp, _ := a.doRaw(a.freshClient(), http.MethodGet, "/api/auth/profile-picture/"+itoa(stored.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.doRaw(a.freshClient(), http.MethodGet, "/api/auth/profile-picture/99999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTwoFactorLoginFlow(t *testing.T) {
	a := newAPI(t)
	a.registerAndVerify("alice", "alice@x.com", "secret1")

	resp, body := a.post("/api/auth/2fa/setup", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	secret, _ := body["secret"].(string)
	require.NotEmpty(t, secret)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp, _ = a.post("/api/auth/2fa/activate", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	a.logout()

	// Password alone no longer completes the login.
	resp, body = a.post("/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["mfa_required"])

	resp, _ = a.get("/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp, _ = a.post("/api/auth/2fa/login-verify", map[string]string{"email": "alice@x.com", "code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.get("/api/auth/me")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
