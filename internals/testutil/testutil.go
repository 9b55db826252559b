package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/initializers"
	"github.com/shivang-26/techCommunity-website/internals/oauth"
)

// NewDB opens an isolated in-memory database with the full schema migrated.
// The DSN is derived from the test name so parallel tests don't share state.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

// FakeSender records dispatched codes instead of talking to SMTP.
type FakeSender struct {
	mu    sync.Mutex
	Codes map[string]string // email -> last code
	Err   error
}

func NewFakeSender() *FakeSender {
	return &FakeSender{Codes: make(map[string]string)}
}

func (f *FakeSender) SendOTP(_ context.Context, toEmail, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Codes[toEmail] = code
	return nil
}

// LastCode returns the most recent code sent to the address.
func (f *FakeSender) LastCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Codes[email]
}

// FakeExchanger returns canned identity claims for any authorization code,
// or a fixed error.
type FakeExchanger struct {
	Claims *oauth.Claims
	Err    error
}

func (f *FakeExchanger) Exchange(_ context.Context, _ string) (*oauth.Claims, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Claims, nil
}
