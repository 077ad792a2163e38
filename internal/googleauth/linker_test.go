package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"gastobot/internal/models"
	"gastobot/internal/storage"
)

// fakeStore records refresh-token writes.
type fakeStore struct {
	tokens  map[int64]string
	lastErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: map[int64]string{}}
}

func (f *fakeStore) FindByPhone(ctx context.Context, phone string) (models.Account, error) {
	return models.Account{}, storage.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, account models.Account) (models.Account, error) {
	return account, nil
}

func (f *fakeStore) SetRefreshToken(ctx context.Context, accountID int64, token string) (models.Account, error) {
	if f.lastErr != nil {
		return models.Account{}, f.lastErr
	}
	f.tokens[accountID] = token
	return models.Account{ID: accountID, RefreshToken: token}, nil
}

func newLinker(t *testing.T, store storage.AccountStore, tokenHandler http.HandlerFunc) *Linker {
	t.Helper()
	l := New("client-id-123456", "client-secret", "https://example.com/oauth2callback", store, zap.NewNop())
	if tokenHandler != nil {
		srv := httptest.NewServer(tokenHandler)
		t.Cleanup(srv.Close)
		l.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	}
	return l
}

func TestAuthURL(t *testing.T) {
	l := newLinker(t, newFakeStore(), nil)

	raw := l.AuthURL(7)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id-123456", q.Get("client_id"))
	assert.Equal(t, "https://example.com/oauth2callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, spreadsheetScope, q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "user_id:7", q.Get("state"))
}

func TestCompleteLink_Success(t *testing.T) {
	store := newFakeStore()
	l := newLinker(t, store, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code-abcdef", r.FormValue("code"))
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3599}`)
	})

	body, err := l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id:7")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", store.tokens[7])
	assert.Len(t, store.tokens, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "at-1", payload["access_token"])
	assert.Equal(t, "rt-1", payload["refresh_token"])
}

func TestCompleteLink_MissingCode(t *testing.T) {
	store := newFakeStore()
	l := newLinker(t, store, nil)

	_, err := l.CompleteLink(context.Background(), "", "user_id:7")
	require.ErrorIs(t, err, ErrMissingCode)
	assert.Empty(t, store.tokens)
}

func TestCompleteLink_MalformedState(t *testing.T) {
	store := newFakeStore()
	l := newLinker(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer"}`)
	})

	_, err := l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id7")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, store.tokens)

	_, err = l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id:seven")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, store.tokens)
}

func TestCompleteLink_NoRefreshToken(t *testing.T) {
	store := newFakeStore()
	l := newLinker(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","token_type":"Bearer"}`)
	})

	_, err := l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id:7")
	require.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Empty(t, store.tokens)
}

func TestCompleteLink_ExchangeFailure(t *testing.T) {
	store := newFakeStore()
	l := newLinker(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	})

	_, err := l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id:7")
	var xerr *ExchangeError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, http.StatusUnauthorized, xerr.StatusCode)
	assert.Empty(t, store.tokens)
}

func TestCompleteLink_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.lastErr = storage.ErrNotFound
	l := newLinker(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer"}`)
	})

	_, err := l.CompleteLink(context.Background(), "auth-code-abcdef", "user_id:7")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
