package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gastobot/internal/models"
	"gastobot/internal/models/dto"
	"gastobot/internal/storage"
)

type createStore struct {
	created *models.Account
	err     error
}

func (s *createStore) FindByPhone(ctx context.Context, phone string) (models.Account, error) {
	return models.Account{}, storage.ErrNotFound
}

func (s *createStore) Create(ctx context.Context, account models.Account) (models.Account, error) {
	if s.err != nil {
		return models.Account{}, s.err
	}
	account.ID = 7
	s.created = &account
	return account, nil
}

func (s *createStore) SetRefreshToken(ctx context.Context, accountID int64, token string) (models.Account, error) {
	return models.Account{}, storage.ErrNotFound
}

type stubLinker struct{}

func (stubLinker) AuthURL(accountID int64) string {
	return fmt.Sprintf("https://accounts.google.com/o/oauth2/v2/auth?access_type=offline&prompt=consent&state=user_id%%3A%d", accountID)
}

func postSignup(t *testing.T, store storage.AccountStore, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewSignupHandler(store, stubLinker{}, zap.NewNop())
	mux := http.NewServeMux()
	h.Register(mux)
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

const validSignup = `{"name":"Ana","phone_number":"5511999990000","password":"segredo123","google_sheets_id":"sheet-1"}`

func TestSignup_Success(t *testing.T) {
	store := &createStore{}
	rr := postSignup(t, store, validSignup)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp dto.SignupResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.OAuthURL, "access_type=offline")
	assert.Contains(t, resp.OAuthURL, "prompt=consent")
	assert.Contains(t, resp.OAuthURL, "state=user_id%3A7")

	require.NotNil(t, store.created)
	assert.Equal(t, "Ana", store.created.Name)
	assert.Equal(t, "sheet-1", store.created.SheetID)
	// Password stored as a bcrypt hash, never in the clear.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.created.PasswordHash), []byte("segredo123")))
}

func TestSignup_DuplicatePhone(t *testing.T) {
	rr := postSignup(t, &createStore{err: storage.ErrAlreadyExists}, validSignup)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp dto.SignupResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.OAuthURL)
}

func TestSignup_MissingFields(t *testing.T) {
	cases := []string{
		`{"phone_number":"55","password":"x","google_sheets_id":"s"}`,
		`{"name":"Ana","password":"x","google_sheets_id":"s"}`,
		`{"name":"Ana","phone_number":"55","google_sheets_id":"s"}`,
		`{"name":"Ana","phone_number":"55","password":"x"}`,
		`not json`,
	}
	for _, body := range cases {
		rr := postSignup(t, &createStore{}, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestSignup_StoreUnavailable(t *testing.T) {
	rr := postSignup(t, &createStore{err: fmt.Errorf("create account: %w", storage.ErrUnavailable)}, validSignup)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
