package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gastobot/internal/http/respond"
	"gastobot/internal/models"
	"gastobot/internal/models/dto"
	"gastobot/internal/storage"
)

// AuthURLBuilder hands out the authorization URL that links a freshly
// created account to its spreadsheet credential.
type AuthURLBuilder interface {
	AuthURL(accountID int64) string
}

// SignupHandler registers new accounts.
type SignupHandler struct {
	store  storage.AccountStore
	linker AuthURLBuilder
	logger *zap.Logger
}

// NewSignupHandler constructs the handler.
func NewSignupHandler(store storage.AccountStore, linker AuthURLBuilder, logger *zap.Logger) *SignupHandler {
	return &SignupHandler{store: store, linker: linker, logger: logger}
}

// Register attaches the signup route to the mux.
func (h *SignupHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup", h.handle)
}

func (h *SignupHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Payload JSON inválido.")
		return
	}
	if err := validateSignup(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Erro ao criar usuário.")
		return
	}

	account := models.Account{
		Name:         strings.TrimSpace(req.Name),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		SheetID:      strings.TrimSpace(req.GoogleSheetsID),
		PasswordHash: string(passwordHash),
	}
	created, err := h.store.Create(r.Context(), account)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusBadRequest, "Número de telefone já cadastrado.")
		case errors.Is(err, storage.ErrUnavailable):
			h.logger.Error("create account unavailable", zap.Error(err))
			respond.Error(w, http.StatusServiceUnavailable, "Erro temporário no banco de dados. Tente novamente.")
		default:
			h.logger.Error("create account", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "Erro ao criar usuário.")
		}
		return
	}

	h.logger.Info("account created", zap.Int64("account_id", created.ID))
	respond.JSON(w, http.StatusOK, dto.SignupResponse{
		Success:  true,
		Message:  "Usuário criado com sucesso. Autorize o acesso ao Google Sheets para concluir o cadastro.",
		OAuthURL: h.linker.AuthURL(created.ID),
	})
}

func validateSignup(req dto.SignupRequest) error {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.PhoneNumber) == "" ||
		strings.TrimSpace(req.GoogleSheetsID) == "" {
		return errors.New("name, phone_number e google_sheets_id são obrigatórios")
	}
	if strings.TrimSpace(req.Password) == "" {
		return errors.New("password é obrigatório")
	}
	return nil
}
