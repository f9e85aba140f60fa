package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/swjeon2/ATM-controller/internal/cashbin"
	"github.com/swjeon2/ATM-controller/internal/config"
	"github.com/swjeon2/ATM-controller/internal/service"
	"github.com/swjeon2/ATM-controller/internal/store"
)

// Handler exposes the provisioning and operations API: operator login,
// account creation, card enrollment and linking, journal queries, and
// cash bin management.
type Handler struct {
	svc *service.Service
	bin *cashbin.Bin
	cfg *config.Config
}

func NewHandler(svc *service.Service, bin *cashbin.Bin, cfg *config.Config) *Handler {
	return &Handler{svc: svc, bin: bin, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrBadAmount), errors.Is(err, store.ErrInsufficient):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Login authenticates the operator and returns a JWT token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password != h.cfg.OperatorPassword {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      string `json:"id"`
		Balance int64  `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	account, err := h.svc.CreateAccount(req.ID, req.Balance)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// EnrollCard handles card enrollment
func (h *Handler) EnrollCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number     string   `json:"number"`
		PIN        string   `json:"pin"`
		AccountIDs []string `json:"account_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.EnrollCard(req.Number, req.PIN, req.AccountIDs); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrExists) {
			writeStoreError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "enrolled"})
}

// LinkAccount adds an account to an enrolled card.
func (h *Handler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.LinkAccount(number, req.AccountID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

// Transactions returns the journal for one account.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]
	txs, err := h.svc.Transactions(accountID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// CashBinStatus reports the current dispensable stock.
func (h *Handler) CashBinStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"stock": h.bin.Stock()})
}

// CashBinLoad refills the cash bin.
func (h *Handler) CashBinLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.bin.Load(req.Amount); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"stock": h.bin.Stock()})
}
