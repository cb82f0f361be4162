package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/honeynil/finboard/internal/models"
	service "github.com/honeynil/finboard/internal/services"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
)

type Handler struct {
	service service.DashboardService
}

func NewHandler(s service.DashboardService) *Handler {
	return &Handler{service: s}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = pkgerrors.ErrInvalidInput.Error()
		resp.Fields = verr.Fields
	}
	h.writeJSON(w, status, resp)
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, pkgerrors.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, pkgerrors.ErrAccountNotFound),
		errors.Is(err, pkgerrors.ErrCardNotFound),
		errors.Is(err, pkgerrors.ErrBeneficiaryNotFound),
		errors.Is(err, pkgerrors.ErrBillerNotFound),
		errors.Is(err, pkgerrors.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, err)
	default:
		slog.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, pkgerrors.ErrInternal)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, pkgerrors.ErrInvalidInput)
		return false
	}
	return true
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	r.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	r.HandleFunc("/accounts/{id}/transactions", h.AccountTransactions).Methods("GET")
	r.HandleFunc("/transactions/{id}", h.Transaction).Methods("GET")
	r.HandleFunc("/overview", h.Overview).Methods("GET")
	r.HandleFunc("/spending", h.Spending).Methods("GET")

	r.HandleFunc("/cards", h.ListCards).Methods("GET")
	r.HandleFunc("/cards/{id}/transactions", h.CardTransactions).Methods("GET")
	r.HandleFunc("/cards/{id}/lock", h.ToggleCardLock).Methods("POST")
	r.HandleFunc("/cards/{id}/reveal", h.ToggleCardReveal).Methods("POST")

	r.HandleFunc("/transfers", h.SubmitTransfer).Methods("POST")
	r.HandleFunc("/bills", h.PayBill).Methods("POST")
	r.HandleFunc("/payments/history", h.PaymentHistory).Methods("GET")
	r.HandleFunc("/billers", h.ListBillers).Methods("GET")
	r.HandleFunc("/beneficiaries", h.ListBeneficiaries).Methods("GET")
	r.HandleFunc("/beneficiaries", h.AddBeneficiary).Methods("POST")
	r.HandleFunc("/beneficiaries/{id}", h.DeleteBeneficiary).Methods("DELETE")

	r.HandleFunc("/settings/profile", h.Profile).Methods("GET")
	r.HandleFunc("/settings/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/settings/password", h.ChangePassword).Methods("POST")
	r.HandleFunc("/settings/notifications", h.NotificationPreferences).Methods("GET")
	r.HandleFunc("/settings/notifications", h.UpdateNotificationPreferences).Methods("PUT")
	r.HandleFunc("/notifications", h.Notifications).Methods("GET")
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// pageParam reads ?page=, defaulting to the first page. Malformed values are
// rejected rather than silently reset.
func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.ErrInvalidInput
	}
	return page, nil
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.service.AccountTransactions(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("search"), page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Transaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Transaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) Spending(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Spending(r.Context(), r.URL.Query().Get("account_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.ListCards(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) CardTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.service.CardTransactions(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("search"), page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ToggleCardLock(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.ToggleCardLock(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}

func (h *Handler) ToggleCardReveal(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.ToggleCardReveal(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}

func (h *Handler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req service.TransferRequest
	if !h.decode(w, r, &req) {
		return
	}
	record, err := h.service.SubmitTransfer(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, record)
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req service.BillPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	record, err := h.service.PayBill(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, record)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.PaymentHistory(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

func (h *Handler) ListBillers(w http.ResponseWriter, r *http.Request) {
	billers, err := h.service.ListBillers(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, billers)
}

func (h *Handler) ListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBeneficiaries(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AddBeneficiary(w http.ResponseWriter, r *http.Request) {
	var req service.BeneficiaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.service.AddBeneficiary(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) DeleteBeneficiary(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBeneficiary(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Profile(r.Context()))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.Profile
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdateProfile(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.PasswordChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), req); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) NotificationPreferences(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.NotificationPreferences(r.Context()))
}

func (h *Handler) UpdateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationPreferences
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.UpdateNotificationPreferences(r.Context(), req))
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, pkgerrors.ErrInvalidInput)
			return
		}
		limit = n
	}
	h.writeJSON(w, http.StatusOK, h.service.Notifications(r.Context(), limit))
}
