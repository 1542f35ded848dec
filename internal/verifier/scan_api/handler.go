package scan_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-scanning/internal/logger"
	"ms-scanning/internal/models"
	verifier "ms-scanning/internal/verifier/service"
)

type Handler struct {
	Verifier  *verifier.Service
	Logger    *logger.Logger
	startedAt time.Time
}

func NewHandler(v *verifier.Service, log *logger.Logger) *Handler {
	return &Handler{
		Verifier:  v,
		Logger:    log,
		startedAt: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/verify-ticket", h.VerifyTicket)
	r.Get("/scan-stats", h.ScanStats)
	r.Get("/health", h.Health)
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	UsedAt     *time.Time         `json:"usedAt,omitempty"`
	TicketInfo *models.TicketInfo `json:"ticketInfo,omitempty"`
}

type statsResponse struct {
	Success bool             `json:"success"`
	Stats   models.ScanStats `json:"stats"`
}

// VerifyTicket resolves one scanned token to a terminal verdict.
// 200 = accepted, 409 = already used; everything else is a rejection.
func (h *Handler) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		h.writeJSON(w, http.StatusBadRequest, verifyResponse{
			Success: false,
			Message: "Token manquant",
		})
		return
	}

	result, err := h.Verifier.VerifyTicket(r.Context(), req.Token)
	if err != nil {
		h.writeVerifyError(w, err)
		return
	}

	switch result.Status {
	case verifier.StatusAlreadyUsed:
		h.logScan("already_used", fmt.Sprint(result.Info.ReservationID), "duplicate presentation rejected")
		h.writeJSON(w, http.StatusConflict, verifyResponse{
			Success:    false,
			Message:    "Billet déjà utilisé",
			UsedAt:     result.Info.UsedAt,
			TicketInfo: &result.Info,
		})
	default:
		h.logScan("accepted", fmt.Sprint(result.Info.ReservationID), "entry granted")
		h.writeJSON(w, http.StatusOK, verifyResponse{
			Success:    true,
			Message:    "Billet valide - Accès autorisé",
			TicketInfo: &result.Info,
		})
	}
}

func (h *Handler) writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, verifier.ErrInvalidToken):
		h.logWarn("SCAN", fmt.Sprintf("rejected token: %v", err))
		h.writeJSON(w, http.StatusUnauthorized, verifyResponse{
			Success: false,
			Message: "Token invalide ou expiré",
		})
	case errors.Is(err, verifier.ErrInvalidClaim):
		h.logWarn("SCAN", fmt.Sprintf("rejected claim: %v", err))
		h.writeJSON(w, http.StatusBadRequest, verifyResponse{
			Success: false,
			Message: "Données du billet incomplètes",
		})
	case errors.Is(err, verifier.ErrNotFound):
		h.logWarn("SCAN", fmt.Sprintf("unknown reservation: %v", err))
		h.writeJSON(w, http.StatusNotFound, verifyResponse{
			Success: false,
			Message: "Réservation non trouvée",
		})
	default:
		h.logError("SCAN", fmt.Sprintf("verification failed: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, verifyResponse{
			Success: false,
			Message: "Erreur interne du serveur",
		})
	}
}

func (h *Handler) ScanStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Verifier.Stats(r.Context())
	if err != nil {
		h.logError("STATS", fmt.Sprintf("failed to load scan stats: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, verifyResponse{
			Success: false,
			Message: "Erreur interne du serveur",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, statsResponse{Success: true, Stats: *stats})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logError("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

// Logger is optional so handlers can be exercised directly in tests.
func (h *Handler) logScan(verdict, reservationID, message string) {
	if h.Logger != nil {
		h.Logger.LogScan(verdict, reservationID, message)
	}
}

func (h *Handler) logWarn(category, message string) {
	if h.Logger != nil {
		h.Logger.Warn(category, message)
	}
}

func (h *Handler) logError(category, message string) {
	if h.Logger != nil {
		h.Logger.Error(category, message)
	}
}
