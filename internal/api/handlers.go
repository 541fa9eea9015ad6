package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"amparo/internal/contacts"
	"amparo/internal/middleware"
	"amparo/pkg/models"
)

// statusClientClosedRequest segue a convenção do nginx para requisições
// abortadas pelo próprio cliente.
const statusClientClosedRequest = 499

// AlertService é a fatia do motor de alertas consumida pelos handlers.
type AlertService interface {
	Send(ctx context.Context, userID string, intent models.AlertIntent) (*models.Alert, error)
	History(ctx context.Context, userID string) ([]models.Alert, error)
	Get(ctx context.Context, userID, alertID string) (*models.Alert, error)
}

// ContactService é a fatia do diretório de contatos consumida pelos handlers.
type ContactService interface {
	Create(ctx context.Context, ownerID string, input contacts.CreateInput) (*models.Contact, error)
	List(ctx context.Context, ownerID string) ([]models.Contact, error)
	Update(ctx context.Context, ownerID string, id int64, input contacts.UpdateInput) (*models.Contact, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	Toggle(ctx context.Context, ownerID string, id int64) (*models.Contact, error)
}

// AlertStreamer aceita conexões websocket de um usuário autenticado.
type AlertStreamer interface {
	HandleWebSocket(userID string, w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	alerts   AlertService
	contacts ContactService
	streamer AlertStreamer
}

func NewHandler(alerts AlertService, contacts ContactService, streamer AlertStreamer) *Handler {
	return &Handler{
		alerts:   alerts,
		contacts: contacts,
		streamer: streamer,
	}
}

// Register monta as rotas autenticadas do subsistema de alertas.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/emergency-alerts", h.CreateAlert).Methods("POST")
	r.HandleFunc("/emergency-alerts", h.ListAlerts).Methods("GET")
	r.HandleFunc("/emergency-alerts/{id}", h.GetAlert).Methods("GET")

	r.HandleFunc("/emergency-contacts", h.CreateContact).Methods("POST")
	r.HandleFunc("/emergency-contacts", h.ListContacts).Methods("GET")
	r.HandleFunc("/emergency-contacts/{id}", h.UpdateContact).Methods("PATCH")
	r.HandleFunc("/emergency-contacts/{id}", h.DeleteContact).Methods("DELETE")
	r.HandleFunc("/emergency-contacts/{id}/toggle", h.ToggleContact).Methods("PATCH")
}

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var intent models.AlertIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	alert, err := h.alerts.Send(r.Context(), userID, intent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	alertas, err := h.alerts.History(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alertas)
}

func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	alertID := mux.Vars(r)["id"]

	alert, err := h.alerts.Get(r.Context(), userID, alertID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var input contacts.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	contato, err := h.contacts.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contato)
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	contatos, err := h.contacts.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if contatos == nil {
		contatos = []models.Contact{}
	}

	writeJSON(w, http.StatusOK, contatos)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var input contacts.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	contato, err := h.contacts.Update(r.Context(), userID, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contato)
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	if err := h.contacts.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleContact(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contato, err := h.contacts.Toggle(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contato)
}

// HandleAlertStream conecta o usuário autenticado ao stream de alertas.
func (h *Handler) HandleAlertStream(w http.ResponseWriter, r *http.Request) {
	if h.streamer == nil {
		writeError(w, http.StatusNotImplemented, "Stream de alertas indisponível")
		return
	}
	h.streamer.HandleWebSocket(middleware.UserID(r), w, r)
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID de contato inválido")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "Não encontrado")
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrCancelled):
		writeError(w, statusClientClosedRequest, "Operação cancelada pelo cliente")
	default:
		log.Printf("❌ Erro interno: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro interno")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
