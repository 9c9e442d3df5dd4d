package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/collector/service"
	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// DirectoryProvider Описываем, что нам нужно от сервиса справочника
type DirectoryProvider interface {
	CreateActor(ctx context.Context, a domain.Actor) (*domain.Actor, error)
	ListActors(ctx context.Context, nickname string) ([]domain.Actor, error)
}

type UsersHandler struct {
	service DirectoryProvider
}

func NewUsersHandler(s DirectoryProvider) *UsersHandler {
	return &UsersHandler{service: s}
}

// Create обрабатывает POST /users/ — регистрацию пользователя.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.Actor
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateActor(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNicknameTaken) {
			http.Error(w, "nickname already taken", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(created)
}

// List обрабатывает GET /users/ с необязательным ?nickname= для точного поиска.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actors, err := h.service.ListActors(r.Context(), r.URL.Query().Get("nickname"))
	if err != nil {
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actors)
}
