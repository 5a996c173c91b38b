package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/items/internal/model"
)

// MaxNameLen matches the name column width.
const MaxNameLen = 100

const maxBody = 1 << 20

type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

type createResponse struct {
	ID   model.ID `json:"id"`
	Name string   `json:"name"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list items", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	in, err := decodeNewItem(r.Body)
	if err != nil {
		var ve validationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.msg)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	it, err := s.store.Create(r.Context(), in)
	if err != nil {
		s.logger.Error("create item", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	s.logger.Debug("item created", "id", it.ID)
	writeJSON(w, http.StatusCreated, createResponse{ID: it.ID, Name: it.Name})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existed, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("delete item", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	s.logger.Debug("item deleted", "id", id, "existed", existed)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: id})
}

func decodeNewItem(body io.Reader) (model.NewItem, error) {
	var raw struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(body, maxBody)).Decode(&raw); err != nil {
		return model.NewItem{}, fmt.Errorf("decode body: %w", err)
	}
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		return model.NewItem{}, validationError{msg: "name is required"}
	}
	if utf8.RuneCountInString(*raw.Name) > MaxNameLen {
		return model.NewItem{}, validationError{msg: fmt.Sprintf("name must be at most %d characters", MaxNameLen)}
	}
	in := model.NewItem{Name: *raw.Name}
	if raw.Description != nil {
		in.Description = *raw.Description
	}
	return in, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
