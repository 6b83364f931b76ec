package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) getSetting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Settings.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) getSettingByName(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings.GetSettingByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// updateSettings takes a JSON object of setting name to value (string or
// null). Unknown names are ignored.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]*string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: settings must be an object of string values", errBadRequest))
		return
	}
	settings, err := h.svc.Settings.Update(r.Context(), values)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
