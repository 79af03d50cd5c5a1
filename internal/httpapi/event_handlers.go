package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sparkbytes.org/internal/audit"
	"sparkbytes.org/internal/event"
)

type eventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

func (req eventRequest) toEvent() event.Event {
	return event.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
	}
}

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEvents(w, r)
	case http.MethodPost:
		a.createEvent(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/events/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "event not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getEvent(w, r, id)
	case http.MethodPut:
		a.updateEvent(w, r, id)
	case http.MethodDelete:
		a.deleteEvent(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := a.events.List(r.Context())
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	e := req.toEvent()
	if err := event.Validate(e); err != nil {
		handleEventError(w, r, err)
		return
	}

	// Pre-check keeps the common duplicate case cheap; the store's unique
	// constraint still decides under concurrent creates.
	if _, err := a.events.GetByName(r.Context(), e.Name); err == nil {
		writeError(w, r, http.StatusConflict, "event already exists")
		return
	} else if !errors.Is(err, event.ErrNotFound) {
		handleEventError(w, r, err)
		return
	}

	created, err := a.events.Create(r.Context(), e)
	if err != nil {
		handleEventError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "event.create", map[string]any{
		"event_id": created.ID,
		"name":     created.Name,
	})

	w.Header().Set("Location", "/v1/events/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, id int64) {
	e, err := a.events.Get(r.Context(), id)
	if err != nil {
		handleEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request, id int64) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := a.events.Update(r.Context(), id, req.toEvent())
	if err != nil {
		handleEventError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "event.update", map[string]any{
		"event_id": id,
	})

	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request, id int64) {
	if err := a.events.Delete(r.Context(), id); err != nil {
		handleEventError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "event.delete", map[string]any{
		"event_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}

func handleEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, event.ErrInvalidInput):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, event.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "event already exists")
	case errors.Is(err, event.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "event not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
