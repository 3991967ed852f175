package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"heimdall/internal/alert"
)

func (s *Server) alertRoutes(r chi.Router) {
	r.Route("/drone-alerts", func(r chi.Router) {
		r.Get("/", s.listAlerts)
		r.Post("/", s.createAlert)
		r.Get("/{id}", s.getAlert)
		r.Patch("/{id}", s.updateAlert)
	})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := alert.Filter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Threat: q.Get("threat"),
	}
	writeJSON(w, http.StatusOK, s.alerts.List(f))
}

func (s *Server) writeAlertError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var verr *alert.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)
	case errors.Is(err, alert.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Drone alert not found")
	case errors.Is(err, alert.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, r, msg, err)
	}
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	var in alert.Input
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.alerts.Create(in)
	if err != nil {
		s.writeAlertError(w, r, "Failed to create drone alert", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	a, err := s.alerts.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeAlertError(w, r, "Failed to fetch drone alert", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) updateAlert(w http.ResponseWriter, r *http.Request) {
	var u alert.Update
	if err := decodeJSON(r, &u); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.alerts.Update(chi.URLParam(r, "id"), u)
	if err != nil {
		s.writeAlertError(w, r, "Failed to update drone alert", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
