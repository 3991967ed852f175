package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"heimdall/internal/camera"
	"heimdall/internal/coverage"
	"heimdall/internal/geo"
	"heimdall/internal/monitor"
)

func (s *Server) coverageRoutes(r chi.Router) {
	r.Get("/perimeter", s.getPerimeter)
	r.Put("/perimeter", s.putPerimeter)
	r.Get("/coverage", s.getCoverage)
	r.Post("/coverage/analyze", s.analyzeCoverage)
}

type perimeterResponse struct {
	Points           []geo.Point `json:"points"`
	Closed           bool        `json:"closed"`
	LengthMeters     float64     `json:"lengthMeters,omitempty"`
	AreaSquareMeters float64     `json:"areaSquareMeters,omitempty"`
	Centroid         *geo.Point  `json:"centroid,omitempty"`
}

type perimeterRequest struct {
	Points []geo.Point `json:"points"`
}

func (s *Server) perimeterView() perimeterResponse {
	resp := perimeterResponse{Points: s.monitor.Perimeter()}
	if poly := s.monitor.Polygon(); poly != nil {
		c := poly.Centroid()
		resp.Closed = true
		resp.LengthMeters = poly.LengthMeters()
		resp.AreaSquareMeters = poly.AreaSquareMeters()
		resp.Centroid = &c
	}
	return resp
}

func (s *Server) getPerimeter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.perimeterView())
}

func (s *Server) putPerimeter(w http.ResponseWriter, r *http.Request) {
	var req perimeterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.monitor.SetPerimeter(req.Points); err != nil {
		if errors.Is(err, monitor.ErrInvalidPerimeter) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, r, "Failed to update perimeter", err)
		return
	}
	s.refresh(r)
	writeJSON(w, http.StatusOK, s.perimeterView())
}

func (s *Server) getCoverage(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Latest()
	if !ok {
		var err error
		if snap, err = s.monitor.Refresh(r.Context()); err != nil {
			s.internalError(w, r, "Failed to compute coverage", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, snap)
}

// analyzeRequest is a what-if analysis. Omitted parts default to the live
// perimeter and camera registry.
type analyzeRequest struct {
	Perimeter []geo.Point    `json:"perimeter"`
	Cameras   []camera.Input `json:"cameras"`
}

func (s *Server) analyzeCoverage(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()

	perimeter := req.Perimeter
	if perimeter == nil {
		perimeter = s.monitor.Perimeter()
	}

	var cams []camera.Camera
	if req.Cameras == nil {
		var err error
		if cams, err = s.cameras.List(ctx); err != nil {
			s.internalError(w, r, "Failed to fetch cameras", err)
			return
		}
	} else {
		scratch := camera.NewMemoryRegistry()
		seeded, err := camera.Seed(ctx, scratch, req.Cameras)
		if err != nil {
			var verr *camera.ValidationError
			if errors.As(err, &verr) {
				writeValidation(w, verr.Fields)
				return
			}
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		cams = seeded
	}

	report, err := coverage.AnalyzeConcurrent(ctx, perimeter, camera.Sensors(cams), s.workers)
	if err != nil {
		s.internalError(w, r, "Failed to analyze coverage", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
