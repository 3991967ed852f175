package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"heimdall/internal/camera"
	"heimdall/internal/feed"
)

// cameraView is a camera as returned to clients. The feed password is never
// echoed back.
type cameraView struct {
	camera.Camera
	HasFeedPassword bool `json:"hasFeedPassword"`
}

func viewOf(c camera.Camera) cameraView {
	has := c.FeedPassword != ""
	c.FeedPassword = ""
	return cameraView{Camera: c, HasFeedPassword: has}
}

func (s *Server) cameraRoutes(r chi.Router) {
	r.Route("/cameras", func(r chi.Router) {
		r.Get("/", s.listCameras)
		r.Post("/", s.createCamera)
		r.Get("/{id}", s.getCamera)
		r.Patch("/{id}", s.updateCamera)
		r.Delete("/{id}", s.deleteCamera)
		// id is the cameraId string on this route.
		r.Post("/{id}/detection", s.recordDetection)
		r.Get("/{id}/feed", s.getFeed)
		r.Post("/{id}/feed", s.controlFeed)
	})
}

func (s *Server) listCameras(w http.ResponseWriter, r *http.Request) {
	cams, err := s.cameras.List(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to fetch cameras", err)
		return
	}
	out := make([]cameraView, 0, len(cams))
	for _, c := range cams {
		out = append(out, viewOf(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// cameraFromPath resolves the numeric {id} path parameter. It writes the
// error response and returns false when the camera cannot be loaded.
func (s *Server) cameraFromPath(w http.ResponseWriter, r *http.Request) (camera.Camera, bool) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid camera ID")
		return camera.Camera{}, false
	}
	c, err := s.cameras.Get(r.Context(), id)
	if errors.Is(err, camera.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Camera not found")
		return camera.Camera{}, false
	}
	if err != nil {
		s.internalError(w, r, "Failed to fetch camera", err)
		return camera.Camera{}, false
	}
	return c, true
}

func (s *Server) getCamera(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cameraFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// writeCameraError maps registry write errors to responses.
func (s *Server) writeCameraError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var verr *camera.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)
	case errors.Is(err, camera.ErrDuplicateCameraID):
		writeMessage(w, http.StatusConflict, "Camera ID already exists")
	case errors.Is(err, camera.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Camera not found")
	default:
		s.internalError(w, r, msg, err)
	}
}

func (s *Server) createCamera(w http.ResponseWriter, r *http.Request) {
	var in camera.Input
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.cameras.Create(r.Context(), in)
	if err != nil {
		s.writeCameraError(w, r, "Failed to create camera", err)
		return
	}
	s.refresh(r)
	writeJSON(w, http.StatusCreated, viewOf(c))
}

func (s *Server) updateCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid camera ID")
		return
	}
	var in camera.Input
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.cameras.Update(r.Context(), id, in)
	if err != nil {
		s.writeCameraError(w, r, "Failed to update camera", err)
		return
	}
	s.refresh(r)
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Server) deleteCamera(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cameraFromPath(w, r)
	if !ok {
		return
	}
	if err := s.cameras.Delete(r.Context(), c.ID); err != nil {
		s.writeCameraError(w, r, "Failed to delete camera", err)
		return
	}
	s.feeds.Forget(c.CameraID)
	s.refresh(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recordDetection(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "id")
	err := s.cameras.RecordDetection(r.Context(), cameraID, s.now())
	if errors.Is(err, camera.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Camera not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "Failed to update detection time", err)
		return
	}
	writeMessage(w, http.StatusOK, "Detection time updated")
}

func feedSource(c camera.Camera) feed.Source {
	return feed.Source{
		CameraID:  c.CameraID,
		URL:       c.FeedURL,
		Username:  c.FeedUsername,
		Protected: c.FeedPassword != "",
	}
}

func (s *Server) writeFeedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrNoFeed):
		writeMessage(w, http.StatusNotFound, "Camera has no feed configured")
	case errors.Is(err, feed.ErrUnknownCommand):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.internalError(w, r, "Failed to control feed", err)
	}
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cameraFromPath(w, r)
	if !ok {
		return
	}
	snap, err := s.feeds.Get(feedSource(c))
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type feedCommandRequest struct {
	Command feed.Command `json:"command"`
}

func (s *Server) controlFeed(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cameraFromPath(w, r)
	if !ok {
		return
	}
	var req feedCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.feeds.Apply(feedSource(c), req.Command)
	if err != nil {
		s.writeFeedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
