package server

import (
	"net/http"
	"strconv"

	"art-trainer/internal/db"
)

type uploadDrawingRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type renameDrawingRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func drawingToView(drawing db.Drawing) drawingView {
	return drawingView{
		ID:       drawing.ID,
		Name:     drawing.Name,
		ImageURL: drawing.ImageURL,
		UserID:   drawing.UserID,
	}
}

func (s *Server) handleMyDrawings(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	drawings, err := s.store.DrawingsByUser(user.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	views := make([]drawingView, 0, len(drawings))
	for _, drawing := range drawings {
		views = append(views, drawingToView(drawing))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUploadDrawing(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req uploadDrawingRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, err := validateText("name", req.Name, maxNameLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	imageURL, err := validateText("image_url", req.ImageURL, maxImageURLLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	drawing, err := s.store.CreateDrawing(user.ID, name, imageURL)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, drawingToView(*drawing))
}

func (s *Server) handleRenameDrawing(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req renameDrawingRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, err := validateText("name", req.Name, maxNameLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	drawing, err := s.store.RenameDrawing(user.ID, req.ID, name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawingToView(*drawing))
}

func (s *Server) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	drawingID, err := parseIDPathValue(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteDrawing(user.ID, drawingID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Drawing deleted",
	})
}

func parseIDPathValue(r *http.Request) (uint, error) {
	value, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
