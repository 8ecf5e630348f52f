package server

import (
	"net/http"

	"github.com/jonathan/skillforge/internal/types"
)

func (s *Server) handleCreateRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.CreateRoadmapRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	roadmap, err := s.tracker.CreateRoadmap(r.Context(), userID, req.Topic)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, roadmap)
}

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	summaries, err := s.tracker.ListRoadmaps(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"roadmaps": summaries})
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	roadmap, err := s.tracker.GetRoadmap(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, roadmap)
}

func (s *Server) handleDeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.DeleteRoadmap(r.Context(), userID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
