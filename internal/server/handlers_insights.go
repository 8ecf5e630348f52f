package server

import (
	"net/http"

	"github.com/jonathan/skillforge/internal/types"
)

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	text, err := s.tracker.Feedback(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.FeedbackResponse{Feedback: text})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	report, err := s.tracker.Analysis(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleCommunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	posts, err := s.tracker.CommunityThreads(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	reply, err := s.tracker.Chat(r.Context(), userID, r.PathValue("id"), req.History, req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, types.ChatResponse{Reply: reply})
}
