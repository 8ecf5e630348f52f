package server

import (
	"net/http"

	"github.com/jonathan/skillforge/internal/tracker"
	"github.com/jonathan/skillforge/internal/types"
)

func (s *Server) handleStartSubtopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	update, err := s.tracker.StartSubtopic(r.Context(), userID, r.PathValue("id"), r.PathValue("sub"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, update)
}

func (s *Server) handleUpdateSubtopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.UpdateSubtopicRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Completed == nil && req.TimeSpentSeconds == nil {
		s.fail(w, r, &ErrValidation{Field: "body", Message: "nothing to update"})
		return
	}

	update, err := s.tracker.UpdateSubtopic(r.Context(), userID, r.PathValue("id"), r.PathValue("sub"), tracker.SubtopicUpdate{
		Completed:        req.Completed,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, update)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	resources, err := s.tracker.LoadResources(r.Context(), userID, r.PathValue("id"), r.PathValue("sub"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"resources": resources})
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	cards, err := s.tracker.Flashcards(r.Context(), userID, r.PathValue("id"), r.PathValue("sub"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"flashcards": cards})
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	questions, err := s.tracker.GenerateQuiz(r.Context(), userID, r.PathValue("id"), r.PathValue("mod"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.QuizResultRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.tracker.SubmitQuiz(r.Context(), userID, r.PathValue("id"), r.PathValue("mod"), req.Score, req.Total)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
