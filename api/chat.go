package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/hikelog/internal/assistant"
	"github.com/garnizeh/hikelog/pkg/models"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// AskHandler sends a question to the assistant and records both sides of the
// exchange in the local history.
func (d *Deps) AskHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	if _, err := d.Chats.SaveChatMessage(r.Context(), &models.ChatMessage{
		UserID:    userID,
		Message:   req.Question,
		FromUser:  true,
		CreatedAt: models.Timestamp(),
	}); err != nil {
		logger.Error("save chat message", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	answer, err := d.Assistant.Ask(r.Context(), userID, req.Question)
	if err != nil {
		if errors.Is(err, assistant.ErrCircuitOpen) {
			http.Error(w, "assistant temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		logger.Error("ask assistant", slog.Any("err", err))
		http.Error(w, "assistant unavailable", http.StatusBadGateway)
		return
	}

	if _, err := d.Chats.SaveChatMessage(r.Context(), &models.ChatMessage{
		UserID:    userID,
		Message:   answer,
		FromUser:  false,
		CreatedAt: models.Timestamp(),
	}); err != nil {
		logger.Error("save chat answer", slog.Any("err", err))
	}

	writeJSON(w, askResponse{Answer: answer}, http.StatusOK)
}

func (d *Deps) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	msgs, err := d.Chats.ListChatMessages(r.Context(), userID)
	if err != nil {
		logger.Error("list chat messages", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, msgs, http.StatusOK)
}

func (d *Deps) ClearChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := d.Chats.ClearChatHistory(r.Context(), userID); err != nil {
		logger.Error("clear chat history", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (d *Deps) ReportHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := d.Reports.UserStats(r.Context(), userID)
	if err != nil {
		logger.Error("user stats", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}
