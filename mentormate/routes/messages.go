package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"mentormate/mentormate/config"
	"mentormate/mentormate/controllers"
	"mentormate/mentormate/middlewares"
	"mentormate/mentormate/utils/types"

	"github.com/go-chi/chi/v5"
)

func MessageRoutes(ctrl *controllers.MessagesController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		// POST /messages : run one turn
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, &types.ErrorResponse{Error: "invalid request body"})
				return
			}
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			result, err := ctrl.SendMessage(r.Context(), userID, req.Text)
			if err != nil {
				status, body := turnErrorResponse(err)
				respondError(w, status, body)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(result)
		})
		// GET /messages : full conversation history, no audio
		gr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			msgs, err := ctrl.History(r.Context(), userID)
			if err != nil {
				status, body := turnErrorResponse(err)
				respondError(w, status, body)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(msgs)
		})
	})
	return r
}

func turnErrorResponse(err error) (int, *types.ErrorResponse) {
	var turnErr *controllers.TurnError
	if !errors.As(err, &turnErr) {
		return http.StatusInternalServerError, &types.ErrorResponse{Error: "Internal Server Error", Details: err.Error()}
	}

	body := &types.ErrorResponse{UserMessage: turnErr.UserMessage}
	if turnErr.Err != nil {
		body.Details = turnErr.Err.Error()
	} else {
		body.Details = turnErr.Detail
	}

	switch turnErr.Kind {
	case controllers.ValidationFailure:
		body.Error = "text is required"
		return http.StatusBadRequest, body
	case controllers.GenerationFailure:
		body.Error = "Generation API failed"
		return http.StatusBadGateway, body
	case controllers.StorageFailure:
		body.Error = "Internal Server Error"
		return http.StatusInternalServerError, body
	default:
		body.Error = "Internal Server Error"
		return http.StatusInternalServerError, body
	}
}

func respondError(w http.ResponseWriter, status int, body *types.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
