package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Pasiduchamod/QBox-Backend/internal/handlers"
	question_handler "github.com/Pasiduchamod/QBox-Backend/internal/handlers/question-handler"
	"github.com/Pasiduchamod/QBox-Backend/internal/middleware"
	"github.com/Pasiduchamod/QBox-Backend/internal/websocket"
	"github.com/Pasiduchamod/QBox-Backend/state"
)

func QuestionRouter(r chi.Router, state *state.AppState, wsHub *websocket.Hub) {
	questionHandler := question_handler.NewQuestionHandler(state, wsHub)

	// listing is shared: lecturers pass a Bearer token, participants a
	// voter token; the service applies the matching view
	r.Group(func(shared chi.Router) {
		shared.Use(middleware.JWTAuthOptional(state.JwtSecret.Public))
		shared.Get("/api/v1/rooms/{roomId}/questions", handlers.WrapHandler(questionHandler.ListQuestions))
	})

	// anonymous participants
	r.Group(func(voter chi.Router) {
		voter.Use(middleware.WithVoterToken)
		voter.Post("/api/v1/rooms/{roomId}/questions", handlers.WrapHandler(questionHandler.SubmitQuestion))
		voter.Patch("/api/v1/questions/{questionId}/upvote", handlers.WrapHandler(questionHandler.ToggleUpvote))
		voter.Patch("/api/v1/questions/{questionId}/report", handlers.WrapHandler(questionHandler.ReportQuestion))
	})

	// lecturers
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public))
		protected.Patch("/api/v1/questions/{questionId}/approve", handlers.WrapHandler(questionHandler.ApproveQuestion))
		protected.Patch("/api/v1/questions/{questionId}/answer", handlers.WrapHandler(questionHandler.MarkAnswered))
		protected.Patch("/api/v1/questions/{questionId}/reject", handlers.WrapHandler(questionHandler.RejectQuestion))
		protected.Delete("/api/v1/questions/{questionId}", handlers.WrapHandler(questionHandler.RemoveQuestion))
	})
}
