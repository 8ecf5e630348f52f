package types

// CreateRoadmapRequest asks for a new roadmap on a topic.
type CreateRoadmapRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=200"`
}

// UpdateSubtopicRequest changes completion or time on task. TimeSpentSeconds is absolute.
type UpdateSubtopicRequest struct {
	Completed        *bool `json:"completed,omitempty"`
	TimeSpentSeconds *int  `json:"time_spent_seconds,omitempty" validate:"omitempty,min=0"`
}

// QuizResultRequest records a finished quiz.
type QuizResultRequest struct {
	Score int `json:"score" validate:"min=0,ltefield=Total"`
	Total int `json:"total" validate:"required,min=1"`
}

// ChatMessage is one turn of a tutor chat.
type ChatMessage struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

// ChatRequest sends a message to the tutor with prior turns.
type ChatRequest struct {
	History []ChatMessage `json:"history" validate:"max=50,dive"`
	Message string        `json:"message" validate:"required,max=4000"`
}

// ChatResponse is the tutor's answer.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// FeedbackResponse carries generated performance feedback.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

// Validate validates the CreateRoadmapRequest using the validator.
func (r *CreateRoadmapRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdateSubtopicRequest using the validator.
func (r *UpdateSubtopicRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the QuizResultRequest using the validator.
func (r *QuizResultRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	return validate.Struct(r)
}
