package types

import "time"

// ResourceType is the kind of a learning resource.
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceArticle ResourceType = "article"
	ResourceDoc     ResourceType = "doc"
)

// Resource is a link to external study material.
type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// Flashcard is a question/answer study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizQuestion is a multiple choice question with four options.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Subtopic is the smallest unit of study in a roadmap.
type Subtopic struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	IsCompleted      bool        `json:"isCompleted"`
	IsStarted        bool        `json:"isStarted"`
	TimeSpentSeconds int         `json:"timeSpentSeconds"`
	Resources        []Resource  `json:"resources,omitempty"`
	Flashcards       []Flashcard `json:"flashcards,omitempty"`
	LastSessionDate  *time.Time  `json:"lastSessionDate,omitempty"`
	// CompletionRewarded survives un-completing so points are paid once.
	CompletionRewarded bool `json:"completionRewarded,omitempty"`
}

// Module groups subtopics and ends with a quiz.
type Module struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Subtopics          []Subtopic `json:"subtopics"`
	QuizCompleted      bool       `json:"quizCompleted"`
	QuizScore          *int       `json:"quizScore,omitempty"`
	QuizTotalQuestions *int       `json:"quizTotalQuestions,omitempty"`
}

// Roadmap is a user's generated study plan for one topic.
type Roadmap struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	CreatedAt   time.Time `json:"createdAt"`
	Modules     []Module  `json:"modules"`
	IsCompleted bool      `json:"isCompleted"`
	Feedback    string    `json:"feedback,omitempty"`
}

// RoadmapSummary is the list view of a roadmap.
type RoadmapSummary struct {
	ID                 string    `json:"id"`
	Topic              string    `json:"topic"`
	CreatedAt          time.Time `json:"createdAt"`
	IsCompleted        bool      `json:"isCompleted"`
	TotalSubtopics     int       `json:"totalSubtopics"`
	CompletedSubtopics int       `json:"completedSubtopics"`
}

// Summary returns the list view of r.
func (r *Roadmap) Summary() RoadmapSummary {
	total, done := r.SubtopicCounts()
	return RoadmapSummary{
		ID:                 r.ID,
		Topic:              r.Topic,
		CreatedAt:          r.CreatedAt,
		IsCompleted:        r.IsCompleted,
		TotalSubtopics:     total,
		CompletedSubtopics: done,
	}
}

// Module returns a pointer to the module with the given ID, or nil.
func (r *Roadmap) Module(id string) *Module {
	for i := range r.Modules {
		if r.Modules[i].ID == id {
			return &r.Modules[i]
		}
	}
	return nil
}

// Subtopic returns pointers to the subtopic with the given ID and its module, or nils.
func (r *Roadmap) Subtopic(id string) (*Module, *Subtopic) {
	for i := range r.Modules {
		m := &r.Modules[i]
		for j := range m.Subtopics {
			if m.Subtopics[j].ID == id {
				return m, &m.Subtopics[j]
			}
		}
	}
	return nil, nil
}

// SubtopicCounts returns the total and completed subtopic counts.
func (r *Roadmap) SubtopicCounts() (total, completed int) {
	for _, m := range r.Modules {
		for _, s := range m.Subtopics {
			total++
			if s.IsCompleted {
				completed++
			}
		}
	}
	return total, completed
}

// AllSubtopicsCompleted reports whether every subtopic is completed.
func (r *Roadmap) AllSubtopicsCompleted() bool {
	total, completed := r.SubtopicCounts()
	return total > 0 && total == completed
}

// AllQuizzesCompleted reports whether every module quiz has been passed.
func (r *Roadmap) AllQuizzesCompleted() bool {
	if len(r.Modules) == 0 {
		return false
	}
	for _, m := range r.Modules {
		if !m.QuizCompleted {
			return false
		}
	}
	return true
}

// RefreshCompletion marks the roadmap completed once every subtopic and
// every quiz is done. A completed roadmap stays completed. It reports
// whether the flag changed.
func (r *Roadmap) RefreshCompletion() bool {
	if r.IsCompleted {
		return false
	}
	if r.AllSubtopicsCompleted() && r.AllQuizzesCompleted() {
		r.IsCompleted = true
		return true
	}
	return false
}

// SubtopicTitles returns the titles of a module's subtopics.
func (m *Module) SubtopicTitles() []string {
	titles := make([]string, 0, len(m.Subtopics))
	for _, s := range m.Subtopics {
		titles = append(titles, s.Title)
	}
	return titles
}
