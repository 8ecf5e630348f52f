package types

// ForumPost is a generated community discussion post.
type ForumPost struct {
	ID            string      `json:"id"`
	Author        string      `json:"author"`
	Avatar        string      `json:"avatar"`
	Content       string      `json:"content"`
	Likes         int         `json:"likes"`
	Replies       []ForumPost `json:"replies"`
	IsAIGenerated bool        `json:"isAiGenerated"`
}

// AnalyticsReport is the deep analysis of a learner's study data.
type AnalyticsReport struct {
	StruggleAreas       []string `json:"struggleAreas"`
	StrongAreas         []string `json:"strongAreas"`
	Recommendations     string   `json:"recommendations"`
	PredictedChallenges string   `json:"predictedChallenges"`
}

// SubtopicTime is the time spent on one subtopic.
type SubtopicTime struct {
	Title string `json:"title"`
	Time  int    `json:"time"`
}

// ModulePerformance is the per-module input to performance feedback.
type ModulePerformance struct {
	Module    string         `json:"module"`
	QuizScore int            `json:"quizScore"`
	QuizTotal int            `json:"quizTotal"`
	Subtopics []SubtopicTime `json:"subtopics"`
}

// SubtopicActivity is the per-subtopic input to deep analysis.
type SubtopicActivity struct {
	Title     string `json:"title"`
	Time      int    `json:"time"`
	Completed bool   `json:"completed"`
}
