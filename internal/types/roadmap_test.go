package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoadmap() *Roadmap {
	return &Roadmap{
		ID:    "r1",
		Topic: "Go",
		Modules: []Module{
			{ID: "m1", Title: "Basics", Subtopics: []Subtopic{{ID: "s1", Title: "Syntax"}, {ID: "s2", Title: "Types"}}},
			{ID: "m2", Title: "Concurrency", Subtopics: []Subtopic{{ID: "s3", Title: "Goroutines"}}},
		},
	}
}

func TestRoadmap_Lookup(t *testing.T) {
	r := sampleRoadmap()

	m, s := r.Subtopic("s3")
	require.NotNil(t, s)
	assert.Equal(t, "m2", m.ID)

	// pointers refer into the roadmap
	s.IsStarted = true
	assert.True(t, r.Modules[1].Subtopics[0].IsStarted)

	m, s = r.Subtopic("missing")
	assert.Nil(t, m)
	assert.Nil(t, s)

	assert.Equal(t, "Basics", r.Module("m1").Title)
	assert.Nil(t, r.Module("m9"))
}

func TestRoadmap_RefreshCompletion(t *testing.T) {
	r := sampleRoadmap()

	for i := range r.Modules {
		for j := range r.Modules[i].Subtopics {
			r.Modules[i].Subtopics[j].IsCompleted = true
		}
	}
	assert.False(t, r.RefreshCompletion(), "quizzes still pending")
	assert.False(t, r.IsCompleted)

	r.Modules[0].QuizCompleted = true
	r.Modules[1].QuizCompleted = true
	assert.True(t, r.RefreshCompletion())
	assert.True(t, r.IsCompleted)

	// completion sticks
	r.Modules[0].Subtopics[0].IsCompleted = false
	assert.False(t, r.RefreshCompletion())
	assert.True(t, r.IsCompleted)
}

func TestRoadmap_EmptyNeverCompletes(t *testing.T) {
	r := &Roadmap{ID: "empty"}
	assert.False(t, r.RefreshCompletion())
}

func TestRoadmap_Summary(t *testing.T) {
	r := sampleRoadmap()
	r.Modules[0].Subtopics[1].IsCompleted = true

	sum := r.Summary()
	assert.Equal(t, 3, sum.TotalSubtopics)
	assert.Equal(t, 1, sum.CompletedSubtopics)
	assert.Equal(t, "Go", sum.Topic)
}

func TestModule_SubtopicTitles(t *testing.T) {
	assert.Equal(t, []string{"Syntax", "Types"}, sampleRoadmap().Modules[0].SubtopicTitles())
}
