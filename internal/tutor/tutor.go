// Package tutor turns learner requests into prompts, runs them through the
// resilient generator and shapes the answers into domain documents.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/skillforge/internal/llm"
	"github.com/jonathan/skillforge/internal/prompts"
	"github.com/jonathan/skillforge/internal/schemas"
	"github.com/jonathan/skillforge/internal/types"
	"github.com/jonathan/skillforge/internal/video"
	"github.com/oklog/ulid/v2"
)

const promptFile = "tutor.json"

// DefaultFeedback is returned when the model produces no feedback text.
const DefaultFeedback = "Keep up the great work!"

// Options tunes generation sizes.
type Options struct {
	QuizQuestions int
	Flashcards    int
}

// DefaultOptions returns 5 quiz questions and 5 flashcards.
func DefaultOptions() Options {
	return Options{QuizQuestions: 5, Flashcards: 5}
}

// Service generates study material.
type Service struct {
	gen      llm.Generator
	resolver *video.Resolver
	logger   *slog.Logger
	opts     Options
	newID    func() string
}

// New creates a tutor service. A nil resolver disables video lookups.
func New(gen llm.Generator, resolver *video.Resolver, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = video.NewResolver(nil, logger)
	}
	if opts.QuizQuestions <= 0 {
		opts.QuizQuestions = DefaultOptions().QuizQuestions
	}
	if opts.Flashcards <= 0 {
		opts.Flashcards = DefaultOptions().Flashcards
	}
	return &Service{
		gen:      gen,
		resolver: resolver,
		logger:   logger,
		opts:     opts,
		newID:    func() string { return ulid.Make().String() },
	}
}

func render(key string, data map[string]string) (string, error) {
	p, err := prompts.Render(promptFile, key, data)
	if err != nil {
		return "", fmt.Errorf("failed to load %s prompt: %w", key, err)
	}
	return p, nil
}

type roadmapOutput struct {
	Modules []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Subtopics   []struct {
			Title string `json:"title"`
		} `json:"subtopics"`
	} `json:"modules"`
}

// Roadmap generates the modules of a new roadmap, with fresh IDs and no progress.
func (s *Service) Roadmap(ctx context.Context, topic string) ([]types.Module, error) {
	prompt, err := render("roadmap", map[string]string{"Topic": topic})
	if err != nil {
		return nil, err
	}

	out, err := llm.GenerateJSON[roadmapOutput](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.Roadmap),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate roadmap: %w", err)
	}

	modules := make([]types.Module, 0, len(out.Modules))
	for _, m := range out.Modules {
		mod := types.Module{
			ID:          s.newID(),
			Title:       strings.TrimSpace(m.Title),
			Description: strings.TrimSpace(m.Description),
			Subtopics:   make([]types.Subtopic, 0, len(m.Subtopics)),
		}
		for _, sub := range m.Subtopics {
			mod.Subtopics = append(mod.Subtopics, types.Subtopic{
				ID:    s.newID(),
				Title: strings.TrimSpace(sub.Title),
			})
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

type resourcesOutput struct {
	Resources []video.Suggestion `json:"resources"`
}

// Resources suggests study resources for a subtopic and resolves their links.
// Generation failures are logged and yield an empty list.
func (s *Service) Resources(ctx context.Context, topic, subtopic string) []types.Resource {
	prompt, err := render("resources", map[string]string{"Topic": topic, "Subtopic": subtopic})
	if err != nil {
		s.logger.Error("failed to build resources prompt", "error", err)
		return []types.Resource{}
	}

	out, err := llm.GenerateJSON[resourcesOutput](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.Resources),
	})
	if err != nil {
		s.logger.Warn("failed to fetch resources", "topic", topic, "subtopic", subtopic, "error", err)
		return []types.Resource{}
	}

	return s.resolver.Resolve(ctx, topic, subtopic, out.Resources)
}

type quizOutput struct {
	Questions []types.QuizQuestion `json:"questions"`
}

// Quiz generates multiple choice questions covering a module.
// Questions whose answer is not among their options are dropped.
func (s *Service) Quiz(ctx context.Context, moduleTitle string, subtopics []string) ([]types.QuizQuestion, error) {
	prompt, err := render("quiz", map[string]string{
		"Count":     strconv.Itoa(s.opts.QuizQuestions),
		"Module":    moduleTitle,
		"Subtopics": strings.Join(subtopics, ", "),
	})
	if err != nil {
		return nil, err
	}

	out, err := llm.GenerateJSON[quizOutput](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.Quiz),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	questions := make([]types.QuizQuestion, 0, len(out.Questions))
	for _, q := range out.Questions {
		if !answerInOptions(q) {
			s.logger.Warn("dropping quiz question with unknown answer", "module", moduleTitle, "question", q.Question)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Schema: schemas.Quiz, Err: fmt.Errorf("no usable questions")}
	}
	return questions, nil
}

func answerInOptions(q types.QuizQuestion) bool {
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Feedback writes a plain-text performance review.
func (s *Service) Feedback(ctx context.Context, topic string, performance []types.ModulePerformance) (string, error) {
	data, err := json.MarshalIndent(performance, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode performance data: %w", err)
	}
	prompt, err := render("feedback", map[string]string{"Topic": topic, "Performance": string(data)})
	if err != nil {
		return "", err
	}

	text, err := s.gen.Invoke(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to generate feedback: %w", err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return DefaultFeedback, nil
	}
	return text, nil
}

// Chat answers a learner message in the context of a course.
func (s *Service) Chat(ctx context.Context, topic string, history []types.ChatMessage, message string) (string, error) {
	system, err := render("chat-system", map[string]string{"Topic": topic})
	if err != nil {
		return "", err
	}

	msgs := make([]llm.Message, 0, len(history))
	for _, h := range history {
		role := llm.RoleUser
		if h.Role == string(llm.RoleModel) {
			role = llm.RoleModel
		}
		msgs = append(msgs, llm.Message{Role: role, Text: h.Text})
	}

	text, err := s.gen.Invoke(ctx, llm.Request{System: system, History: msgs, Prompt: message})
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	return strings.TrimSpace(text), nil
}

type threadsOutput struct {
	Threads []types.ForumPost `json:"threads"`
}

// CommunityThreads generates discussion starters, each with a reply.
func (s *Service) CommunityThreads(ctx context.Context, topic string) ([]types.ForumPost, error) {
	prompt, err := render("community", map[string]string{"Topic": topic})
	if err != nil {
		return nil, err
	}

	out, err := llm.GenerateJSON[threadsOutput](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.ForumThreads),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate community threads: %w", err)
	}

	posts := out.Threads
	for i := range posts {
		posts[i].ID = s.newID()
		posts[i].IsAIGenerated = true
		if posts[i].Replies == nil {
			posts[i].Replies = []types.ForumPost{}
		}
		for j := range posts[i].Replies {
			posts[i].Replies[j].ID = s.newID()
			posts[i].Replies[j].IsAIGenerated = true
			posts[i].Replies[j].Replies = []types.ForumPost{}
		}
	}
	if posts == nil {
		posts = []types.ForumPost{}
	}
	return posts, nil
}

// Analysis produces a study report from per-subtopic activity.
func (s *Service) Analysis(ctx context.Context, topic string, activity []types.SubtopicActivity) (*types.AnalyticsReport, error) {
	data, err := json.Marshal(activity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity: %w", err)
	}
	prompt, err := render("analysis", map[string]string{"Topic": topic, "Activity": string(data)})
	if err != nil {
		return nil, err
	}

	report, err := llm.GenerateJSON[types.AnalyticsReport](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.Analysis),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}
	return &report, nil
}

type flashcardsOutput struct {
	Flashcards []types.Flashcard `json:"flashcards"`
}

// Flashcards generates study cards for a subtopic.
func (s *Service) Flashcards(ctx context.Context, topic, subtopic string) ([]types.Flashcard, error) {
	prompt, err := render("flashcards", map[string]string{
		"Count":    strconv.Itoa(s.opts.Flashcards),
		"Subtopic": subtopic,
		"Topic":    topic,
	})
	if err != nil {
		return nil, err
	}

	out, err := llm.GenerateJSON[flashcardsOutput](ctx, s.gen, llm.Request{
		Prompt: prompt,
		Schema: schemas.MustGet(schemas.Flashcards),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate flashcards: %w", err)
	}
	if out.Flashcards == nil {
		return []types.Flashcard{}, nil
	}
	return out.Flashcards, nil
}
