package service

import (
	"amiai/internal/model"
	"errors"
	"math/rand"
	"sync"
)

// ErrNoQuestions is returned when the catalog itself is empty
var ErrNoQuestions = errors.New("question catalog is empty")

// QuestionService is the immutable in-memory trivia catalog. It tracks
// recently served ids so consecutive games do not repeat themselves.
type QuestionService struct {
	mu        sync.Mutex
	questions []model.Question
	used      map[string]struct{}
	rng       *rand.Rand
}

// NewQuestionService creates the catalog with the built-in prompts
func NewQuestionService(rng *rand.Rand) *QuestionService {
	return &QuestionService{
		questions: defaultQuestions,
		used:      make(map[string]struct{}),
		rng:       rng,
	}
}

// Draw returns a random question not in exclude and not recently served.
// When every question is exhausted the used set is cleared and the draw
// retried once against the full catalog, so Draw always terminates.
func (s *QuestionService) Draw(exclude []string) (model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return model.Question{}, ErrNoQuestions
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	eligible := s.eligible(excluded)
	if len(eligible) == 0 {
		s.used = make(map[string]struct{})
		eligible = s.eligible(excluded)
		if len(eligible) == 0 {
			// exclude list covers the whole catalog; serve from it anyway
			eligible = s.questions
		}
	}

	q := eligible[s.rng.Intn(len(eligible))]
	s.used[q.ID] = struct{}{}
	return q, nil
}

func (s *QuestionService) eligible(excluded map[string]struct{}) []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if _, ok := s.used[q.ID]; ok {
			continue
		}
		if _, ok := excluded[q.ID]; ok {
			continue
		}
		out = append(out, q)
	}
	return out
}

// ByID looks up a question in the catalog
func (s *QuestionService) ByID(id string) (model.Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// ByCategory returns all questions in a category
func (s *QuestionService) ByCategory(category string) []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// ByDifficulty returns all questions of a difficulty
func (s *QuestionService) ByDifficulty(d model.Difficulty) []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out
}

// ResetUsed clears the recently-served markers
func (s *QuestionService) ResetUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used = make(map[string]struct{})
}

var defaultQuestions = []model.Question{
	{ID: "1", Content: "你对加班怎么看？", Category: "work", Difficulty: model.DifficultyEasy},
	{ID: "2", Content: "如果可以穿越到任何时代，你会选择哪里？为什么？", Category: "philosophy", Difficulty: model.DifficultyMedium},
	{ID: "3", Content: "你觉得AI会取代人类的工作吗？", Category: "technology", Difficulty: model.DifficultyMedium},
	{ID: "4", Content: "早睡早起和晚睡晚起，哪个更健康？", Category: "life", Difficulty: model.DifficultyEasy},
	{ID: "5", Content: "人类是否有真正的自由意志？", Category: "philosophy", Difficulty: model.DifficultyHard},
	{ID: "6", Content: "你更喜欢猫还是狗？为什么？", Category: "life", Difficulty: model.DifficultyEasy},
	{ID: "7", Content: "如果有机会移民火星，你会去吗？", Category: "science", Difficulty: model.DifficultyMedium},
	{ID: "8", Content: "社交媒体让人更亲近还是更疏远？", Category: "society", Difficulty: model.DifficultyMedium},
	{ID: "9", Content: "你相信命运吗？", Category: "philosophy", Difficulty: model.DifficultyMedium},
	{ID: "10", Content: "如果今天是你生命的最后一天，你会做什么？", Category: "life", Difficulty: model.DifficultyHard},
	{ID: "11", Content: "远程工作好还是办公室工作好？", Category: "work", Difficulty: model.DifficultyEasy},
	{ID: "12", Content: "你觉得教育的本质是什么？", Category: "education", Difficulty: model.DifficultyHard},
	{ID: "13", Content: "钱能买到幸福吗？", Category: "philosophy", Difficulty: model.DifficultyMedium},
	{ID: "14", Content: "你会选择延长寿命还是提高生活质量？", Category: "life", Difficulty: model.DifficultyHard},
	{ID: "15", Content: "如果可以拥有一项超能力，你会选什么？", Category: "fun", Difficulty: model.DifficultyEasy},
	{ID: "16", Content: "艺术的价值是什么？", Category: "art", Difficulty: model.DifficultyHard},
	{ID: "17", Content: "你更看重过程还是结果？", Category: "philosophy", Difficulty: model.DifficultyMedium},
	{ID: "18", Content: "科技发展是让生活更好还是更糟？", Category: "technology", Difficulty: model.DifficultyMedium},
	{ID: "19", Content: "你觉得外星生命存在吗？", Category: "science", Difficulty: model.DifficultyEasy},
	{ID: "20", Content: "如果可以知道未来，你想知道吗？", Category: "philosophy", Difficulty: model.DifficultyHard},
}
