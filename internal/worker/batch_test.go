package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// mockAsker answers every question with a canned result
type mockAsker struct {
	mu          sync.Mutex
	calls       int
	shouldError bool
}

func (m *mockAsker) Process(ctx context.Context, q string) (*model.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	if m.shouldError {
		return nil, errors.New("endpoint unreachable")
	}
	return &model.Result{Summary: "answered: " + q}, nil
}

func TestBatchProcessQuestions(t *testing.T) {
	asker := &mockAsker{}
	processor := NewBatchProcessor(asker, 2)

	questions := []string{
		"What papers cite AlexNet?",
		"Who wrote ResNet50?",
		"What is CRISPR?",
	}
	results := processor.ProcessQuestions(context.Background(), questions)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("unexpected error for %q: %v", r.Question, r.Error)
		}
		if r.Result == nil || r.Result.Summary == "" {
			t.Errorf("missing result for %q", r.Question)
		}
	}
	if asker.calls != 3 {
		t.Errorf("expected 3 pipeline calls, got %d", asker.calls)
	}
}

func TestBatchProcessQuestionsErrors(t *testing.T) {
	asker := &mockAsker{shouldError: true}
	processor := NewBatchProcessor(asker, 2)

	results := processor.ProcessQuestions(context.Background(), []string{"q1", "q2"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.GetError() == nil {
			t.Errorf("expected error for %q", r.Question)
		}
	}
}

func TestBatchProcessEmpty(t *testing.T) {
	processor := NewBatchProcessor(&mockAsker{}, 2)
	results := processor.ProcessQuestions(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadQuestionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	content := `# batch of questions
What papers cite AlexNet?

Who wrote ResNet50?
What papers cite AlexNet?
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	questions, err := ReadQuestionsFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 unique questions, got %d: %v", len(questions), questions)
	}
	if questions[0] != "What papers cite AlexNet?" || questions[1] != "Who wrote ResNet50?" {
		t.Errorf("unexpected questions: %v", questions)
	}
}

func TestReadQuestionsFromMissingFile(t *testing.T) {
	if _, err := ReadQuestionsFromFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	if err := os.WriteFile(path, []byte("What is CRISPR?\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	processor := NewBatchProcessor(&mockAsker{}, 1)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Question != "What is CRISPR?" {
		t.Errorf("unexpected results: %+v", results)
	}
}
