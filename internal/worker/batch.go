package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Asker answers one question. Satisfied by pipeline.Pipeline.
type Asker interface {
	Process(ctx context.Context, question string) (*model.Result, error)
}

// QuestionJob answers one question through the shared pipeline
type QuestionJob struct {
	Question string
	Asker    Asker
}

// Execute runs the job
func (j *QuestionJob) Execute(ctx context.Context) Result {
	result, err := j.Asker.Process(ctx, j.Question)
	return &QuestionResult{
		Question: j.Question,
		Result:   result,
		Error:    err,
	}
}

// QuestionResult is the outcome of one batch question
type QuestionResult struct {
	Question string
	Result   *model.Result
	Error    error
}

// GetError returns the error from the question result
func (r *QuestionResult) GetError() error {
	return r.Error
}

// BatchProcessor answers multiple questions concurrently over one
// pipeline instance.
type BatchProcessor struct {
	asker       Asker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(asker Asker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers the questions concurrently. Result order
// follows completion, not submission; each result names its question.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*QuestionResult {
	if len(questions) == 0 {
		return []*QuestionResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	for _, q := range questions {
		pool.Submit(&QuestionJob{Question: q, Asker: b.asker})
	}

	results := pool.Wait()

	out := make([]*QuestionResult, len(results))
	for i, r := range results {
		out[i] = r.(*QuestionResult)
	}
	return out
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QuestionResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file, one per line.
// Blank lines and #-comments are skipped; duplicates collapse.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return questions, nil
}
