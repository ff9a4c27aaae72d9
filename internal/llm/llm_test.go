package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

func sampleFindings() []model.Finding {
	return []model.Finding{
		{Description: "VGGNet cites AlexNet", Confidence: 0.9, Rank: 1,
			Bindings: []model.RawBinding{{Vars: map[string]string{"np": "https://w3id.org/np/abc"}}}},
		{Description: "ResNet cites AlexNet", Confidence: 0.7, Rank: 2},
	}
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Error("empty provider name should disable narration")
	}
}

func TestNewProviderUnknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "cortex"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProviderOpenAIRequiresKey(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestBuildPromptContainsFindingsAndAllowlist(t *testing.T) {
	prompt := BuildPrompt("What papers cite AlexNet?", sampleFindings(), []string{"https://w3id.org/np/abc"})
	if !strings.Contains(prompt, "What papers cite AlexNet?") {
		t.Error("prompt should contain the question")
	}
	if !strings.Contains(prompt, "VGGNet cites AlexNet") {
		t.Error("prompt should contain finding descriptions")
	}
	if !strings.Contains(prompt, "https://w3id.org/np/abc") {
		t.Error("prompt should list allowed IRIs")
	}
}

func TestVerifyCitationsRejectsLeak(t *testing.T) {
	err := verifyCitations([]string{"https://evil.example/x"}, []string{"https://w3id.org/np/abc"})
	if err == nil {
		t.Fatal("expected citation leak error")
	}
	if !strings.Contains(err.Error(), "citation leak") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtractIRIs(t *testing.T) {
	text := "See https://w3id.org/np/abc. Also https://w3id.org/np/abc, and https://doi.org/10.1/x!"
	iris := extractIRIs(text)
	if len(iris) != 2 {
		t.Fatalf("expected 2 unique IRIs, got %v", iris)
	}
	if iris[0] != "https://w3id.org/np/abc" || iris[1] != "https://doi.org/10.1/x" {
		t.Errorf("unexpected IRIs: %v", iris)
	}
}

func TestOllamaNarrate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("streaming should be disabled")
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    req.Model,
			Response: "The strongest finding is that VGGNet cites AlexNet (https://w3id.org/np/abc).",
			Done:     true,
		})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(Config{Provider: "ollama", Model: "llama3.1:8b", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Narrate(context.Background(), NarrateRequest{
		Question:    "What papers cite AlexNet?",
		Findings:    sampleFindings(),
		AllowedIRIs: []string{"https://w3id.org/np/abc"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Narrative, "VGGNet cites AlexNet") {
		t.Errorf("unexpected narrative: %q", resp.Narrative)
	}
	if len(resp.CitedIRIs) != 1 || resp.CitedIRIs[0] != "https://w3id.org/np/abc" {
		t.Errorf("unexpected cited IRIs: %v", resp.CitedIRIs)
	}
}

func TestOllamaNarrateCitationLeak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    "m",
			Response: "See https://untrusted.example/paper for details.",
			Done:     true,
		})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(Config{Provider: "ollama", Model: "m", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Narrate(context.Background(), NarrateRequest{
		Question:    "q",
		Findings:    sampleFindings(),
		AllowedIRIs: []string{"https://w3id.org/np/abc"},
	})
	if err == nil {
		t.Fatal("expected citation leak rejection")
	}
}

func TestOllamaRequiresModel(t *testing.T) {
	p, err := NewOllamaProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Narrate(context.Background(), NarrateRequest{Question: "q"}); err == nil {
		t.Fatal("expected error when no model is configured")
	}
}
