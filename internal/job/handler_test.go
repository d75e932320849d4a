package job

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/qaflow/internal/artifact"
	"github.com/jackzampolin/qaflow/internal/blob"
	"github.com/jackzampolin/qaflow/internal/credentials"
	"github.com/jackzampolin/qaflow/internal/extract"
	"github.com/jackzampolin/qaflow/internal/providers"
)

const (
	sourceURI  = "s3://uploads/incoming/questions.csv"
	secretName = "gemini-api-key-test"
	twoAnswers = `{
		"total_questions": 2,
		"questions_answers": [
			{"question":"What is X?","answer":"X.","category":"architecture","technical_level":"basic","aws_services_mentioned":[]},
			{"question":"What is Y?","answer":"Y.","category":"data","technical_level":"advanced","aws_services_mentioned":["Amazon S3"]}
		],
		"summary":"X and Y.",
		"key_topics":["x","y"]
	}`
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// countingStore counts store calls.
type countingStore struct {
	*blob.MemStore
	gets atomic.Int32
	puts atomic.Int32
}

func (s *countingStore) Get(ctx context.Context, loc blob.Locator) ([]byte, error) {
	s.gets.Add(1)
	return s.MemStore.Get(ctx, loc)
}

func (s *countingStore) Put(ctx context.Context, loc blob.Locator, data []byte, contentType string) error {
	s.puts.Add(1)
	return s.MemStore.Put(ctx, loc, data, contentType)
}

// mockFactory hands out one mock client and records the key it was given.
type mockFactory struct {
	client *providers.MockClient
	err    error
	calls  atomic.Int32
	apiKey atomic.Value
}

func (f *mockFactory) Client(name, apiKey string) (providers.LLMClient, error) {
	f.calls.Add(1)
	f.apiKey.Store(apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type fixture struct {
	store   *countingStore
	factory *mockFactory
	client  *providers.MockClient
	handler *Handler
}

func newFixture(t *testing.T, csv string) *fixture {
	t.Helper()
	store := &countingStore{MemStore: blob.NewMemStore()}
	if csv != "" {
		loc, err := blob.ParseLocator(sourceURI)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.MemStore.Put(context.Background(), loc, []byte(csv), "text/csv"); err != nil {
			t.Fatal(err)
		}
	}
	client := providers.NewMockClient()
	factory := &mockFactory{client: client}
	h := New(Config{
		Provider:     "mock",
		SecretName:   secretName,
		OutputSuffix: "-processed",
	}, Deps{
		Blob:        store,
		Credentials: credentials.StaticProvider{secretName: {"api_key": "k-123"}},
		Clients:     factory,
		Clock:       func() time.Time { return testNow },
	})
	return &fixture{store: store, factory: factory, client: client, handler: h}
}

func (f *fixture) artifact(t *testing.T, env Envelope) map[string]any {
	t.Helper()
	obj, ok := f.store.Object(env.OutputURI)
	if !ok {
		t.Fatalf("no artifact at %s (keys %v)", env.OutputURI, f.store.Keys())
	}
	if obj.ContentType != artifact.ContentType {
		t.Errorf("ContentType = %q", obj.ContentType)
	}
	var doc map[string]any
	if err := json.Unmarshal(obj.Data, &doc); err != nil {
		t.Fatalf("artifact is not JSON: %v", err)
	}
	return doc
}

func processingType(doc map[string]any) string {
	pm, _ := doc["processing_metadata"].(map[string]any)
	s, _ := pm["processing_type"].(string)
	return s
}

func TestHandle_Structured(t *testing.T) {
	f := newFixture(t, "pergunta\nWhat is X?\nWhat is Y?")
	f.client.StructuredText = twoAnswers

	env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Result == nil || env.Result.TotalQuestions != 2 {
		t.Fatalf("Result = %+v", env.Result)
	}
	if !artifact.JobIDPattern.MatchString(env.JobID) || !strings.HasPrefix(env.JobID, artifact.DefaultJobPrefix) {
		t.Errorf("JobID = %q", env.JobID)
	}
	wantOut := "s3://uploads-processed/processed/" + env.JobID + "/gemini_output.json"
	if env.OutputURI != wantOut {
		t.Errorf("OutputURI = %q, want %q", env.OutputURI, wantOut)
	}
	if env.Metadata == nil || env.Metadata.JobID != env.JobID || env.Metadata.InputKey != "incoming/questions.csv" {
		t.Errorf("Metadata = %+v", env.Metadata)
	}
	if got := f.factory.apiKey.Load(); got != "k-123" {
		t.Errorf("client built with key %v", got)
	}

	doc := f.artifact(t, env)
	if processingType(doc) != extract.ProcessingStructured {
		t.Errorf("processing_type = %q", processingType(doc))
	}
	if calls, _ := doc["llm_calls"].([]any); len(calls) != 1 {
		t.Errorf("llm_calls = %v", doc["llm_calls"])
	}
	if f.store.puts.Load() != 1 {
		t.Errorf("puts = %d, want 1", f.store.puts.Load())
	}
}

func TestHandle_Fallback(t *testing.T) {
	f := newFixture(t, "pergunta\nWhat is X?\nWhat is Y?")
	f.client.StructuredText = `{"total_questions":2,"questions_answers":[]}`
	f.client.ResponseText = "some free-form answer"

	env := f.handler.Handle(context.Background(), Event{S3URI: sourceURI})
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if len(env.Result.QuestionsAnswers) != 2 {
		t.Fatalf("answers = %d", len(env.Result.QuestionsAnswers))
	}
	for i, qa := range env.Result.QuestionsAnswers {
		if qa.Category != "general" {
			t.Errorf("answers[%d].Category = %q", i, qa.Category)
		}
	}
	if f.client.TextCount() != 1 {
		t.Errorf("TextCount() = %d, want 1", f.client.TextCount())
	}

	doc := f.artifact(t, env)
	if processingType(doc) != extract.ProcessingFallback {
		t.Errorf("processing_type = %q", processingType(doc))
	}
}

func TestHandle_MissingLocator(t *testing.T) {
	f := newFixture(t, "pergunta\nWhat is X?")

	for _, ev := range []Event{{}, {SourceURI: "not-a-locator"}} {
		env := f.handler.Handle(context.Background(), ev)
		if env.StatusCode != 400 || env.Status != StatusFailed {
			t.Errorf("Handle(%+v) = %+v", ev, env)
		}
		if !strings.HasPrefix(env.JobID, "failed-") || env.Error == "" {
			t.Errorf("failure envelope = %+v", env)
		}
		if env.Metadata != nil || env.Result != nil {
			t.Errorf("failure envelope carries data: %+v", env)
		}
	}
	if f.store.gets.Load() != 0 || f.factory.calls.Load() != 0 || f.client.RequestCount() != 0 {
		t.Errorf("gets=%d clients=%d requests=%d, want none", f.store.gets.Load(), f.factory.calls.Load(), f.client.RequestCount())
	}
}

func TestHandle_SourceNotFound(t *testing.T) {
	f := newFixture(t, "")

	env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if env.StatusCode != 500 || env.Status != StatusFailed {
		t.Fatalf("envelope = %+v", env)
	}
	if !strings.Contains(env.Error, "not found") {
		t.Errorf("Error = %q", env.Error)
	}
	if f.store.puts.Load() != 0 || len(f.store.Keys()) != 0 {
		t.Errorf("output written on failure: %v", f.store.Keys())
	}
	if f.client.RequestCount() != 0 {
		t.Errorf("RequestCount() = %d", f.client.RequestCount())
	}
}

func TestHandle_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  string
	}{
		{
			name: "missing credential",
			setup: func(f *fixture) {
				f.handler.deps.Credentials = credentials.StaticProvider{secretName: {"other": "x"}}
			},
			want: "api_key missing",
		},
		{
			name:  "provider not configured",
			setup: func(f *fixture) { f.factory.err = errors.New("LLM provider not configured: mock") },
			want:  "not configured",
		},
		{
			name: "fallback failure",
			setup: func(f *fixture) {
				f.client.StructuredErr = errors.New("503")
				f.client.TextErr = errors.New("connection reset")
			},
			want: extract.ErrExtractionFailed.Error(),
		},
		{
			name:  "write failure",
			setup: func(f *fixture) { f.store.PutErr = errors.New("disk full") },
			want:  "write artifact",
		},
		{
			name:  "malformed input",
			setup: func(f *fixture) {},
			want:  "normalize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "pergunta\nWhat is X?"
			if tt.name == "malformed input" {
				csv = "pergunta\n\xff\xfe"
			}
			f := newFixture(t, csv)
			f.client.StructuredText = `{"total_questions":1,"questions_answers":[{"question":"What is X?","answer":"a","category":"c","technical_level":"basic","aws_services_mentioned":[]}],"summary":"s","key_topics":[]}`
			tt.setup(f)

			env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
			if env.StatusCode != 500 || env.Status != StatusFailed {
				t.Fatalf("envelope = %+v", env)
			}
			if !strings.Contains(env.Error, tt.want) {
				t.Errorf("Error = %q, want it to contain %q", env.Error, tt.want)
			}
			if _, ok := f.store.Object(env.OutputURI); ok || len(f.store.Keys()) != 1 {
				t.Errorf("unexpected objects after failure: %v", f.store.Keys())
			}
		})
	}
}

type panickingFactory struct{}

func (panickingFactory) Client(name, apiKey string) (providers.LLMClient, error) {
	panic("boom")
}

func TestHandle_RecoversPanic(t *testing.T) {
	f := newFixture(t, "pergunta\nWhat is X?")
	f.handler.deps.Clients = panickingFactory{}

	env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if env.StatusCode != 500 || env.Status != StatusFailed || !strings.Contains(env.Error, "boom") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestHandle_EmptyQuestions(t *testing.T) {
	f := newFixture(t, "pergunta\n")

	env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Result.TotalQuestions != 0 || env.Result.Summary != extract.EmptySummary {
		t.Errorf("Result = %+v", env.Result)
	}
	if f.client.RequestCount() != 0 {
		t.Errorf("RequestCount() = %d, want 0", f.client.RequestCount())
	}
}

func TestHandle_RequireRows(t *testing.T) {
	f := newFixture(t, "pergunta\n")
	f.handler.cfg.RequireRows = true

	env := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if env.StatusCode != 500 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestHandle_IndependentRuns(t *testing.T) {
	f := newFixture(t, "pergunta\nWhat is X?\nWhat is Y?")
	f.client.StructuredText = twoAnswers

	first := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	second := f.handler.Handle(context.Background(), Event{SourceURI: sourceURI})
	if !first.OK() || !second.OK() {
		t.Fatalf("envelopes = %+v / %+v", first, second)
	}
	if first.JobID == second.JobID || first.OutputURI == second.OutputURI {
		t.Errorf("reruns share job id %q", first.JobID)
	}
	if len(f.store.Keys()) != 3 {
		t.Errorf("keys = %v, want source plus two artifacts", f.store.Keys())
	}
}

func TestCheckStatus(t *testing.T) {
	h := New(Config{}, Deps{Clock: func() time.Time { return testNow }})

	tests := []struct {
		name       string
		req        StatusRequest
		wantCode   int
		wantStatus string
	}{
		{name: "missing job id", req: StatusRequest{JobDetails: JobDetails{Status: "COMPLETED"}}, wantCode: 400},
		{name: "missing status", req: StatusRequest{JobDetails: JobDetails{JobID: "j"}}, wantCode: 400},
		{name: "completed", req: StatusRequest{JobDetails: JobDetails{JobID: "j", Status: "COMPLETED", OutputURI: "s3://b/k"}}, wantCode: 200, wantStatus: StatusCompleted},
		{name: "anything else", req: StatusRequest{JobDetails: JobDetails{JobID: "j", Status: "RUNNING"}}, wantCode: 200, wantStatus: StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.CheckStatus(tt.req)
			if resp.StatusCode != tt.wantCode || resp.Status != tt.wantStatus {
				t.Fatalf("CheckStatus() = %+v", resp)
			}
			if tt.wantCode == 400 && resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}

	resp := h.CheckStatus(StatusRequest{JobDetails: JobDetails{JobID: "j", Status: "COMPLETED", OutputURI: "s3://b/k"}})
	if resp.Result.OutputURI != "s3://b/k" || resp.Result.CompletedAt == nil || !resp.CheckedAt.Equal(testNow) {
		t.Errorf("CheckStatus() result = %+v", resp.Result)
	}
}
