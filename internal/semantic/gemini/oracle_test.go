package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"neuromatch/internal/domain/match"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func newTestOracle(gen contentGenerator) *Oracle {
	return NewOracle(gen, zap.NewNop(), time.Second)
}

func TestOracle_ParsesPlainJSON(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: `{"score": 87, "reason": "broad coverage"}`})

	res, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go", "SQL"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Score != 87 {
		t.Fatalf("expected 87, got %v", res.Score)
	}
	if res.Method != match.MethodSemantic {
		t.Fatalf("expected semantic method, got %q", res.Method)
	}
}

func TestOracle_ParsesFencedJSON(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: "```json\n{\"score\": 42, \"reason\": \"partial\"}\n```"})

	res, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Rust"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Score != 42 {
		t.Fatalf("expected 42, got %v", res.Score)
	}
}

func TestOracle_ClampsOutOfRangeScore(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: `{"score": 250}`})

	res, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Score != 100 {
		t.Fatalf("expected clamp to 100, got %v", res.Score)
	}
}

func TestOracle_StringScoreCoerced(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: `{"score": "73.5"}`})

	res, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Score != 73.5 {
		t.Fatalf("expected 73.5, got %v", res.Score)
	}
}

func TestOracle_GeneratorErrorPropagates(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	o := newTestOracle(&fakeGenerator{err: wantErr})

	_, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected generator error to propagate, got %v", err)
	}
}

func TestOracle_GarbageResponseFails(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: "I cannot answer that."})

	if _, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOracle_MissingScoreFails(t *testing.T) {
	o := newTestOracle(&fakeGenerator{response: `{"reason": "no score"}`})

	if _, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, []string{"Go"}); err == nil {
		t.Fatalf("expected missing-score error")
	}
}

func TestOracle_NoJobSkillsSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{response: `{"score": 1}`}
	o := newTestOracle(gen)

	res, err := o.ScoreSkillSimilarity(context.Background(), []string{"Go"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Score != 100 {
		t.Fatalf("jobs without skill requirements impose no criteria, got %v", res.Score)
	}
	if gen.prompt != "" {
		t.Fatalf("generator must not be called when there are no job skills")
	}
}
