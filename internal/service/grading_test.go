package service

import (
	"fmt"
	"testing"

	"talent_match_backend/internal/model"
)

func questions(n int) []model.TestQuestion {
	qs := make([]model.TestQuestion, n)
	for i := range qs {
		qs[i].ID = fmt.Sprintf("q%d", i)
		qs[i].CorrectAnswer = fmt.Sprintf("answer %d", i)
		qs[i].Position = i
	}
	return qs
}

func correctSubmission(qs []model.TestQuestion, k int) map[string]string {
	sub := make(map[string]string, len(qs))
	for i, q := range qs {
		if i < k {
			sub[q.ID] = q.CorrectAnswer
		} else {
			sub[q.ID] = "wrong"
		}
	}
	return sub
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		correct    int
		passing    int
		wantScore  int
		wantPassed bool
	}{
		{"seven of ten passes default", 10, 7, 70, 70, true},
		{"six of ten fails default", 10, 6, 70, 60, false},
		{"all correct", 4, 4, 70, 100, true},
		{"none correct", 4, 0, 70, 0, false},
		{"rounds two thirds up", 3, 2, 70, 67, false},
		{"rounds one third down", 3, 1, 30, 33, true},
		{"zero threshold always passes", 5, 0, 0, 0, true},
		{"no questions scores zero", 0, 0, 70, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := questions(tt.total)
			out := Grade(qs, correctSubmission(qs, tt.correct), tt.passing)
			if out.Score != tt.wantScore || out.Passed != tt.wantPassed {
				t.Fatalf("Grade() = (%d, %v), want (%d, %v)", out.Score, out.Passed, tt.wantScore, tt.wantPassed)
			}
			if out.Correct != tt.correct || out.Total != tt.total {
				t.Fatalf("Grade() counted %d/%d, want %d/%d", out.Correct, out.Total, tt.correct, tt.total)
			}
		})
	}
}

func TestGradeTrimsButKeepsCase(t *testing.T) {
	qs := []model.TestQuestion{
		{UUIDBase: model.UUIDBase{ID: "q1"}, CorrectAnswer: " Paris "},
		{UUIDBase: model.UUIDBase{ID: "q2"}, CorrectAnswer: "Berlin"},
		{UUIDBase: model.UUIDBase{ID: "q3"}, CorrectAnswer: "42"},
	}
	sub := map[string]string{
		"q1": "Paris\n",
		"q2": "berlin",
	}

	out := Grade(qs, sub, 70)
	if out.Correct != 1 {
		t.Fatalf("expected only the trimmed exact match to count, got %d", out.Correct)
	}
	if out.Score != 33 {
		t.Fatalf("expected score 33, got %d", out.Score)
	}
}

func TestNormalizeAnswers(t *testing.T) {
	got := NormalizeAnswers(map[string]interface{}{
		"text":   "B",
		"int":    float64(3),
		"float":  2.5,
		"bool":   true,
		"null":   nil,
		"object": map[string]interface{}{"k": "v"},
	})
	want := map[string]string{
		"text":   "B",
		"int":    "3",
		"float":  "2.5",
		"bool":   "true",
		"null":   "",
		"object": `{"k":"v"}`,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("NormalizeAnswers[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestBuildAnswerRowsOrder(t *testing.T) {
	qs := questions(3)
	sub := map[string]string{
		"q2":    "answer 2",
		"zzz":   "stray",
		"q0":    "nope",
		"extra": "stray",
	}

	rows := buildAnswerRows(qs, sub)
	wantIDs := []string{"q0", "q2", "extra", "zzz"}
	if len(rows) != len(wantIDs) {
		t.Fatalf("expected %d rows, got %d", len(wantIDs), len(rows))
	}
	for i, id := range wantIDs {
		if rows[i].QuestionID != id || rows[i].Position != i {
			t.Fatalf("row %d = (%s, %d), want (%s, %d)", i, rows[i].QuestionID, rows[i].Position, id, i)
		}
	}
	if rows[0].IsCorrect || !rows[1].IsCorrect || rows[2].IsCorrect {
		t.Fatalf("unexpected correctness flags: %+v", rows)
	}
}
