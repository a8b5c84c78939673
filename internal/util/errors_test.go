package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNoAnswers, http.StatusBadRequest},
		{ErrInvalidCronSecret, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrTestNotFound, http.StatusNotFound},
		{ErrTestAlreadyCompleted, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", ErrJobNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
		{ErrDelivery, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessageStripsKind(t *testing.T) {
	if got := Message(ErrTestAlreadyCompleted); got != "test already completed" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(ErrNoAnswers); got != "no answers provided" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(Validation("passing score %d out of range", 120)); got != "passing score 120 out of range" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Fatalf("unexpected message %q", got)
	}
}
