package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talent_match_backend/internal/service"
	"talent_match_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type stubSweeper struct {
	token string
}

func (s *stubSweeper) RunReminderSweep(ctx context.Context, token string, now time.Time) (*service.SweepSummary, error) {
	s.token = token
	if token != "right" {
		return nil, util.ErrInvalidCronSecret
	}
	return &service.SweepSummary{Processed: 2, Errors: 1, Timestamp: now.Format(time.RFC3339)}, nil
}

func newCronRouter(s ReminderSweeper) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/cron/interview-reminders", NewCronController(s).InterviewReminders)
	return r
}

func TestInterviewRemindersEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		value    string
		wantCode int
	}{
		{"cron header", "X-Cron-Secret", "right", http.StatusOK},
		{"bearer token", "Authorization", "Bearer right", http.StatusOK},
		{"wrong secret", "X-Cron-Secret", "nope", http.StatusUnauthorized},
		{"missing secret", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweeper := &stubSweeper{}
			router := newCronRouter(sweeper)

			req := httptest.NewRequest(http.MethodPost, "/api/cron/interview-reminders", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Code int                  `json:"code"`
				Data service.SweepSummary `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Data.Processed != 2 || body.Data.Errors != 1 || body.Data.Timestamp == "" {
				t.Fatalf("unexpected summary: %+v", body.Data)
			}
		})
	}
}
