package service

import (
	"errors"
	"testing"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour}
	svc := NewAuthService(repository.NewUserRepository(db), cfg)

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"admin self-signup", RegisterRequest{Name: "Root", Email: "root@example.com", Password: "password1", Role: model.Admin}, util.ErrValidation},
		{"employer without company", RegisterRequest{Name: "Boss", Email: "boss@example.com", Password: "password1", Role: model.Employer}, util.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	user, err := svc.Register(RegisterRequest{Name: "Lee", Email: " Lee@Example.com ", Password: "password1", Role: model.Candidate})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "lee@example.com" || user.Password == "password1" {
		t.Fatalf("expected normalised email and hashed password, got %+v", user)
	}
	if _, err := svc.Register(RegisterRequest{Name: "Lee", Email: "lee@example.com", Password: "password2", Role: model.Candidate}); !errors.Is(err, util.ErrConflict) {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}

	if _, _, err := svc.Login("lee@example.com", "wrong-password"); !errors.Is(err, util.ErrAuthorization) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	token, logged, err := svc.Login("LEE@example.com", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := util.ParseJWT(token, cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != logged.ID || claims.Role != model.Candidate {
		t.Fatalf("unexpected claims %+v", claims)
	}
}
