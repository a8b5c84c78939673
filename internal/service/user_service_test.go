package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
)

func TestResumeObjectName(t *testing.T) {
	now := time.Unix(0, 1700000000000000000).UTC()
	got, err := ResumeObjectName(7, "CV.PDF", now)
	if err != nil {
		t.Fatalf("ResumeObjectName: %v", err)
	}
	if got != "resumes/7/1700000000000000000.pdf" {
		t.Fatalf("unexpected object name %q", got)
	}
	if _, err := ResumeObjectName(7, "cv.exe", now); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error for .exe, got %v", err)
	}
}

func TestLocalStoreRejectsEscapingObject(t *testing.T) {
	store := &LocalStore{Root: t.TempDir()}
	_, err := store.Put(context.Background(), "../outside.pdf", strings.NewReader("x"), 1, "application/pdf")
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadResumeReplacesPreviousObject(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	users := repository.NewUserRepository(db)
	svc := NewUserService(users, &StorageService{ObjectStore: &LocalStore{Root: root}})
	candidate := createUser(t, db, "Kim", model.Candidate)
	employer := createUser(t, db, "Globex", model.Employer)
	ctx := context.Background()

	first, err := svc.UploadResume(ctx, candidate.ID, "cv.pdf", strings.NewReader("v1"), 2, "application/pdf")
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	stored, _ := users.FindByID(candidate.ID)
	firstObject := stored.ResumeObject
	if stored.ResumeURL != first || !strings.HasPrefix(first, "/uploads/resumes/") {
		t.Fatalf("unexpected resume url %q (stored %q)", first, stored.ResumeURL)
	}

	time.Sleep(time.Millisecond)
	if _, err := svc.UploadResume(ctx, candidate.ID, "cv.docx", strings.NewReader("v2"), 2, ""); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(firstObject))); !os.IsNotExist(err) {
		t.Fatalf("expected previous resume to be removed, stat err = %v", err)
	}
	stored, _ = users.FindByID(candidate.ID)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(stored.ResumeObject)))
	if err != nil || string(data) != "v2" {
		t.Fatalf("expected new resume on disk, got %q %v", data, err)
	}

	if _, err := svc.UploadResume(ctx, employer.ID, "cv.pdf", strings.NewReader("x"), 1, ""); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected employers to be rejected, got %v", err)
	}
	if _, err := svc.UploadResume(ctx, candidate.ID, "cv.pdf", strings.NewReader(""), util.MaxResumeSize+1, ""); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected oversize resume to be rejected, got %v", err)
	}
}
