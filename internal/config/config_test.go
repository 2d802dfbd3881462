package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SYSTEM_OWNER_EMAIL", "")
	t.Setenv("EXAM_CODE_MAX_ATTEMPTS", "")
	t.Setenv("ENFORCE_SUBMISSION_DEADLINE", "")

	cfg := Load()

	if cfg.SystemOwnerEmail != "admin@istanbulinstitute.com" {
		t.Errorf("SystemOwnerEmail = %q", cfg.SystemOwnerEmail)
	}
	if cfg.ExamCodeMaxAttempts != 10 {
		t.Errorf("ExamCodeMaxAttempts = %d, want 10", cfg.ExamCodeMaxAttempts)
	}
	if cfg.EnforceSubmissionDeadline {
		t.Error("EnforceSubmissionDeadline should default to false")
	}
	if cfg.DefaultLocale != "tr" {
		t.Errorf("DefaultLocale = %q, want tr", cfg.DefaultLocale)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENFORCE_SUBMISSION_DEADLINE", "true")
	t.Setenv("SUBMISSION_GRACE_SECONDS", "30")
	t.Setenv("EXAM_CODE_LENGTH", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if !cfg.EnforceSubmissionDeadline {
		t.Error("EnforceSubmissionDeadline should be true")
	}
	if cfg.SubmissionGrace != 30*time.Second {
		t.Errorf("SubmissionGrace = %v", cfg.SubmissionGrace)
	}
	if cfg.ExamCodeLength != 6 {
		t.Errorf("ExamCodeLength = %d, want fallback 6", cfg.ExamCodeLength)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.PublicExamKey("ab12cd"); got != "exam:code:AB12CD:public" {
		t.Errorf("PublicExamKey = %q", got)
	}
	if got := CacheKey.ExamResultsChannel("x"); got != "exam:x:results" {
		t.Errorf("ExamResultsChannel = %q", got)
	}
}
