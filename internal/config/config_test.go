package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAT_HISTORY_LIMIT", "")
	t.Setenv("WORKFLOW_TTL", "")

	cfg := Load()

	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.Chat.HistoryLimit)
	}
	if cfg.Chat.WorkflowTTL != time.Hour {
		t.Errorf("WorkflowTTL = %v, want 1h", cfg.Chat.WorkflowTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("WORKFLOW_TTL", "30m")
	t.Setenv("CLASSIFIER_MODE", "keyword")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	if cfg.Chat.RetrievalTopK != 5 {
		t.Errorf("RetrievalTopK = %d, want 5", cfg.Chat.RetrievalTopK)
	}
	if cfg.Chat.WorkflowTTL != 30*time.Minute {
		t.Errorf("WorkflowTTL = %v, want 30m", cfg.Chat.WorkflowTTL)
	}
	if cfg.Ai.ClassifierMode != "keyword" {
		t.Errorf("ClassifierMode = %q, want keyword", cfg.Ai.ClassifierMode)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	if got := getEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("getEnvAsInt = %d, want 7", got)
	}
}
