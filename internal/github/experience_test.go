package github

import (
	"path/filepath"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
)

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		owner   string
		repoStr string
		wantErr bool
	}{
		{"Valid", "golang/go", "golang", "go", false},
		{"Missing slash", "golang", "", "", true},
		{"Empty owner", "/go", "", "", true},
		{"Empty name", "golang/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := splitRepo(tt.repo)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitRepo(%q) error = %v, wantErr %v", tt.repo, err, tt.wantErr)
			}
			if owner != tt.owner || name != tt.repoStr {
				t.Errorf("splitRepo(%q) = %q, %q", tt.repo, owner, name)
			}
		})
	}
}

func TestExperienceScoreBounds(t *testing.T) {
	now := time.Now()
	veteran := &gh.User{
		CreatedAt: &gh.Timestamp{Time: now.AddDate(-12, 0, 0)},
		UpdatedAt: &gh.Timestamp{Time: now},
	}
	newcomer := &gh.User{
		CreatedAt: &gh.Timestamp{Time: now.AddDate(0, -1, 0)},
		UpdatedAt: &gh.Timestamp{Time: now},
	}

	high := experienceScore(veteran, 500, 5000, 300)
	low := experienceScore(newcomer, 0, 0, 0)

	if high <= low {
		t.Errorf("veteran score %v should exceed newcomer score %v", high, low)
	}
	if high > 1.0 {
		t.Errorf("score %v exceeds 1.0", high)
	}
	if low < 0 {
		t.Errorf("score %v below 0", low)
	}
}

func TestExperienceScoreDecaysWithInactivity(t *testing.T) {
	now := time.Now()
	active := &gh.User{
		CreatedAt: &gh.Timestamp{Time: now.AddDate(-5, 0, 0)},
		UpdatedAt: &gh.Timestamp{Time: now},
	}
	dormant := &gh.User{
		CreatedAt: &gh.Timestamp{Time: now.AddDate(-5, 0, 0)},
		UpdatedAt: &gh.Timestamp{Time: now.AddDate(-3, 0, 0)},
	}

	if a, d := experienceScore(active, 100, 1000, 50), experienceScore(dormant, 100, 1000, 50); a <= d {
		t.Errorf("active score %v should exceed dormant score %v", a, d)
	}
}

func TestStatsCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	cache, err := OpenStatsCache(path)
	if err != nil {
		t.Fatalf("OpenStatsCache() error: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Contributors("golang/go"); ok {
		t.Error("Contributors() on empty cache should miss")
	}

	totals := map[string]int{"alice": 120, "bob": 4}
	if err := cache.PutContributors("golang/go", totals); err != nil {
		t.Fatalf("PutContributors() error: %v", err)
	}

	got, ok := cache.Contributors("golang/go")
	if !ok {
		t.Fatal("Contributors() should hit after Put")
	}
	if got["alice"] != 120 || got["bob"] != 4 {
		t.Errorf("Contributors() = %v", got)
	}
}
