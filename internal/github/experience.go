// Package github scores the experience of commit authors from their GitHub
// profile: contributions to the analyzed repository, overall contribution
// volume, review activity and account age.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// contributionsAPI reports a user's total contribution count; the REST API
// has no equivalent endpoint.
const contributionsAPI = "https://github-contributions-api.deno.dev/%s.json"

// Score weights. Repository familiarity dominates; the rest measure general
// seniority.
const (
	repoWeight    = 0.30
	contribWeight = 0.25
	reviewsWeight = 0.25
	ageWeight     = 0.20
)

// statsMaxRetries bounds the retry loop on the contributor-stats endpoint,
// which answers 202 while GitHub generates the statistics.
const statsMaxRetries = 10

// Service wraps the GitHub API with rate limiting and an optional on-disk
// contributor-stats cache.
type Service struct {
	client      *gh.Client
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       *StatsCache
	logger      *logrus.Logger

	mu           sync.Mutex
	contributors map[string]map[string]int
}

// NewService creates an experience-scoring service. cache may be nil.
func NewService(token string, rateLimit int, cache *StatsCache, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if rateLimit <= 0 {
		rateLimit = 10
	}
	return &Service{
		client:       gh.NewClient(nil).WithAuthToken(token),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		rateLimiter:  rate.NewLimiter(rate.Limit(rateLimit), 1),
		cache:        cache,
		logger:       logger,
		contributors: make(map[string]map[string]int),
	}
}

// AuthorExperience assesses the author of a commit in the given repository
// ("owner/name"). When username is empty it is resolved from the commit.
// Returns (nil, nil) when the commit carries no resolvable GitHub account.
func (s *Service) AuthorExperience(ctx context.Context, repo, commitSHA, username string) (*models.AuthorExperience, error) {
	if username == "" {
		var err error
		username, err = s.CommitAuthor(ctx, repo, commitSHA)
		if err != nil {
			return nil, err
		}
		if username == "" {
			return nil, nil
		}
	}

	user, err := s.userDetails(ctx, username)
	if err != nil {
		return nil, err
	}
	repoContribs, err := s.repoContributions(ctx, username, repo)
	if err != nil {
		return nil, err
	}
	totalContribs, err := s.totalContributions(ctx, username)
	if err != nil {
		return nil, err
	}
	reviews, err := s.codeReviews(ctx, username)
	if err != nil {
		return nil, err
	}

	score := experienceScore(user, repoContribs, totalContribs, reviews)

	return &models.AuthorExperience{
		Username:           username,
		TotalContributions: totalContribs,
		RepoContributions:  repoContribs,
		CodeReviews:        reviews,
		AccountAgeYears:    yearsSince(user.GetCreatedAt().Time),
		ExperienceScore:    score,
	}, nil
}

// BatchExperience scores the authors of several commits concurrently,
// returning a commit->experience map. Commits whose author cannot be scored
// are logged and omitted.
func (s *Service) BatchExperience(ctx context.Context, repo string, commitSHAs []string) (map[string]*models.AuthorExperience, error) {
	results := make(map[string]*models.AuthorExperience, len(commitSHAs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, sha := range commitSHAs {
		sha := sha
		g.Go(func() error {
			exp, err := s.AuthorExperience(ctx, repo, sha, "")
			if err != nil {
				s.logger.WithError(err).WithField("commit", sha).Warn("author experience lookup failed")
				return nil
			}
			if exp != nil {
				mu.Lock()
				results[sha] = exp
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// CommitAuthor resolves the GitHub login behind a commit, falling back to
// the committer when the author has no linked account. Empty when neither
// is linked.
func (s *Service) CommitAuthor(ctx context.Context, repo, sha string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	commit, _, err := s.client.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return "", fmt.Errorf("fetch commit %s: %w", sha, err)
	}

	if login := commit.GetAuthor().GetLogin(); login != "" {
		return login, nil
	}
	return commit.GetCommitter().GetLogin(), nil
}

func (s *Service) userDetails(ctx context.Context, username string) (*gh.User, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	user, _, err := s.client.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", username, err)
	}
	return user, nil
}

// repoContributions returns the user's commit total in the repository,
// consulting the in-memory and on-disk caches before hitting the stats
// endpoint. 0 when the user never contributed.
func (s *Service) repoContributions(ctx context.Context, username, repo string) (int, error) {
	s.mu.Lock()
	totals, ok := s.contributors[repo]
	s.mu.Unlock()

	if !ok && s.cache != nil {
		totals, ok = s.cache.Contributors(repo)
		if ok {
			s.mu.Lock()
			s.contributors[repo] = totals
			s.mu.Unlock()
		}
	}

	if !ok {
		fetched, err := s.fetchContributorStats(ctx, repo)
		if err != nil {
			return 0, err
		}
		totals = fetched

		s.mu.Lock()
		s.contributors[repo] = totals
		s.mu.Unlock()
		if s.cache != nil {
			if err := s.cache.PutContributors(repo, totals); err != nil {
				s.logger.WithError(err).Warn("failed to cache contributor stats")
			}
		}
	}

	return totals[username], nil
}

// fetchContributorStats retries while GitHub answers 202 (statistics being
// generated), backing off exponentially.
func (s *Service) fetchContributorStats(ctx context.Context, repo string) (map[string]int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < statsMaxRetries; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		stats, _, err := s.client.Repositories.ListContributorsStats(ctx, owner, name)
		var accepted *gh.AcceptedError
		if errors.As(err, &accepted) {
			s.logger.WithField("repo", repo).Debug("contributor stats being generated, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch contributor stats for %s: %w", repo, err)
		}

		totals := make(map[string]int, len(stats))
		for _, cs := range stats {
			if login := cs.GetAuthor().GetLogin(); login != "" {
				totals[login] = cs.GetTotal()
			}
		}
		return totals, nil
	}

	return map[string]int{}, nil
}

// totalContributions queries the public contributions API; the value feeds
// a log-scaled score, so rough numbers are fine.
func (s *Service) totalContributions(ctx context.Context, username string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(contributionsAPI, username), nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch contributions for %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch contributions for %s: status %d", username, resp.StatusCode)
	}

	var payload struct {
		TotalContributions int `json:"totalContributions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode contributions for %s: %w", username, err)
	}
	return payload.TotalContributions, nil
}

// codeReviews counts the pull requests the user authored, as a proxy for
// review participation.
func (s *Service) codeReviews(ctx context.Context, username string) (int, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	query := fmt.Sprintf("type:pr author:%s", username)
	result, _, err := s.client.Search.Issues(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("search pull requests for %s: %w", username, err)
	}
	return result.GetTotal(), nil
}

// experienceScore combines the metrics with diminishing-returns curves: repo
// and review familiarity plateau past ~100, total contributions scale
// logarithmically, account age plateaus around 10 years, and the whole score
// decays with inactivity.
func experienceScore(user *gh.User, repoContribs, totalContribs, reviews int) float64 {
	repoScore := 1 - math.Exp(-float64(repoContribs)/50)
	contribScore := math.Min(math.Log10(float64(totalContribs)+1)/2, 1.0)
	reviewsScore := 1 - math.Exp(-float64(reviews)/50)
	ageScore := 1 - math.Exp(-yearsSince(user.GetCreatedAt().Time)/3)

	activityFactor := 1.0
	if !user.GetUpdatedAt().Time.IsZero() {
		daysIdle := time.Since(user.GetUpdatedAt().Time).Hours() / 24
		activityFactor = math.Exp(-daysIdle / 365)
	}

	score := (repoWeight*repoScore +
		contribWeight*contribScore +
		ageWeight*ageScore +
		reviewsWeight*reviewsScore) * activityFactor

	return math.Min(score, 1.0)
}

func yearsSince(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return time.Since(t).Hours() / 24 / 365
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", repo)
	}
	return parts[0], parts[1], nil
}
