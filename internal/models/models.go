package models

// MinimumCallCount is the smallest per-method call count a performance sample
// needs before it is considered statistically usable.
const MinimumCallCount = 15

// FileChange lists the method signatures touched in one file at one commit.
type FileChange struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// ChangeSet records which methods changed at a given commit, file by file.
// Entries preserve input order so candidate iteration is deterministic.
type ChangeSet struct {
	AtCommit string       `json:"at_commit"`
	Entries  []FileChange `json:"entries"`
}

// CommitRecord is one candidate commit together with the method-level changes
// observed at this commit and at its parent.
type CommitRecord struct {
	Commit         string      `json:"commit"`
	PreviousCommit string      `json:"previous_commit"`
	Message        string      `json:"commit_message"`
	Changes        []ChangeSet `json:"method_changes"`
}

// ChangesAt returns the change set recorded for the given commit hash, or nil.
func (c *CommitRecord) ChangesAt(hash string) *ChangeSet {
	for i := range c.Changes {
		if c.Changes[i].AtCommit == hash {
			return &c.Changes[i]
		}
	}
	return nil
}

// PerformanceSample holds the measured timings for one (commit, benchmark,
// method) triple.
type PerformanceSample struct {
	CallCount        int     `json:"call_count"`
	AverageSelfTime  float64 `json:"average_self_time"`
	MinExecutionTime float64 `json:"min_execution_time"`
}

// Usable reports whether the sample saw enough calls to be comparable.
func (s PerformanceSample) Usable() bool {
	return s.CallCount >= MinimumCallCount
}

// MethodSamples maps a method signature to its measured sample.
type MethodSamples map[string]PerformanceSample

// BenchmarkSet maps a benchmark name to its per-method samples.
type BenchmarkSet map[string]MethodSamples

// CommitPerformance maps a measurement hash to the benchmarks recorded there.
type CommitPerformance map[string]BenchmarkSet

// PerformanceData is the full performance dataset keyed by commit hash.
type PerformanceData map[string]CommitPerformance

// MethodMapping pairs a method version with its resolved predecessor and the
// combined performance diff between the two.
type MethodMapping struct {
	CommitMessage      string              `json:"commit_message"`
	Benchmark          string              `json:"benchmark"`
	MethodNamePerf     string              `json:"method_name_pd"`
	MethodNameChange   string              `json:"method_name_cc"`
	File               string              `json:"file"`
	PreviousMethod     string              `json:"previous_method_cc"`
	PreviousMethodPerf string              `json:"previous_method_pd"`
	PreviousFile       string              `json:"previous_file"`
	PreviousCommit     string              `json:"previous_commit"`
	PerformanceDiff    float64             `json:"performance_diff"`
	Significance       *SignificanceResult `json:"significance,omitempty"`
}

// ChangeType classifies the direction of a performance shift.
type ChangeType string

const (
	ChangeImprovement ChangeType = "improvement"
	ChangeRegression  ChangeType = "regression"
	ChangeUnchanged   ChangeType = "unchanged"
)

// EffectSize buckets for Cliff's delta, per Romano et al. thresholds.
type EffectSize string

const (
	EffectNegligible EffectSize = "negligible"
	EffectSmall      EffectSize = "small"
	EffectMedium     EffectSize = "medium"
	EffectLarge      EffectSize = "large"
)

// SampleSizes carries the post-trim sample counts used in a comparison.
type SampleSizes struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// SignificanceResult is the verdict for one before/after timing comparison.
type SignificanceResult struct {
	ChangeType               ChangeType  `json:"change_type"`
	MedianChangePercentage   float64     `json:"median_change_percentage"`
	PValue                   float64     `json:"p_value"`
	EffectSize               float64     `json:"effect_size"`
	EffectSizeInterpretation EffectSize  `json:"effect_size_interpretation"`
	StatisticallySignificant bool        `json:"statistically_significant"`
	SampleSize               SampleSizes `json:"sample_size"`
}

// CodePair is an extracted before/after method implementation pair, labeled
// with its performance verdict. Stored and exported for dataset construction.
type CodePair struct {
	ID                string `json:"_id,omitempty" db:"id"`
	ProjectName       string `json:"projectName" db:"project_name"`
	Version1          string `json:"version1" db:"version1"`
	Version2          string `json:"version2" db:"version2"`
	CommitHash        string `json:"commitHash" db:"commit_hash"`
	CommitMessage     string `json:"commitMessage" db:"commit_message"`
	MethodName        string `json:"methodName" db:"method_name"`
	PerformanceChange string `json:"performanceChange" db:"performance_change"`
}

// AuthorExperience is the scored GitHub profile of a commit author.
type AuthorExperience struct {
	Username           string  `json:"username"`
	TotalContributions int     `json:"total_contributions"`
	RepoContributions  int     `json:"repo_contributions"`
	CodeReviews        int     `json:"code_reviews"`
	AccountAgeYears    float64 `json:"account_age_years"`
	ExperienceScore    float64 `json:"experience_score"`
}
