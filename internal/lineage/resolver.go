// Package lineage resolves the predecessor of a method across a commit
// boundary and joins two independently collected datasets (code changes and
// performance measurements) into method mappings. Misses are expected
// outcomes here, not faults: most methods have no usable lineage and are
// simply skipped.
package lineage

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jperfevo/jperfevo-go/internal/models"
	"github.com/jperfevo/jperfevo-go/internal/signature"
	"github.com/jperfevo/jperfevo-go/internal/similarity"
)

// ResolutionStatus is the closed outcome set of a lineage lookup, so callers
// can tell "no match" apart from "not enough data to decide".
type ResolutionStatus int

const (
	// Resolved means a predecessor was found.
	Resolved ResolutionStatus = iota
	// NotFound means no candidate was exact or voted similar.
	NotFound
	// InsufficientData means a predecessor existed but its performance
	// samples were missing or below the call-count threshold.
	InsufficientData
)

// Resolution is the result of a predecessor lookup.
type Resolution struct {
	Status ResolutionStatus
	Method string
	File   string
	Score  float64
}

// Resolver owns the candidate-commit index, the performance dataset and the
// signature caches used to reconcile them. Not safe for concurrent use; shard
// one Resolver per worker if parallelizing across commits.
type Resolver struct {
	candidates map[string]*models.CommitRecord
	perf       models.PerformanceData
	norm       *signature.Normalizer
	logger     *logrus.Logger
}

// NewResolver builds a Resolver over already-loaded datasets.
func NewResolver(candidates map[string]*models.CommitRecord, perf models.PerformanceData, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{
		candidates: candidates,
		perf:       perf,
		norm:       signature.NewNormalizer(),
		logger:     logger,
	}
}

// LoadResolver loads both dataset files and builds a Resolver.
func LoadResolver(candidatesPath, perfPath string, logger *logrus.Logger) (*Resolver, error) {
	candidates, err := LoadCandidateCommits(candidatesPath)
	if err != nil {
		return nil, err
	}
	perf, err := LoadPerformanceData(perfPath)
	if err != nil {
		return nil, err
	}
	return NewResolver(candidates, perf, logger), nil
}

// FindPrevious locates the most plausible predecessor of a method among the
// signatures changed at the parent of the given commit. An exact textual
// match wins immediately; otherwise the highest-scoring candidate the
// similarity vote accepts wins, first encountered breaking ties.
func (r *Resolver) FindPrevious(commit, method string) Resolution {
	rec, ok := r.candidates[commit]
	if !ok {
		return Resolution{Status: NotFound}
	}
	changes := rec.ChangesAt(rec.PreviousCommit)
	if changes == nil {
		return Resolution{Status: NotFound}
	}

	currentTokens := r.norm.Tokenize(method)
	best := Resolution{Status: NotFound}

	for _, entry := range changes.Entries {
		for _, candidate := range entry.Methods {
			if candidate == method {
				return Resolution{Status: Resolved, Method: candidate, File: entry.Path, Score: 1}
			}
			similar, score := similarity.Compare(currentTokens, r.norm.Tokenize(candidate))
			if similar && score > best.Score {
				best = Resolution{Status: Resolved, Method: candidate, File: entry.Path, Score: score}
			}
		}
	}

	return best
}

// CreateMethodMappings joins the performance dataset against the candidate
// commits and returns the resolved mappings grouped by measurement hash.
// Every unmet precondition drops the candidate silently: partial results, not
// errors.
func (r *Resolver) CreateMethodMappings() map[string][]models.MethodMapping {
	mappings := make(map[string][]models.MethodMapping)

	for _, pdCommit := range sortedKeys(r.perf) {
		for _, pdHash := range sortedKeys(r.perf[pdCommit]) {
			for _, benchName := range sortedKeys(r.perf[pdCommit][pdHash]) {
				methods := r.perf[pdCommit][pdHash][benchName]
				for _, methodName := range sortedKeys(methods) {
					converted := r.norm.Canonicalize(methodName)
					mapping, status := r.findMapping(pdCommit, methodName, converted, benchName, methods[methodName])
					if status == Resolved {
						mappings[pdHash] = append(mappings[pdHash], mapping)
					}
				}
			}
		}
	}

	return mappings
}

// findMapping resolves one performance-data method against the code-change
// records of the same commit. The status separates "no predecessor" from
// "predecessor found but the performance samples cannot back it".
func (r *Resolver) findMapping(pdCommit, pdMethod, pdMethodConverted, benchmark string, current models.PerformanceSample) (models.MethodMapping, ResolutionStatus) {
	ccCommit, ok := r.candidates[pdCommit]
	if !ok {
		return models.MethodMapping{}, NotFound
	}
	changes := ccCommit.ChangesAt(ccCommit.Commit)
	if changes == nil {
		return models.MethodMapping{}, NotFound
	}

	for _, entry := range changes.Entries {
		for _, ccMethod := range entry.Methods {
			if pdMethodConverted != r.norm.Canonicalize(ccMethod) {
				continue
			}

			res := r.FindPrevious(ccCommit.Commit, ccMethod)
			if res.Status != Resolved {
				r.logger.WithFields(logrus.Fields{
					"commit": pdCommit,
					"method": ccMethod,
				}).Debug("no lineage match")
				return models.MethodMapping{}, NotFound
			}

			prevName, prev, found := r.samplesFor(pdCommit, res.Method)
			if !found || !current.Usable() || !prev.Usable() {
				r.logger.WithFields(logrus.Fields{
					"commit": pdCommit,
					"method": ccMethod,
				}).Debug("insufficient performance data for lineage pair")
				return models.MethodMapping{}, InsufficientData
			}

			diff := CombinedPerformanceDiff(
				current.AverageSelfTime, prev.AverageSelfTime,
				current.MinExecutionTime, prev.MinExecutionTime)

			return models.MethodMapping{
				CommitMessage:      ccCommit.Message,
				Benchmark:          benchmark,
				MethodNamePerf:     pdMethod,
				MethodNameChange:   ccMethod,
				File:               entry.Path,
				PreviousMethod:     res.Method,
				PreviousMethodPerf: prevName,
				PreviousFile:       res.File,
				PreviousCommit:     ccCommit.PreviousCommit,
				PerformanceDiff:    diff,
			}, Resolved
		}
	}

	return models.MethodMapping{}, NotFound
}

// samplesFor searches the performance dataset of a commit for a method with
// an equal canonical signature, across all measurement hashes and benchmarks.
func (r *Resolver) samplesFor(pdCommit, method string) (string, models.PerformanceSample, bool) {
	commitPerf, ok := r.perf[pdCommit]
	if !ok {
		return "", models.PerformanceSample{}, false
	}

	converted := r.norm.Canonicalize(method)
	for _, pdHash := range sortedKeys(commitPerf) {
		for _, benchName := range sortedKeys(commitPerf[pdHash]) {
			methods := commitPerf[pdHash][benchName]
			for _, name := range sortedKeys(methods) {
				if r.norm.Canonicalize(name) == converted {
					return name, methods[name], true
				}
			}
		}
	}
	return "", models.PerformanceSample{}, false
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
