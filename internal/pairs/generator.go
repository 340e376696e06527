// Package pairs turns significant method mappings into labeled before/after
// code pairs, extracting both method bodies from the project's git history.
package pairs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jperfevo/jperfevo-go/internal/complexity"
	"github.com/jperfevo/jperfevo-go/internal/diff"
	"github.com/jperfevo/jperfevo-go/internal/models"
	"github.com/jperfevo/jperfevo-go/internal/signature"
)

// GeneratorConfig locates the project checkout and output directories.
type GeneratorConfig struct {
	ProjectName  string
	GitURL       string
	ResultsDir   string
	ProjectsDir  string
	ExtractorJAR string
}

// Generator extracts method implementations for each significant mapping and
// writes them as <hash>_v1.java / <hash>_v2.java pairs with a metadata file.
type Generator struct {
	cfg      GeneratorConfig
	repoPath string
	outDir   string
	history  map[string]struct{}
	differ   *diff.Renderer
	scorer   *complexity.Analyzer
	logger   *logrus.Logger
}

// pairMetadata is the sidecar document written next to each code pair.
type pairMetadata struct {
	Hash           string                     `json:"hash"`
	CommitMessage  string                     `json:"commit_message"`
	CurrentCommit  string                     `json:"current_commit"`
	PreviousCommit string                     `json:"previous_commit"`
	CurrentFile    string                     `json:"current_file"`
	PreviousFile   string                     `json:"previous_file"`
	CurrentMethod  string                     `json:"current_method"`
	PreviousMethod string                     `json:"previous_method"`
	Complexity     float64                    `json:"complexity"`
	Significance   *models.SignificanceResult `json:"significance"`
}

// NewGenerator prepares a Generator, cloning the repository when the local
// checkout does not exist yet.
func NewGenerator(ctx context.Context, cfg GeneratorConfig, logger *logrus.Logger) (*Generator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	repoPath := filepath.Join(cfg.ProjectsDir, cfg.ProjectName)
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		logger.WithField("url", cfg.GitURL).Info("Cloning repository")
		cmd := exec.CommandContext(ctx, "git", "clone", cfg.GitURL, repoPath)
		if out, err := cmd.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("clone %s: %w: %s", cfg.GitURL, err, strings.TrimSpace(string(out)))
		}
	}

	outDir := filepath.Join(cfg.ResultsDir, cfg.ProjectName, "code-pairs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &Generator{
		cfg:      cfg,
		repoPath: repoPath,
		outDir:   outDir,
		history:  make(map[string]struct{}),
		differ:   diff.NewRenderer(),
		scorer:   complexity.NewAnalyzer(),
		logger:   logger,
	}, nil
}

// PairHash derives the stable identifier for a code pair from the commit,
// file and method it came from.
func PairHash(commitHash, fileName, methodName string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", commitHash, fileName, methodName)))
	return hex.EncodeToString(sum[:])
}

// SimplifySignature reduces a full Java signature to the short form the
// method extractor expects. Unlike canonicalization it preserves case and
// the spacing between modifiers.
func SimplifySignature(sig string) string {
	if idx := strings.LastIndex(sig, ")"); idx != -1 {
		sig = sig[:idx+1]
	}
	sig = signature.StripGenerics(sig)

	open := strings.Index(sig, "(")
	if open == -1 {
		return sig
	}
	head, tail := sig[:open], sig[open+1:]
	if close := strings.Index(tail, ")"); close != -1 {
		tail = tail[:close]
	}

	methodParts := strings.Fields(head)
	for i, part := range methodParts {
		if idx := strings.LastIndex(part, "."); idx != -1 {
			part = part[idx+1:]
		}
		if idx := strings.Index(part, "$"); idx != -1 {
			part = part[:idx]
		}
		methodParts[i] = part
	}

	var args []string
	for _, arg := range strings.Split(tail, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if idx := strings.LastIndex(arg, "."); idx != -1 {
			arg = arg[idx+1:]
		}
		if idx := strings.Index(arg, "$"); idx != -1 {
			arg = arg[:idx]
		}
		fields := strings.Fields(arg)
		if len(fields) > 0 {
			args = append(args, fields[0])
		}
	}

	return fmt.Sprintf("%s(%s)", strings.Join(methodParts, " "), strings.Join(args, ","))
}

// Generate walks the mappings and writes a code pair for every entry with a
// significance verdict. Pairs that are textually identical after whitespace
// and case normalization are skipped.
func (g *Generator) Generate(ctx context.Context, mappings map[string][]models.MethodMapping) error {
	for commitHash, items := range mappings {
		for _, item := range items {
			if item.Significance == nil {
				continue
			}

			hash := PairHash(commitHash, item.File, item.MethodNameChange)
			if _, done := g.history[hash]; done {
				continue
			}
			if g.pairExists(hash) {
				continue
			}

			current, err := g.extractMethod(ctx, commitHash, item.File, item.MethodNameChange)
			if err != nil {
				return err
			}
			previous, err := g.extractMethod(ctx, item.PreviousCommit, item.PreviousFile, item.PreviousMethod)
			if err != nil {
				return err
			}
			if current == "" || previous == "" {
				continue
			}
			if normalizeBody(current) == normalizeBody(previous) {
				continue
			}

			g.history[hash] = struct{}{}
			if err := g.writePair(hash, current, previous, commitHash, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) pairExists(hash string) bool {
	for _, version := range []string{"v1", "v2"} {
		path := filepath.Join(g.outDir, fmt.Sprintf("%s_%s.java", hash, version))
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// extractMethod checks out the commit and asks the Java extractor for the
// method body. A missing method is not an error; it returns empty output.
func (g *Generator) extractMethod(ctx context.Context, commitHash, fileName, methodName string) (string, error) {
	if fileName == "" || methodName == "" {
		return "", nil
	}

	checkout := exec.CommandContext(ctx, "git", "-C", g.repoPath, "checkout", "--force", commitHash)
	if out, err := checkout.CombinedOutput(); err != nil {
		return "", fmt.Errorf("checkout %s: %w: %s", commitHash, err, strings.TrimSpace(string(out)))
	}

	extract := exec.CommandContext(ctx, "java", "-jar", g.cfg.ExtractorJAR,
		"-get-method",
		filepath.Join(g.repoPath, fileName),
		SimplifySignature(methodName),
	)
	out, err := extract.Output()
	if err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"file":   fileName,
			"method": methodName,
			"commit": commitHash,
		}).Warn("Method extraction failed")
		return "", nil
	}

	body := strings.TrimSpace(string(out))
	if body == "not-found" || body == "error" {
		g.logger.WithFields(logrus.Fields{
			"result": body,
			"file":   fileName,
			"method": methodName,
			"commit": commitHash,
		}).Warn("Method extraction failed")
		return "", nil
	}
	return body, nil
}

func (g *Generator) writePair(hash, current, previous, commitHash string, item models.MethodMapping) error {
	for i, body := range []string{current, previous} {
		path := filepath.Join(g.outDir, fmt.Sprintf("%s_v%d.java", hash, i+1))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write code pair %s: %w", path, err)
		}
	}

	rendered := g.differ.Generate(previous, current)
	diffPath := filepath.Join(g.outDir, fmt.Sprintf("%s_diff.txt", hash))
	if err := os.WriteFile(diffPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write diff %s: %w", diffPath, err)
	}

	meta := pairMetadata{
		Hash:           hash,
		CommitMessage:  item.CommitMessage,
		CurrentCommit:  commitHash,
		PreviousCommit: item.PreviousCommit,
		CurrentFile:    item.File,
		PreviousFile:   item.PreviousFile,
		CurrentMethod:  item.MethodNameChange,
		PreviousMethod: item.PreviousMethod,
		Complexity:     g.scorer.Calculate(rendered),
		Significance:   item.Significance,
	}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(g.outDir, fmt.Sprintf("%s_metadata.json", hash))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata %s: %w", path, err)
	}
	return nil
}

// normalizeBody flattens a method body for identity comparison.
func normalizeBody(body string) string {
	body = strings.ToLower(strings.TrimSpace(body))
	body = strings.ReplaceAll(body, " ", "")
	return strings.ReplaceAll(body, "\n", "")
}
