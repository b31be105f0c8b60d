// Package compiler converts a raw Intent message into an executable
// Specification: parse, analyze the codebase, generate assertions and a test
// suite, then validate the result. The four steps are chained through the
// result[T] combinator in result.go rather than nested error-checking. The
// analyze step's AI-proposed relevant_files is cross-checked against a
// deterministic keyword index over the project tree (searchindex.go).
package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/types"
)

// Compiler compiles Intents against one project tree.
type Compiler struct {
	Gateway      *aigateway.Gateway
	ProjectRoot  string
	Analysis     config.AnalysisConfig
	CallDeadline time.Duration
}

// New constructs a Compiler.
func New(gateway *aigateway.Gateway, projectRoot string, analysis config.AnalysisConfig, callDeadline time.Duration) *Compiler {
	return &Compiler{Gateway: gateway, ProjectRoot: projectRoot, Analysis: analysis, CallDeadline: callDeadline}
}

// Parse issues the parse-purpose completion and returns the structured
// result. A non-empty ParsedIntent.Unclear means compilation should halt
// with clarification_needed — the caller (the Orchestrator) is responsible
// for applying that to the Intent's status via Intent.ApplyParsed.
func (c *Compiler) Parse(run *runctx.Run, rawMessage string) (types.ParsedIntent, error) {
	prompt := fmt.Sprintf("Parse the following feature request into core, must, must_not, done_when, unclear, and scope fields as JSON:\n\n%s", rawMessage)
	comp, err := c.Gateway.Complete(run, prompt, aigateway.PurposeParse, c.CallDeadline)
	if err != nil {
		return types.ParsedIntent{}, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	var parsed types.ParsedIntent
	if err := json.Unmarshal([]byte(comp.Text), &parsed); err != nil {
		return types.ParsedIntent{}, fmt.Errorf("%w: %v", ErrMalformedAIResponse, err)
	}
	return parsed, nil
}

type compileState struct {
	intent       *types.Intent
	analysis     codebaseAnalysis
	assertions   []types.Assertion
	testSuite    string
	typeContract string
}

type codebaseAnalysis struct {
	RelevantFiles     []string        `json:"relevant_files"`
	Patterns          []types.Pattern `json:"patterns"`
	ForbiddenZones    []string        `json:"forbidden_zones"`
	IntegrationPoints []string        `json:"integration_points"`
}

type specGeneration struct {
	Assertions []struct {
		Description string `json:"description"`
		Test        string `json:"test"`
		Weight      int    `json:"weight"`
	} `json:"assertions"`
	TestSuite    string `json:"test_suite"`
	TypeContract string `json:"type_contract"`
}

// CompileSpec runs the analyze, generate, and validate steps against an
// Intent whose Parsed field is already set and unambiguous, producing a
// Specification at the given version.
func (c *Compiler) CompileSpec(run *runctx.Run, intent *types.Intent, version int, parent *int) (*types.Specification, error) {
	if len(intent.Parsed.DoneWhen) == 0 {
		return nil, ErrNoTestableConditions
	}
	st := ok(compileState{intent: intent})
	st = chain(st, c.analyzeStep(run))
	st = chain(st, c.generateStep(run))
	spec := chain(st, c.validateStep(version, parent))
	return spec.unwrap()
}

func (c *Compiler) analyzeStep(run *runctx.Run) func(compileState) result[compileState] {
	return func(st compileState) result[compileState] {
		tree, err := c.summarizeTree()
		if err != nil {
			return fail[compileState](fmt.Errorf("%w: %v", ErrCodebaseUnreadable, err))
		}
		prompt := fmt.Sprintf(
			"Given this project file tree:\n%s\n\nAnd this feature request core: %q\n\nReturn JSON with relevant_files, patterns (name, description), forbidden_zones, and integration_points.",
			tree, st.intent.Parsed.Core)
		comp, err := c.Gateway.Complete(run, prompt, aigateway.PurposeAnalyze, c.CallDeadline)
		if err != nil {
			return fail[compileState](fmt.Errorf("%w: %v", ErrAIUnavailable, err))
		}
		var analysis codebaseAnalysis
		if err := json.Unmarshal([]byte(comp.Text), &analysis); err != nil {
			return fail[compileState](fmt.Errorf("%w: %v", ErrMalformedAIResponse, err))
		}
		analysis.RelevantFiles = union(analysis.RelevantFiles, c.keywordMatchedFiles(st.intent))
		st.analysis = analysis
		return ok(st)
	}
}

func (c *Compiler) generateStep(run *runctx.Run) func(compileState) result[compileState] {
	return func(st compileState) result[compileState] {
		if len(st.intent.Parsed.DoneWhen) == 0 {
			return fail[compileState](ErrNoTestableConditions)
		}
		doneWhen := strings.Join(st.intent.Parsed.DoneWhen, "\n")
		prompt := fmt.Sprintf(
			"Produce one executable assertion per done-when criterion, a complete test suite, and a type contract as JSON (assertions[].description/test/weight, test_suite, type_contract), for:\n%s",
			doneWhen)
		comp, err := c.Gateway.Complete(run, prompt, aigateway.PurposeSpec, c.CallDeadline)
		if err != nil {
			return fail[compileState](fmt.Errorf("%w: %v", ErrAIUnavailable, err))
		}
		var gen specGeneration
		if err := json.Unmarshal([]byte(comp.Text), &gen); err != nil {
			return fail[compileState](fmt.Errorf("%w: %v", ErrMalformedAIResponse, err))
		}
		if len(gen.Assertions) == 0 {
			return fail[compileState](ErrNoTestableConditions)
		}
		assertions := make([]types.Assertion, 0, len(gen.Assertions))
		for i, a := range gen.Assertions {
			assertions = append(assertions, types.Assertion{
				ID:          fmt.Sprintf("a%d", i+1),
				Description: a.Description,
				Test:        a.Test,
				Weight:      a.Weight,
			})
		}
		st.assertions = assertions
		st.testSuite = gen.TestSuite
		st.typeContract = gen.TypeContract
		return ok(st)
	}
}

func (c *Compiler) validateStep(version int, parent *int) func(compileState) result[*types.Specification] {
	return func(st compileState) result[*types.Specification] {
		mayTouch := union(st.analysis.RelevantFiles, st.analysis.IntegrationPoints)
		if overlaps(mayTouch, st.analysis.ForbiddenZones) {
			return fail[*types.Specification](ErrContradictoryConstraints)
		}
		spec, err := types.NewSpecification(st.intent.ID, version, parent, st.assertions, st.testSuite,
			st.typeContract, mayTouch, st.analysis.ForbiddenZones, st.analysis.Patterns, time.Now())
		if err != nil {
			return fail[*types.Specification](err)
		}
		return ok(spec)
	}
}

// summarizeTree walks ProjectRoot, excluding configured directories and
// oversized/binary files, and returns a newline-separated relative-path
// listing for the analyze prompt.
func (c *Compiler) summarizeTree() (string, error) {
	exclude := make(map[string]struct{}, len(c.Analysis.ExcludeDirs))
	for _, d := range c.Analysis.ExcludeDirs {
		exclude[d] = struct{}{}
	}
	binary := make(map[string]struct{}, len(c.Analysis.BinaryExtensions))
	for _, ext := range c.Analysis.BinaryExtensions {
		binary[ext] = struct{}{}
	}
	maxBytes := c.Analysis.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = 512 << 10
	}

	var b strings.Builder
	err := filepath.WalkDir(c.ProjectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, excluded := exclude[d.Name()]; excluded && path != c.ProjectRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if _, isBinary := binary[filepath.Ext(path)]; isBinary {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxBytes {
			return nil
		}
		rel, err := filepath.Rel(c.ProjectRoot, path)
		if err != nil {
			return nil
		}
		b.WriteString(rel)
		b.WriteByte('\n')
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// keywordMatchedFiles cross-checks the AI's codebase analysis by indexing
// the project tree and searching it for the Intent's own vocabulary,
// surfacing files the AI's summarized-tree prompt may have missed (it only
// sees paths, not content). Up to 5 matches are unioned into relevant_files;
// a failed index build degrades to no supplement rather than failing
// compilation, since the AI's own analysis is still authoritative.
func (c *Compiler) keywordMatchedFiles(intent *types.Intent) []string {
	exclude := make(map[string]struct{}, len(c.Analysis.ExcludeDirs))
	for _, d := range c.Analysis.ExcludeDirs {
		exclude[d] = struct{}{}
	}
	binary := make(map[string]struct{}, len(c.Analysis.BinaryExtensions))
	for _, ext := range c.Analysis.BinaryExtensions {
		binary[ext] = struct{}{}
	}
	idx, err := buildSourceIndex(c.ProjectRoot, exclude, binary, c.Analysis.MaxFileBytes)
	if err != nil {
		return nil
	}
	query := intent.Parsed.Core + " " + strings.Join(intent.Parsed.Must, " ")
	return idx.search(query, 5)
}

func union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, s := range set {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out
}

func overlaps(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}
