package filter

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/finding"
)

var (
	// ErrInvalidExpression is returned when an expression fails to compile.
	ErrInvalidExpression = errors.New("filter: invalid expression")

	// ErrNotBool is returned when an expression does not evaluate to a
	// boolean.
	ErrNotBool = errors.New("filter: expression must evaluate to bool")
)

// FindingFilter is a compiled predicate over findings.
type FindingFilter struct {
	prg cel.Program
}

// RecordFilter is a compiled predicate over coverage records.
type RecordFilter struct {
	prg cel.Program
}

// CompileFinding compiles a CEL expression into a predicate over findings.
func CompileFinding(expr string) (*FindingFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("plugin_id", cel.IntType),
		cel.Variable("plugin_name", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("severity_level", cel.IntType),
		cel.Variable("cvss3_score", cel.DoubleType),
		cel.Variable("has_metasploit", cel.BoolType),
		cel.Variable("cves", cel.ListType(cel.StringType)),
		cel.Variable("status", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("filter: building environment: %w", err)
	}
	prg, err := compile(env, expr)
	if err != nil {
		return nil, err
	}
	return &FindingFilter{prg: prg}, nil
}

// CompileRecord compiles a CEL expression into a predicate over coverage
// records.
func CompileRecord(expr string) (*RecordFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("finding_id", cel.StringType),
		cel.Variable("hosts", cel.ListType(cel.StringType)),
		cel.Variable("ports", cel.ListType(cel.IntType)),
		cel.Variable("pair_count", cel.IntType),
		cel.Variable("signature", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("filter: building environment: %w", err)
	}
	prg, err := compile(env, expr)
	if err != nil {
		return nil, err
	}
	return &RecordFilter{prg: prg}, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("%w: got %s", ErrNotBool, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: building program: %w", err)
	}
	return prg, nil
}

// Match evaluates the filter against a finding. Evaluation errors, such as
// comparisons against absent optional fields, count as non-matches.
func (f *FindingFilter) Match(fd *finding.Finding) bool {
	score := 0.0
	if fd.CVSS3Score != nil {
		score = *fd.CVSS3Score
	}
	cves := fd.CVEs
	if cves == nil {
		cves = []string{}
	}
	out, _, err := f.prg.Eval(map[string]any{
		"plugin_id":      fd.PluginID,
		"plugin_name":    fd.PluginName,
		"severity":       fd.Severity.String(),
		"severity_level": fd.Severity.Level(),
		"cvss3_score":    score,
		"has_metasploit": fd.HasMetasploit,
		"cves":           cves,
		"status":         string(fd.Status),
	})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

// Apply returns the findings matching the filter, preserving input order.
func (f *FindingFilter) Apply(findings []*finding.Finding) []*finding.Finding {
	out := make([]*finding.Finding, 0, len(findings))
	for _, fd := range findings {
		if f.Match(fd) {
			out = append(out, fd)
		}
	}
	return out
}

// Match evaluates the filter against a coverage record. Records with no
// endpoint set never match.
func (f *RecordFilter) Match(rec coverage.Record) bool {
	if rec.Endpoints == nil {
		return false
	}
	out, _, err := f.prg.Eval(map[string]any{
		"finding_id": rec.FindingID,
		"hosts":      rec.Endpoints.Hosts(),
		"ports":      rec.Endpoints.Ports(),
		"pair_count": rec.Endpoints.PairCount(),
		"signature":  rec.Endpoints.Signature(),
	})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

// Apply returns the records matching the filter, preserving input order.
func (f *RecordFilter) Apply(records []coverage.Record) []coverage.Record {
	out := make([]coverage.Record, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
