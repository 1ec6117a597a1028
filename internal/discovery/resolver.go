// Package discovery resolves a two-string decision procedure from evaluated
// Go source. Callers hand it a file or snippet that defines one or more
// functions; the resolver evaluates it in a sandboxed Yaegi interpreter,
// finds every func(string, string) bool, picks the most plausible candidate
// by name, and returns it as an invocable Predicate.
//
// Interpretation instead of compilation keeps the loop fast and hermetic:
// no go build, no binary artifacts, and an import whitelist that blocks
// filesystem, network and exec access.
package discovery

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"skipmatch/internal/logging"
)

// PredicateFunc is the required shape of a resolved decision procedure.
type PredicateFunc func(string, string) bool

// Predicate is a resolved, callable decision procedure.
type Predicate struct {
	// Name is the function name the resolver selected.
	Name string

	fn PredicateFunc
}

// keywordPriority orders candidate selection when several functions match
// the signature. Earlier entries win; matching is case-insensitive on the
// function name.
var keywordPriority = []string{
	"equivalent",
	"equal",
	"possibly",
	"match",
	"solve",
	"check",
	"compare",
}

// Resolver evaluates Go source and extracts a Predicate.
type Resolver struct {
	// Whitelist of allowed stdlib packages
	allowedPackages map[string]bool
}

// NewResolver creates a Resolver with the safe stdlib whitelist, extended
// by extra (still stdlib-only in spirit; callers own the risk of widening).
func NewResolver(extra ...string) *Resolver {
	r := &Resolver{
		allowedPackages: map[string]bool{
			"strings": true,
			"strconv": true,
			"fmt":     true,
			"math":    true,
			"sort":    true,
			"unicode": true,
			"bytes":   true,
			"regexp":  true,
			"time":    true,

			// EXPLICITLY BLOCKED (unsafe packages):
			// "os" - filesystem access
			// "os/exec" - command execution
			// "net", "net/http" - network access
			// "syscall", "unsafe" - system access
		},
	}
	for _, pkg := range extra {
		r.allowedPackages[pkg] = true
	}
	return r
}

// ResolveFile reads path and resolves a Predicate from its contents.
func (r *Resolver) ResolveFile(path string) (*Predicate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return r.Resolve(string(data))
}

// Resolve evaluates source and selects the decision procedure.
func (r *Resolver) Resolve(source string) (*Predicate, error) {
	if err := r.validateImports(source); err != nil {
		return nil, fmt.Errorf("invalid imports: %w", err)
	}

	full := wrapCode(source)

	candidates, err := functionNames(full)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("source defines no functions")
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err := i.Eval(full); err != nil {
		return nil, fmt.Errorf("code evaluation failed: %w", err)
	}

	// Keep only functions with the required signature.
	matching := make(map[string]PredicateFunc, len(candidates))
	var names []string
	for _, c := range candidates {
		v, err := i.Eval(c.name)
		if err != nil {
			continue
		}
		fn, ok := v.Interface().(func(string, string) bool)
		if !ok {
			logging.DiscoveryDebug("skipping %s: wrong signature", c.name)
			continue
		}
		matching[c.name] = fn
		names = append(names, c.name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no func(string, string) bool found among %d functions", len(candidates))
	}

	name := selectCandidate(names, candidates)
	logging.Discovery("selected %s from %d candidate(s)", name, len(names))
	return &Predicate{Name: name, fn: matching[name]}, nil
}

// selectCandidate picks one function name. A single candidate wins outright;
// otherwise the keyword priority list decides, and as a last resort the
// function defined last in the source wins (the main logic tends to come
// after its helpers).
func selectCandidate(names []string, declared []declaredFunc) string {
	if len(names) == 1 {
		return names[0]
	}
	for _, kw := range keywordPriority {
		hits := make([]string, 0, len(names))
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), kw) {
				hits = append(hits, n)
			}
		}
		if len(hits) > 0 {
			sort.Strings(hits)
			return hits[0]
		}
	}

	byName := make(map[string]int, len(declared))
	for _, d := range declared {
		byName[d.name] = d.line
	}
	best := names[0]
	for _, n := range names[1:] {
		if byName[n] > byName[best] {
			best = n
		}
	}
	return best
}

// Invoke calls the predicate in a fresh goroutine and honors ctx, so a
// runaway interpreted function cannot wedge the caller. Panics inside
// interpreted code surface as errors.
func (p *Predicate) Invoke(ctx context.Context, left, right string) (bool, error) {
	resultCh := make(chan bool, 1)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				errCh <- fmt.Errorf("predicate %s panicked: %v", p.Name, rec)
			}
		}()
		resultCh <- p.fn(left, right)
	}()

	select {
	case v := <-resultCh:
		return v, nil
	case err := <-errCh:
		return false, err
	case <-ctx.Done():
		return false, fmt.Errorf("predicate %s: %w", p.Name, ctx.Err())
	}
}

// declaredFunc is a top-level function declaration found in the source.
type declaredFunc struct {
	name string
	line int
}

// functionNames lists top-level non-method function declarations with their
// line numbers. Parsing (rather than interrogating the interpreter) sees
// unexported names too, which is what user snippets usually contain.
func functionNames(source string) ([]declaredFunc, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "snippet.go", source, 0)
	if err != nil {
		return nil, err
	}
	var out []declaredFunc
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv != nil || fd.Name.Name == "main" || fd.Name.Name == "init" {
			continue
		}
		out = append(out, declaredFunc{
			name: fd.Name.Name,
			line: fset.Position(fd.Pos()).Line,
		})
	}
	return out, nil
}

// validateImports checks that the code only imports allowed packages.
func (r *Resolver) validateImports(code string) error {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, ")"):
			inBlock = false
		case inBlock && trimmed != "":
			imports = append(imports, strings.Trim(trimmed, `"`))
		case strings.HasPrefix(trimmed, "import "):
			imports = append(imports, strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`))
		}
	}

	var forbidden []string
	for _, pkg := range imports {
		if !r.allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %v", forbidden)
	}
	return nil
}

// wrapCode wraps a bare snippet in a main package if needed.
func wrapCode(code string) string {
	if strings.Contains(code, "package ") {
		return code
	}
	return "package main\n\n" + code
}
