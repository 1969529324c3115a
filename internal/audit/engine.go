package audit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
)

// DefaultFactLimit bounds the facts one engine accepts.
const DefaultFactLimit = 10000

// Engine is a small Mangle program with its own in-memory fact store.
// Arguments starting with "/" are stored as names, all others as strings.
type Engine struct {
	mu             sync.RWMutex
	store          factstore.ConcurrentFactStore
	programInfo    *analysis.ProgramInfo
	predicateIndex map[string]ast.PredicateSym
	factCount      int
	factLimit      int
}

// NewEngine parses and analyzes program.
func NewEngine(program string, factLimit int) (*Engine, error) {
	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze program: %w", err)
	}

	idx := make(map[string]ast.PredicateSym, len(programInfo.Decls))
	for sym := range programInfo.Decls {
		idx[sym.Symbol] = sym
	}
	return &Engine{
		store:          factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
		programInfo:    programInfo,
		predicateIndex: idx,
		factLimit:      factLimit,
	}, nil
}

// AddFact inserts one fact. Rules are not re-evaluated until Eval.
func (e *Engine) AddFact(predicate string, args ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sym, ok := e.predicateIndex[predicate]
	if !ok {
		return fmt.Errorf("predicate %s is not declared", predicate)
	}
	if sym.Arity != len(args) {
		return fmt.Errorf("predicate %s expects %d args, got %d", predicate, sym.Arity, len(args))
	}
	if e.factLimit > 0 && e.factCount >= e.factLimit {
		return fmt.Errorf("fact limit exceeded: %d", e.factLimit)
	}

	terms := make([]ast.BaseTerm, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "/") {
			name, err := ast.Name(a)
			if err != nil {
				return fmt.Errorf("predicate %s arg %d: %w", predicate, i, err)
			}
			terms[i] = name
			continue
		}
		terms[i] = ast.String(a)
	}
	if e.store.Add(ast.Atom{Predicate: sym, Args: terms}) {
		e.factCount++
	}
	return nil
}

// Eval runs the program's rules to a fixpoint.
func (e *Engine) Eval() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := mengine.EvalProgramWithStats(e.programInfo, e.store)
	return err
}

// GetFacts returns the arguments of every fact of predicate.
func (e *Engine) GetFacts(predicate string) ([][]string, error) {
	e.mu.RLock()
	sym, ok := e.predicateIndex[predicate]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var out [][]string
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		row := make([]string, len(atom.Args))
		for i, arg := range atom.Args {
			c, ok := arg.(ast.Constant)
			if !ok {
				return fmt.Errorf("predicate %s: non-constant argument %v", predicate, arg)
			}
			row[i] = c.Symbol
		}
		out = append(out, row)
		return nil
	})
	return out, err
}
