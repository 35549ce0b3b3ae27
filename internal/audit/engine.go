package audit

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// EngineConfig holds Mangle engine limits.
type EngineConfig struct {
	FactLimit int  `yaml:"fact_limit" json:"fact_limit"`
	AutoEval  bool `yaml:"auto_eval" json:"auto_eval"`
}

// DefaultEngineConfig returns the limits used by the CLI.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FactLimit: 100000,
		AutoEval:  true,
	}
}

// Engine is a small wrapper around an in-memory Google Mangle program.
type Engine struct {
	config EngineConfig

	mu             sync.RWMutex
	store          factstore.ConcurrentFactStore
	baseStore      factstore.FactStoreWithRemove
	programInfo    *analysis.ProgramInfo
	predicateIndex map[string]ast.PredicateSym
	decls          map[ast.PredicateSym]*ast.Decl
	factCount      int
}

// Fact is a predicate applied to Go values.
type Fact struct {
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
}

// NewEngine creates an empty engine. LoadSchemaString must be called before
// facts can be added.
func NewEngine(cfg EngineConfig) *Engine {
	baseStore := factstore.NewSimpleInMemoryStore()
	return &Engine{
		config:         cfg,
		baseStore:      baseStore,
		store:          factstore.NewConcurrentFactStore(baseStore),
		predicateIndex: make(map[string]ast.PredicateSym),
		decls:          make(map[ast.PredicateSym]*ast.Decl),
	}
}

// LoadSchemaString parses and analyzes a Mangle program.
func (e *Engine) LoadSchemaString(schema string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return fmt.Errorf("failed to analyze schema: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.programInfo = programInfo
	e.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))
	e.decls = make(map[ast.PredicateSym]*ast.Decl, len(programInfo.Decls))
	for sym, decl := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
		e.decls[sym] = decl
	}
	return nil
}

// AddFacts inserts facts and, with AutoEval, re-evaluates the rules.
func (e *Engine) AddFacts(facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programInfo == nil {
		return fmt.Errorf("no schema loaded; call LoadSchemaString first")
	}

	for _, fact := range facts {
		if err := e.insertFactLocked(fact); err != nil {
			return err
		}
	}

	if e.config.AutoEval {
		return e.evalLocked()
	}
	return nil
}

// Eval runs the rules over the current facts.
func (e *Engine) Eval() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programInfo == nil {
		return fmt.Errorf("no schema loaded; call LoadSchemaString first")
	}
	return e.evalLocked()
}

func (e *Engine) evalLocked() error {
	if _, err := mengine.EvalProgramWithStats(e.programInfo, e.store); err != nil {
		return fmt.Errorf("rule evaluation failed: %w", err)
	}
	return nil
}

func (e *Engine) insertFactLocked(fact Fact) error {
	if e.config.FactLimit > 0 && e.factCount >= e.config.FactLimit {
		return fmt.Errorf("%w: %d", ErrFactLimit, e.config.FactLimit)
	}

	atom, err := e.factToAtomLocked(fact)
	if err != nil {
		return err
	}
	if e.store.Add(atom) {
		e.factCount++
	}
	return nil
}

func (e *Engine) factToAtomLocked(fact Fact) (ast.Atom, error) {
	sym, ok := e.predicateIndex[fact.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared in schema", fact.Predicate)
	}
	if len(fact.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", fact.Predicate, sym.Arity, len(fact.Args))
	}

	bounds := e.boundsLocked(sym)
	args := make([]ast.BaseTerm, len(fact.Args))
	for i, raw := range fact.Args {
		var expected ast.ConstantType = -1
		if i < len(bounds) {
			expected = bounds[i]
		}
		term, err := toTerm(raw, expected)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", fact.Predicate, i, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// boundsLocked reads the first bound declaration of sym, if any.
func (e *Engine) boundsLocked(sym ast.PredicateSym) []ast.ConstantType {
	decl := e.decls[sym]
	if decl == nil || len(decl.Bounds) == 0 {
		return nil
	}
	out := make([]ast.ConstantType, len(decl.Bounds[0].Bounds))
	for i, b := range decl.Bounds[0].Bounds {
		out[i] = -1
		c, ok := b.(ast.Constant)
		if !ok {
			continue
		}
		switch c.Symbol {
		case "/string":
			out[i] = ast.StringType
		case "/number":
			out[i] = ast.NumberType
		case "/name":
			out[i] = ast.NameType
		}
	}
	return out
}

// toTerm converts a Go value to a Mangle term. Page identifiers are always
// declared /string so tokens like "47" and "abc" are stored the same way.
func toTerm(value interface{}, expected ast.ConstantType) (ast.BaseTerm, error) {
	switch v := value.(type) {
	case string:
		if expected == ast.NameType {
			return ast.Name("/" + v)
		}
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	case ast.BaseTerm:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported fact argument type %T", value)
}

// GetFacts returns every stored or derived fact for predicate.
func (e *Engine) GetFacts(predicate string) ([]Fact, error) {
	e.mu.RLock()
	sym, ok := e.predicateIndex[predicate]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var results []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = fromTerm(arg)
		}
		results = append(results, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return results, err
}

// FactCount returns the number of inserted base facts.
func (e *Engine) FactCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.factCount
}

// Clear drops all facts but keeps the loaded schema.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseStore = factstore.NewSimpleInMemoryStore()
	e.store = factstore.NewConcurrentFactStore(e.baseStore)
	e.factCount = 0
}

func fromTerm(term ast.BaseTerm) interface{} {
	c, ok := term.(ast.Constant)
	if !ok {
		return fmt.Sprintf("%v", term)
	}
	switch c.Type {
	case ast.StringType, ast.NameType, ast.BytesType:
		return c.Symbol
	case ast.NumberType:
		return c.NumValue
	case ast.Float64Type:
		return math.Float64frombits(uint64(c.NumValue))
	default:
		return c.String()
	}
}
