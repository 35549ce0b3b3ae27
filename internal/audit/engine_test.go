package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRequiresSchema(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	err := e.AddFacts([]Fact{{Predicate: "item", Args: []interface{}{"apple"}}})
	assert.Error(t, err)
}

func TestEngineDerivesRules(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	require.NoError(t, e.LoadSchemaString(`
Decl edge(X, Y) bound [/string, /string].
Decl reach(X, Y).
reach(X, Y) :- edge(X, Y).
reach(X, Z) :- edge(X, Y), reach(Y, Z).
`))

	require.NoError(t, e.AddFacts([]Fact{
		{Predicate: "edge", Args: []interface{}{"a", "b"}},
		{Predicate: "edge", Args: []interface{}{"b", "c"}},
	}))

	facts, err := e.GetFacts("reach")
	require.NoError(t, err)
	assert.Len(t, facts, 3)
	assert.Equal(t, 2, e.FactCount())
}

func TestEngineRejectsUnknownPredicate(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	require.NoError(t, e.LoadSchemaString(`Decl item(X).`))

	err := e.AddFacts([]Fact{{Predicate: "other", Args: []interface{}{"x"}}})
	assert.Error(t, err)

	err = e.AddFacts([]Fact{{Predicate: "item", Args: []interface{}{"x", "y"}}})
	assert.Error(t, err)
}

func TestEngineClear(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	require.NoError(t, e.LoadSchemaString(`Decl item(X) bound [/string].`))
	require.NoError(t, e.AddFacts([]Fact{{Predicate: "item", Args: []interface{}{"apple"}}}))

	e.Clear()

	facts, err := e.GetFacts("item")
	require.NoError(t, err)
	assert.Empty(t, facts)
	assert.Zero(t, e.FactCount())
}

func TestEngineStringBoundKeepsNumericTokens(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	require.NoError(t, e.LoadSchemaString(`Decl page(X) bound [/string].`))
	require.NoError(t, e.AddFacts([]Fact{{Predicate: "page", Args: []interface{}{"47"}}}))

	facts, err := e.GetFacts("page")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "47", facts[0].Args[0])
}
