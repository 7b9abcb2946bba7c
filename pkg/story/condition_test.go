package story

import (
	"encoding/json"
	"testing"

	"github.com/backsoul/storysms/pkg/models"
)

func parseCondition(t *testing.T, raw string) *Condition {
	t.Helper()
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("error parseando condición %s: %v", raw, err)
	}
	return &c
}

func TestEvaluateLeaf(t *testing.T) {
	results := []models.StoryResult{
		{Phone: "15555550100", Path: "61", Answer: "AYUDAR"},
		{Phone: "15555550101", Path: "62", Answer: "IGNORAR"},
	}

	cond := parseCondition(t, `"AYUDAR"`)
	if !cond.Evaluate("15555550100", results, MatchAnswer) {
		t.Error("la hoja debería coincidir con la respuesta del jugador")
	}
	if cond.Evaluate("15555550101", results, MatchAnswer) {
		t.Error("la hoja no debería coincidir con la respuesta de otro jugador")
	}

	pathCond := parseCondition(t, `"61"`)
	if !pathCond.Evaluate("15555550100", results, MatchPath) {
		t.Error("la hoja debería coincidir con el path registrado")
	}
	if pathCond.Evaluate("15555550100", results, MatchAnswer) {
		t.Error("el campo answer no debería coincidir con un path")
	}
}

func TestEvaluateOrMatchesDisjunction(t *testing.T) {
	results := []models.StoryResult{
		{Phone: "1", Path: "10", Answer: "A"},
	}

	a := parseCondition(t, `"A"`)
	b := parseCondition(t, `"B"`)
	or := parseCondition(t, `{"$or": ["A", "B"]}`)

	want := a.Evaluate("1", results, MatchAnswer) || b.Evaluate("1", results, MatchAnswer)
	if or.Evaluate("1", results, MatchAnswer) != want {
		t.Error("$or debe ser la disyunción de sus hijos")
	}

	orMiss := parseCondition(t, `{"$or": ["X", "Z"]}`)
	if orMiss.Evaluate("1", results, MatchAnswer) {
		t.Error("$or sin hijos satisfechos debe ser falso")
	}
}

func TestEvaluateAndMatchesConjunction(t *testing.T) {
	results := []models.StoryResult{
		{Phone: "1", Path: "10", Answer: "A"},
		{Phone: "1", Path: "11", Answer: "B"},
	}

	and := parseCondition(t, `{"$and": ["A", "B"]}`)
	if !and.Evaluate("1", results, MatchAnswer) {
		t.Error("$and con ambos hijos satisfechos debe ser verdadero")
	}

	andMiss := parseCondition(t, `{"$and": ["A", "Z"]}`)
	if andMiss.Evaluate("1", results, MatchAnswer) {
		t.Error("$and con un hijo falso debe ser falso")
	}
}

func TestEvaluateNestedCondition(t *testing.T) {
	cond := parseCondition(t, `{"$or": [{"$and": ["A", "B"]}, "C"]}`)

	withC := []models.StoryResult{{Phone: "1", Answer: "C"}}
	if !cond.Evaluate("1", withC, MatchAnswer) {
		t.Error("la rama C del $or debería satisfacer la condición")
	}

	withA := []models.StoryResult{{Phone: "1", Answer: "A"}}
	if cond.Evaluate("1", withA, MatchAnswer) {
		t.Error("solo A no debería satisfacer el $and anidado")
	}

	withAB := []models.StoryResult{{Phone: "1", Answer: "A"}, {Phone: "1", Answer: "B"}}
	if !cond.Evaluate("1", withAB, MatchAnswer) {
		t.Error("A y B deberían satisfacer el $and anidado")
	}
}

func TestEvaluateEmptyConditionIsFalse(t *testing.T) {
	results := []models.StoryResult{{Phone: "1", Answer: "A"}}

	var nilCond *Condition
	if nilCond.Evaluate("1", results, MatchAnswer) {
		t.Error("una condición nil debe ser falsa")
	}
	if (&Condition{}).Evaluate("1", results, MatchAnswer) {
		t.Error("una condición vacía debe ser falsa")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	results := []models.StoryResult{{Phone: "1", Answer: "A"}}
	cond := parseCondition(t, `{"$or": ["A", {"$and": ["B", "C"]}]}`)

	first := cond.Evaluate("1", results, MatchAnswer)
	second := cond.Evaluate("1", results, MatchAnswer)
	if first != second {
		t.Error("evaluar dos veces con el mismo historial debe dar lo mismo")
	}
}
