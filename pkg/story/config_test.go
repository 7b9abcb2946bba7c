package story

import "testing"

const sampleStories = `{
  "100": {
    "name": "Historia de prueba",
    "story_start_path": "170001",
    "alpha_wait_path": "170010",
    "beta_join_ask_path": "170011",
    "story": {
      "170001": {
        "choices": [
          { "key": "SI", "valid_answers": ["Y", "YES"], "next": "END-LEVEL1" }
        ]
      },
      "END-LEVEL1": {
        "choices": [
          { "key": "exito", "conditions": { "$or": ["SI", { "$and": ["A", "B"] }] }, "next": "170061" }
        ]
      },
      "END-GAME": {
        "indiv-message-end-game-format": "rankings-within-group-based",
        "indiv-rank-paths": { "1": "170210", "1-tied": "170211" }
      }
    }
  }
}`

func TestParseStories(t *testing.T) {
	provider, err := Parse([]byte(sampleStories))
	if err != nil {
		t.Fatalf("error parseando historias: %v", err)
	}
	if provider.Count() != 1 {
		t.Fatalf("se esperaba 1 historia, hubo %d", provider.Count())
	}

	cfg, err := provider.Get("100")
	if err != nil {
		t.Fatalf("error obteniendo historia 100: %v", err)
	}
	if cfg.StartPath != "170001" {
		t.Errorf("start path: %q", cfg.StartPath)
	}

	// Las condiciones quedan parseadas como variantes al cargar, no se
	// reinterpretan en cada evaluación.
	cond := cfg.Story["END-LEVEL1"].Choices[0].Conditions
	if cond == nil || len(cond.Or) != 2 {
		t.Fatalf("condición $or mal parseada: %+v", cond)
	}
	if cond.Or[0].Leaf != "SI" || len(cond.Or[1].And) != 2 {
		t.Errorf("hijos de la condición mal parseados: %+v", cond)
	}

	endGame := cfg.Story[EndGameKey]
	if endGame.IndivEndGameFormat != EndGameRankBased {
		t.Errorf("formato de fin de juego: %q", endGame.IndivEndGameFormat)
	}
	if endGame.RankPaths["1-tied"] != "170211" {
		t.Errorf("rank paths mal parseados: %+v", endGame.RankPaths)
	}
}

func TestGetUnknownStoryFails(t *testing.T) {
	provider, err := Parse([]byte(sampleStories))
	if err != nil {
		t.Fatalf("error parseando historias: %v", err)
	}
	if _, err := provider.Get("999"); err == nil {
		t.Error("una historia no configurada debe dar error")
	}
}
