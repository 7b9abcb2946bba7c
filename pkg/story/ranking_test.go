package story

import (
	"testing"

	"github.com/backsoul/storysms/pkg/models"
)

// gameWithSuccessCounts arma una partida de 4 jugadores donde cada uno tiene
// la cantidad indicada de paths de éxito en su historial.
func gameWithSuccessCounts(counts []int) *models.GameSession {
	game := &models.GameSession{}
	phones := []string{"15555550100", "15555550101", "15555550102", "15555550103"}
	for i, count := range counts {
		game.PlayerStatus = append(game.PlayerStatus, models.PlayerStatus{Phone: phones[i], Path: "done"})
		for j := 0; j < count; j++ {
			game.AddPathResult(phones[i], "S")
		}
	}
	return game
}

func rankingConfig() *Config {
	return &Config{
		Story: map[string]Checkpoint{
			EndGameKey: {
				IndivLevelSuccessPaths: []string{"S"},
				RankPaths: map[string]string{
					"1": "210", "1-tied": "211",
					"2": "212", "2-tied": "213",
					"3": "214", "4": "215",
				},
			},
		},
	}
}

func ranks(game *models.GameSession) []string {
	labels := make([]string, len(game.PlayerStatus))
	for i := range game.PlayerStatus {
		labels[i] = game.PlayerStatus[i].Rank
	}
	return labels
}

func TestRankingsTiedFirstPlace(t *testing.T) {
	game := gameWithSuccessCounts([]int{5, 5, 3, 1})
	EnsureRankings(game, rankingConfig())

	want := []string{"1-tied", "1-tied", "3", "4"}
	for i, label := range ranks(game) {
		if label != want[i] {
			t.Errorf("jugador %d: rank %q, se esperaba %q", i, label, want[i])
		}
	}
}

func TestRankingsTiedSecondPlace(t *testing.T) {
	game := gameWithSuccessCounts([]int{5, 3, 3, 1})
	EnsureRankings(game, rankingConfig())

	want := []string{"1", "2-tied", "2-tied", "4"}
	for i, label := range ranks(game) {
		if label != want[i] {
			t.Errorf("jugador %d: rank %q, se esperaba %q", i, label, want[i])
		}
	}
}

func TestRankingsNoTies(t *testing.T) {
	game := gameWithSuccessCounts([]int{5, 4, 3, 2})
	EnsureRankings(game, rankingConfig())

	want := []string{"1", "2", "3", "4"}
	for i, label := range ranks(game) {
		if label != want[i] {
			t.Errorf("jugador %d: rank %q, se esperaba %q", i, label, want[i])
		}
	}
}

func TestRankingsLowerTiesNotAnnotated(t *testing.T) {
	// Empate en tercer lugar: sin sufijo, solo el podio se anota.
	game := gameWithSuccessCounts([]int{5, 4, 2, 2})
	EnsureRankings(game, rankingConfig())

	want := []string{"1", "2", "3", "3"}
	for i, label := range ranks(game) {
		if label != want[i] {
			t.Errorf("jugador %d: rank %q, se esperaba %q", i, label, want[i])
		}
	}
}

func TestRankingsComputedOnce(t *testing.T) {
	game := gameWithSuccessCounts([]int{5, 3, 2, 1})
	cfg := rankingConfig()
	EnsureRankings(game, cfg)

	// Nuevos éxitos posteriores al cálculo no alteran el ranking guardado.
	game.AddPathResult("15555550103", "S")
	game.AddPathResult("15555550103", "S")
	EnsureRankings(game, cfg)

	want := []string{"1", "2", "3", "4"}
	for i, label := range ranks(game) {
		if label != want[i] {
			t.Errorf("jugador %d: rank %q, se esperaba %q", i, label, want[i])
		}
	}
}

func TestRankPathMapsLabelToPath(t *testing.T) {
	game := gameWithSuccessCounts([]int{5, 5, 3, 1})
	cfg := rankingConfig()

	if got := RankPath(game, "15555550100", cfg); got != "211" {
		t.Errorf("path del primer empatado: %q, se esperaba 211", got)
	}
	if got := RankPath(game, "15555550102", cfg); got != "214" {
		t.Errorf("path del tercero: %q, se esperaba 214", got)
	}
}
