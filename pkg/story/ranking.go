package story

import (
	"sort"
	"strconv"

	"github.com/backsoul/storysms/pkg/models"
)

// EnsureRankings calcula el ranking de todos los jugadores y lo guarda en el
// documento. Se calcula una sola vez por partida; llamadas posteriores son
// lecturas idempotentes.
//
// El conteo de éxitos de cada jugador es la cantidad de paths de éxito
// individual que aparecen en su historial. Ranking por competencia en orden
// descendente; los empates solo se anotan con "-tied" en el primer y segundo
// puesto.
func EnsureRankings(game *models.GameSession, cfg *Config) {
	for i := range game.PlayerStatus {
		if game.PlayerStatus[i].Rank != "" {
			return
		}
	}

	successPaths := cfg.Story[EndGameKey].IndivLevelSuccessPaths

	type playerCount struct {
		phone string
		count int
	}

	counts := make([]playerCount, 0, len(game.PlayerStatus))
	for i := range game.PlayerStatus {
		phone := game.PlayerStatus[i].Phone
		count := 0
		for _, path := range successPaths {
			for j := range game.StoryResults {
				if game.StoryResults[j].Phone == phone && game.StoryResults[j].Path == path {
					count++
				}
			}
		}
		counts = append(counts, playerCount{phone: phone, count: count})
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].count > counts[b].count
	})

	// Asignar rangos 1..N saltando posiciones después de un empate.
	i := 0
	for i < len(counts) {
		j := i
		for j < len(counts) && counts[j].count == counts[i].count {
			j++
		}
		rank := i + 1
		label := strconv.Itoa(rank)
		if j-i > 1 && rank <= 2 {
			label += "-tied"
		}
		for k := i; k < j; k++ {
			setRank(game, counts[k].phone, label)
		}
		i = j
	}
}

// RankPath devuelve el path de fin de juego que corresponde al ranking del
// jugador, calculando los rankings si aún no existen.
func RankPath(game *models.GameSession, phone string, cfg *Config) string {
	EnsureRankings(game, cfg)

	for i := range game.PlayerStatus {
		if game.PlayerStatus[i].Phone == phone {
			return cfg.Story[EndGameKey].RankPaths[game.PlayerStatus[i].Rank]
		}
	}
	return ""
}

func setRank(game *models.GameSession, phone, rank string) {
	for i := range game.PlayerStatus {
		if game.PlayerStatus[i].Phone == phone {
			game.PlayerStatus[i].Rank = rank
			return
		}
	}
}
