package story

import (
	"encoding/json"
	"fmt"
	"os"
)

// Formatos configurables del mensaje individual de fin de juego.
const (
	EndGameDecisionBased = "individual-decision-based"
	EndGameRankBased     = "rankings-within-group-based"
)

// Formato del mensaje grupal de fin de juego.
const EndGameGroupSuccessFailure = "group-success-failure-based"

// Tokens reservados que marcan los límites de nivel y de juego.
const (
	EndLevelPrefix = "END-LEVEL"
	EndGameKey     = "END-GAME"
	GroupSuffix    = "-GROUP"
)

// Choice una opción dentro de un checkpoint de la historia.
type Choice struct {
	Key          string     `json:"key"`
	ValidAnswers []string   `json:"valid_answers"`
	Conditions   *Condition `json:"conditions"`
	Next         string     `json:"next"`
}

// Checkpoint un punto de la historia: lista ordenada de opciones y, para las
// entradas END-LEVEL*-GROUP y END-GAME, los campos de resolución grupal.
type Checkpoint struct {
	Name      string   `json:"name,omitempty"`
	Choices   []Choice `json:"choices,omitempty"`
	NextLevel string   `json:"next_level,omitempty"`

	// Solo en la entrada END-GAME.
	IndivEndGameFormat     string            `json:"indiv-message-end-game-format,omitempty"`
	GroupEndGameFormat     string            `json:"group-message-end-game-format,omitempty"`
	IndivLevelSuccessPaths []string          `json:"indiv-level-success-paths,omitempty"`
	GroupLevelSuccessPaths []string          `json:"group-level-success-paths,omitempty"`
	GroupSuccessFailure    map[string]string `json:"group-success-failure-paths,omitempty"`
	RankPaths              map[string]string `json:"indiv-rank-paths,omitempty"`
}

// Delays tiempos de entrega en milisegundos. Cero usa el default.
type Delays struct {
	EndLevelGroupMs    int64 `json:"end_level_group_ms,omitempty"`
	NextLevelStartMs   int64 `json:"next_level_start_ms,omitempty"`
	UniversalEndGameMs int64 `json:"universal_end_game_ms,omitempty"`
	SoloOfferMs        int64 `json:"solo_offer_ms,omitempty"`
}

// Config configuración externa de una historia, de solo lectura.
type Config struct {
	Name               string                `json:"name,omitempty"`
	StartPath          string                `json:"story_start_path"`
	AlphaWaitPath      string                `json:"alpha_wait_path"`
	BetaJoinAskPath    string                `json:"beta_join_ask_path"`
	BetaWaitPath       string                `json:"beta_wait_path"`
	AlphaStartAskPath  string                `json:"alpha_start_ask_path"`
	GameInProgressPath string                `json:"game_in_progress_path"`
	AskSoloPath        string                `json:"ask_solo_play_path"`
	Delays             Delays                `json:"delays,omitempty"`
	Story              map[string]Checkpoint `json:"story"`
}

// Provider resuelve la configuración de una historia por su id.
type Provider interface {
	Get(storyID string) (*Config, error)
}

// FileProvider mantiene en memoria las historias cargadas de un archivo JSON.
type FileProvider struct {
	stories map[string]*Config
}

// Parse parsea el JSON de historias: un objeto {storyID: config}.
func Parse(data []byte) (*FileProvider, error) {
	var stories map[string]*Config
	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("error parsing historias: %v", err)
	}
	return &FileProvider{stories: stories}, nil
}

// LoadFile carga las historias desde un archivo JSON.
func LoadFile(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo de historias: %v", err)
	}
	return Parse(data)
}

// Get obtiene la configuración de una historia.
func (p *FileProvider) Get(storyID string) (*Config, error) {
	cfg, ok := p.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("historia %s no configurada", storyID)
	}
	return cfg, nil
}

// Count cantidad de historias cargadas.
func (p *FileProvider) Count() int {
	return len(p.stories)
}
