package models

import "time"

// Tipos de juego soportados.
const (
	GameTypeNormal = ""
	GameTypeSolo   = "solo"
)

// GameSession representa el documento de una partida de historia competitiva.
// El alpha invita hasta 3 betas; todos avanzan juntos por la historia.
type GameSession struct {
	ID               string         `json:"id"`
	StoryID          string         `json:"storyId"`
	AlphaName        string         `json:"alphaName"`
	AlphaPhone       string         `json:"alphaPhone"`
	Betas            []Beta         `json:"betas"`
	GameType         string         `json:"gameType"` // "" (normal) o "solo"
	Started          bool           `json:"started"`
	Ended            bool           `json:"ended"`
	PlayerStatus     []PlayerStatus `json:"playerStatus"`
	StoryResults     []StoryResult  `json:"storyResults"`
	GroupEndGamePath string         `json:"groupEndGamePath,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	LastActivity     time.Time      `json:"lastActivity"`
}

// Beta jugador invitado a la partida
type Beta struct {
	Phone          string `json:"phone"`
	InviteAccepted bool   `json:"inviteAccepted"`
}

// PlayerStatus estado actual de un jugador dentro de la partida
type PlayerStatus struct {
	Phone string `json:"phone"`
	Path  string `json:"path"` // opt-in path actual del jugador
	Rank  string `json:"rank,omitempty"`
}

// StoryResult registro de auditoría, solo se agrega, nunca se modifica
type StoryResult struct {
	Phone  string `json:"phone"`
	Path   string `json:"path"`
	Answer string `json:"answer,omitempty"`
}

// CurrentPath devuelve el path actual de un jugador, o "" si no tiene estado.
func (g *GameSession) CurrentPath(phone string) string {
	for i := range g.PlayerStatus {
		if g.PlayerStatus[i].Phone == phone {
			return g.PlayerStatus[i].Path
		}
	}
	return ""
}

// SetCurrentPath actualiza el estado del jugador, creándolo si no existe.
func (g *GameSession) SetCurrentPath(phone, path string) {
	for i := range g.PlayerStatus {
		if g.PlayerStatus[i].Phone == phone {
			g.PlayerStatus[i].Path = path
			return
		}
	}
	g.PlayerStatus = append(g.PlayerStatus, PlayerStatus{Phone: phone, Path: path})
}

// AddResult agrega un registro con la respuesta elegida al historial.
func (g *GameSession) AddResult(phone, path, answer string) {
	g.StoryResults = append(g.StoryResults, StoryResult{Phone: phone, Path: path, Answer: answer})
}

// AddPathResult agrega un registro de path asignado (sin respuesta) al historial.
func (g *GameSession) AddPathResult(phone, path string) {
	g.StoryResults = append(g.StoryResults, StoryResult{Phone: phone, Path: path})
}
