package models

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GameCreateRequest request para crear una partida.
// Los campos beta pueden venir vacíos; solo los teléfonos válidos se invitan.
type GameCreateRequest struct {
	StoryID        string `json:"story_id"`
	AlphaMobile    string `json:"alpha_mobile"`
	AlphaFirstName string `json:"alpha_first_name"`
	BetaMobile0    string `json:"beta_mobile_0"`
	BetaMobile1    string `json:"beta_mobile_1"`
	BetaMobile2    string `json:"beta_mobile_2"`
	GameType       string `json:"game_type"`
}

// PlayerActionRequest request entrante de un jugador (join, start, answer).
// `args` es el texto crudo del SMS.
type PlayerActionRequest struct {
	Phone string `json:"phone"`
	Args  string `json:"args"`
}

// GameResponse respuesta de partida
type GameResponse struct {
	Game    *GameSession  `json:"game,omitempty"`
	Games   []GameSession `json:"games,omitempty"`
	Message string        `json:"message,omitempty"`
}
