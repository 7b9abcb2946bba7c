package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/backsoul/storysms/pkg/models"
	"github.com/backsoul/storysms/pkg/services"
	websocketHub "github.com/backsoul/storysms/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// GameHandler maneja las peticiones HTTP del juego de historias
type GameHandler struct {
	gameService *services.GameService
	hub         *websocketHub.Hub
}

// NewGameHandler crea una nueva instancia del handler de partidas
func NewGameHandler(gameService *services.GameService, hub *websocketHub.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // Permitir conexiones desde cualquier origen en desarrollo
	},
}

// CreateGame maneja POST /api/games
func (h *GameHandler) CreateGame(ctx *fasthttp.RequestCtx) {
	var request models.GameCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	// El story_id también puede venir como query param.
	if request.StoryID == "" {
		request.StoryID = string(ctx.QueryArgs().Peek("story_id"))
	}

	game, err := h.gameService.CreateGame(&request)
	if err != nil {
		var validation *services.ValidationError
		if errors.As(err, &validation) {
			h.respondWithError(ctx, fasthttp.StatusNotAcceptable, validation.Reason)
			return
		}
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error creando partida: %v", err))
		return
	}

	responseData := models.GameResponse{
		Game:    game,
		Message: "Partida creada exitosamente",
	}

	h.respondWithSuccess(ctx, responseData, "Partida creada exitosamente")
}

// JoinGame maneja POST /api/games/join
func (h *GameHandler) JoinGame(ctx *fasthttp.RequestCtx) {
	request, ok := h.parseAction(ctx)
	if !ok {
		return
	}

	if err := h.gameService.JoinGame(request.Phone, request.Args); err != nil {
		h.respondActionError(ctx, err)
		return
	}

	h.respondWithSuccess(ctx, nil, "OK")
}

// ForceStart maneja POST /api/games/start
func (h *GameHandler) ForceStart(ctx *fasthttp.RequestCtx) {
	request, ok := h.parseAction(ctx)
	if !ok {
		return
	}

	if err := h.gameService.ForceStart(request.Phone, request.Args); err != nil {
		h.respondActionError(ctx, err)
		return
	}

	h.respondWithSuccess(ctx, nil, "OK")
}

// Answer maneja POST /api/games/answer
func (h *GameHandler) Answer(ctx *fasthttp.RequestCtx) {
	request, ok := h.parseAction(ctx)
	if !ok {
		return
	}

	if err := h.gameService.Answer(request.Phone, request.Args); err != nil {
		h.respondActionError(ctx, err)
		return
	}

	h.respondWithSuccess(ctx, nil, "OK")
}

// GetGame maneja GET /api/games/{id}
func (h *GameHandler) GetGame(ctx *fasthttp.RequestCtx) {
	gameID := ctx.UserValue("id").(string)

	game, err := h.gameService.GetGame(gameID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Partida no encontrada: %v", err))
		return
	}

	h.respondWithSuccess(ctx, models.GameResponse{Game: game}, "Partida obtenida exitosamente")
}

// GetActiveGames maneja GET /api/games/active
func (h *GameHandler) GetActiveGames(ctx *fasthttp.RequestCtx) {
	games, err := h.gameService.GetActiveGames()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo partidas activas: %v", err))
		return
	}

	h.respondWithSuccess(ctx, models.GameResponse{Games: games}, fmt.Sprintf("%d partidas activas obtenidas", len(games)))
}

// HealthCheck maneja GET /api/health
func (h *GameHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	h.respondWithSuccess(ctx, map[string]string{"status": "ok"}, "Servidor de historias funcionando")
}

// HandleWebSocket maneja las conexiones WebSocket del panel de administración
func (h *GameHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		defer ws.Close()

		h.hub.Register(ws)
		defer h.hub.Unregister(ws)

		// Escuchar mensajes del cliente
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				break
			}
		}
	})

	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		ctx.Error("Error upgrading to WebSocket", fasthttp.StatusInternalServerError)
	}
}

// parseAction valida el request {phone, args} de los eventos de jugadores.
func (h *GameHandler) parseAction(ctx *fasthttp.RequestCtx) (*models.PlayerActionRequest, bool) {
	var request models.PlayerActionRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return nil, false
	}

	if request.Phone == "" || request.Args == "" {
		h.respondWithError(ctx, fasthttp.StatusNotAcceptable, "Los parámetros phone y args son requeridos")
		return nil, false
	}
	return &request, true
}

// respondActionError traduce los errores del servicio a códigos HTTP.
func (h *GameHandler) respondActionError(ctx *fasthttp.RequestCtx, err error) {
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		h.respondWithError(ctx, fasthttp.StatusNotFound, "Partida no encontrada")
	case errors.Is(err, services.ErrGameEnded):
		h.respondWithError(ctx, fasthttp.StatusConflict, "La partida ya terminó")
	case errors.As(err, &validation):
		h.respondWithError(ctx, fasthttp.StatusNotAcceptable, validation.Reason)
	default:
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error procesando evento: %v", err))
	}
}

func (h *GameHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")

	response := models.APIResponse{
		Success: false,
		Error:   message,
	}

	data, _ := json.Marshal(response)
	ctx.SetBody(data)
}

func (h *GameHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json")

	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	body, _ := json.Marshal(response)
	ctx.SetBody(body)
}
