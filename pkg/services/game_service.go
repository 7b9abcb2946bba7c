package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/storysms/pkg/models"
	"github.com/backsoul/storysms/pkg/redis"
	"github.com/backsoul/storysms/pkg/sms"
	"github.com/backsoul/storysms/pkg/story"
	"github.com/backsoul/storysms/pkg/websocket"
	"github.com/google/uuid"
)

// Máximo de betas que el alpha puede invitar a una partida.
const MaxBetasToInvite = 3

// Mínimo de betas invitados para crear una partida. Cero: siempre se
// permiten partidas en solitario.
const MinBetasToInvite = 0

// Errores terminales que los handlers traducen a códigos HTTP.
var (
	ErrGameNotFound = errors.New("partida no encontrada")
	ErrGameEnded    = errors.New("la partida ya terminó")
)

// ValidationError error de validación de un request de creación.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// GameService orquesta el ciclo de vida de las partidas: creación,
// invitaciones, arranque, respuestas y la degradación a partida en
// solitario. Las transiciones de estado son funciones puras del paquete
// story; este servicio persiste los documentos y despacha los comandos.
type GameService struct {
	store     Store
	stories   story.Provider
	scheduler *SchedulerService
	hub       *websocket.Hub
}

// NewGameService crea una nueva instancia del servicio de partidas
func NewGameService(store Store, stories story.Provider, scheduler *SchedulerService, hub *websocket.Hub) *GameService {
	return &GameService{
		store:     store,
		stories:   stories,
		scheduler: scheduler,
		hub:       hub,
	}
}

// CreateGame crea una nueva partida y programa las invitaciones.
func (s *GameService) CreateGame(req *models.GameCreateRequest) (*models.GameSession, error) {
	if req.StoryID == "" || req.AlphaMobile == "" || req.AlphaFirstName == "" {
		return nil, &ValidationError{Reason: "story_id, alpha_mobile y alpha_first_name son requeridos"}
	}

	cfg, err := s.stories.Get(req.StoryID)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("historia %s no configurada", req.StoryID)}
	}

	alphaPhone := sms.NormalizePhone(req.AlphaMobile)
	if !sms.IsValidPhone(alphaPhone) {
		return nil, &ValidationError{Reason: "teléfono del alpha inválido"}
	}

	game := &models.GameSession{
		ID:           uuid.New().String(),
		StoryID:      req.StoryID,
		AlphaName:    req.AlphaFirstName,
		AlphaPhone:   alphaPhone,
		GameType:     req.GameType,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}

	// Solo los teléfonos beta válidos entran a la partida; los campos vacíos
	// del formulario se descartan en silencio.
	for _, raw := range []string{req.BetaMobile0, req.BetaMobile1, req.BetaMobile2} {
		phone := sms.NormalizePhone(raw)
		if sms.IsValidPhone(phone) {
			game.Betas = append(game.Betas, models.Beta{Phone: phone})
		}
	}

	if len(game.Betas) < MinBetasToInvite {
		return nil, &ValidationError{Reason: fmt.Sprintf("se necesitan al menos %d invitados", MinBetasToInvite)}
	}

	if err := s.saveGame(game); err != nil {
		return nil, fmt.Errorf("error guardando partida: %v", err)
	}
	s.mapPlayer(game.AlphaPhone, game.ID)
	for i := range game.Betas {
		s.mapPlayer(game.Betas[i].Phone, game.ID)
	}
	if err := s.store.AddToSet("story:active_games", game.ID); err != nil {
		log.Printf("⚠️ Error agregando a partidas activas: %v", err)
	}

	s.hub.BroadcastGameEvent("game-created", game.ID, game.StoryID)

	if game.GameType == models.GameTypeSolo {
		// Las partidas en solitario arrancan de inmediato.
		s.startGame(game, cfg)
		if err := s.saveGame(game); err != nil {
			return nil, fmt.Errorf("error guardando partida: %v", err)
		}
		return game, nil
	}

	// Invitaciones iniciales: el alpha espera, los betas reciben la invitación.
	cmds := []models.Command{{Phone: game.AlphaPhone, Path: cfg.AlphaWaitPath}}
	for i := range game.Betas {
		cmds = append(cmds, models.Command{Phone: game.Betas[i].Phone, Path: cfg.BetaJoinAskPath})
	}
	s.scheduler.ScheduleAll(cmds)

	// Si en cinco minutos ningún beta se unió, se le ofrece al alpha jugar
	// en solitario. Es un chequeo contra el estado vigente, no un envío, por
	// eso no pasa por la cola durable.
	gameID := game.ID
	time.AfterFunc(time.Duration(cfg.SoloOffer())*time.Millisecond, func() {
		s.offerSoloIfNobodyJoined(gameID)
	})

	log.Printf("✅ Partida %s creada para %s (historia %s)", game.ID, game.AlphaName, game.StoryID)
	return game, nil
}

// JoinGame procesa la respuesta de un beta a la invitación. Si la partida ya
// arrancó o terminó, el beta es redirigido a una partida en solitario nueva.
func (s *GameService) JoinGame(rawPhone, args string) error {
	// Si el beta no respondió que sí, se ignora.
	if !sms.IsYesResponse(sms.FirstWord(args)) {
		return nil
	}

	phone := sms.NormalizePhone(rawPhone)
	game, err := s.GetGameByPlayer(phone)
	if err != nil {
		return err
	}

	cfg, err := s.stories.Get(game.StoryID)
	if err != nil {
		return fmt.Errorf("historia %s no configurada: %v", game.StoryID, err)
	}

	if game.Started || game.Ended {
		// Degradación elegante: se le avisa que la partida va en curso y se
		// le crea una partida en solitario propia tras un delay corto.
		s.scheduler.ScheduleAll([]models.Command{{Phone: phone, Path: cfg.GameInProgressPath}})
		storyID := game.StoryID
		time.AfterFunc(story.BetaToSoloDelay*time.Millisecond, func() {
			if err := s.createSoloGame(storyID, phone); err != nil {
				log.Printf("⚠️ Error creando partida solo para %s: %v", phone, err)
			}
		})
		return nil
	}

	allJoined := story.MarkBetaJoined(game, phone)
	if allJoined {
		s.startGame(game, cfg)
	} else {
		s.scheduler.ScheduleAll(story.WaitMessages(game, cfg, phone))
		log.Printf("⏳ Partida %s esperando más jugadores", game.ID)
	}

	game.LastActivity = time.Now()
	if err := s.saveGame(game); err != nil {
		return fmt.Errorf("error guardando partida: %v", err)
	}
	s.hub.BroadcastGameEvent("game-updated", game.ID, game.StoryID)
	return nil
}

// ForceStart arranca la partida aunque falten betas por unirse. Solo el
// alpha puede forzar el arranque.
func (s *GameService) ForceStart(rawPhone, args string) error {
	if !sms.IsYesResponse(sms.FirstWord(args)) {
		return nil
	}

	phone := sms.NormalizePhone(rawPhone)
	game, err := s.GetGameByPlayer(phone)
	if err != nil {
		return err
	}
	if game.Ended {
		return ErrGameEnded
	}
	if game.AlphaPhone != phone {
		return &ValidationError{Reason: "solo el alpha puede forzar el arranque"}
	}

	cfg, err := s.stories.Get(game.StoryID)
	if err != nil {
		return fmt.Errorf("historia %s no configurada: %v", game.StoryID, err)
	}

	s.startGame(game, cfg)
	game.LastActivity = time.Now()
	if err := s.saveGame(game); err != nil {
		return fmt.Errorf("error guardando partida: %v", err)
	}
	return nil
}

// Answer procesa la respuesta de un jugador y avanza la historia.
func (s *GameService) Answer(rawPhone, args string) error {
	phone := sms.NormalizePhone(rawPhone)
	game, err := s.GetGameByPlayer(phone)
	if err != nil {
		return err
	}
	if game.Ended {
		return ErrGameEnded
	}

	cfg, err := s.stories.Get(game.StoryID)
	if err != nil {
		return fmt.Errorf("historia %s no configurada: %v", game.StoryID, err)
	}

	cmds := story.Advance(game, phone, args, cfg)
	game.LastActivity = time.Now()
	if err := s.saveGame(game); err != nil {
		return fmt.Errorf("error guardando partida: %v", err)
	}
	s.scheduler.ScheduleAll(cmds)

	if game.Ended {
		s.store.RemoveFromSet("story:active_games", game.ID)
		s.hub.BroadcastGameEvent("game-ended", game.ID, game.StoryID)
		log.Printf("🏁 Partida %s terminada", game.ID)
	} else {
		s.hub.BroadcastGameEvent("game-updated", game.ID, game.StoryID)
	}
	return nil
}

// GetGame obtiene una partida por ID
func (s *GameService) GetGame(gameID string) (*models.GameSession, error) {
	data, err := s.store.Get(fmt.Sprintf("story:game:%s", gameID))
	if err != nil {
		if err == redis.Nil {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("error obteniendo partida: %v", err)
	}

	var game models.GameSession
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("error parsing partida: %v", err)
	}
	return &game, nil
}

// GetGameByPlayer obtiene la partida actual de un jugador por su teléfono.
func (s *GameService) GetGameByPlayer(phone string) (*models.GameSession, error) {
	gameID, err := s.store.Get(fmt.Sprintf("story:player_game:%s", phone))
	if err != nil {
		if err == redis.Nil {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("error buscando la partida del jugador: %v", err)
	}
	return s.GetGame(gameID)
}

// GetActiveGames obtiene todas las partidas activas
func (s *GameService) GetActiveGames() ([]models.GameSession, error) {
	gameIDs, err := s.store.GetSetMembers("story:active_games")
	if err != nil {
		return nil, fmt.Errorf("error obteniendo partidas activas: %v", err)
	}

	var games []models.GameSession
	for _, gameID := range gameIDs {
		game, err := s.GetGame(gameID)
		if err != nil {
			log.Printf("⚠️ Error obteniendo partida activa %s: %v", gameID, err)
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}

// startGame transición pura de arranque más persistencia de efectos. El flag
// Started garantiza que repetir el arranque no duplica mensajes.
func (s *GameService) startGame(game *models.GameSession, cfg *story.Config) {
	cmds := story.Start(game, cfg)
	if len(cmds) == 0 {
		return
	}
	s.scheduler.ScheduleAll(cmds)
	s.hub.BroadcastGameEvent("game-started", game.ID, game.StoryID)
	log.Printf("🎮 Partida %s arrancó con %d jugadores", game.ID, len(game.PlayerStatus))
}

// createSoloGame crea y arranca una partida en solitario para el jugador.
func (s *GameService) createSoloGame(storyID, phone string) error {
	_, err := s.CreateGame(&models.GameCreateRequest{
		StoryID:        storyID,
		AlphaMobile:    phone,
		AlphaFirstName: "jugador",
		GameType:       models.GameTypeSolo,
	})
	return err
}

// offerSoloIfNobodyJoined revisa si algún beta se unió; si nadie lo hizo y la
// partida no es solo, le pregunta al alpha si quiere jugar en solitario.
func (s *GameService) offerSoloIfNobodyJoined(gameID string) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return
	}

	for i := range game.Betas {
		if game.Betas[i].InviteAccepted {
			return
		}
	}
	if game.GameType == models.GameTypeSolo || game.Started || game.Ended {
		return
	}

	cfg, err := s.stories.Get(game.StoryID)
	if err != nil {
		return
	}

	log.Printf("💬 Nadie se unió a la partida %s, se le ofrece solo al alpha", game.ID)
	s.scheduler.ScheduleAll([]models.Command{{Phone: game.AlphaPhone, Path: cfg.AskSoloPath}})
}

func (s *GameService) saveGame(game *models.GameSession) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("error serializando partida: %v", err)
	}
	return s.store.Set(fmt.Sprintf("story:game:%s", game.ID), string(data), 0)
}

func (s *GameService) mapPlayer(phone, gameID string) {
	if err := s.store.Set(fmt.Sprintf("story:player_game:%s", phone), gameID, 0); err != nil {
		log.Printf("⚠️ Error mapeando jugador %s a la partida %s: %v", phone, gameID, err)
	}
}
