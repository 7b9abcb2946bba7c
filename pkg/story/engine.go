package story

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/backsoul/storysms/pkg/models"
)

// Delays por defecto (en milisegundos) de los mensajes salientes.
// Son estrictamente crecientes para que el orden de entrega se preserve
// aunque el despacho sea asíncrono: respuesta individual (0), mensaje
// grupal de fin de nivel, mensaje grupal universal, inicio del siguiente
// nivel o mensaje individual de fin de juego.
const (
	EndLevelGroupMessageDelay = 15000
	UniversalEndGameDelay     = 23000
	NextLevelStartDelay       = 30000
	SoloOfferDelay            = 300000 // cinco minutos
	BetaToSoloDelay           = 3000
)

// GroupDelay delay del mensaje grupal de fin de nivel.
func (c *Config) GroupDelay() int64 {
	if c.Delays.EndLevelGroupMs > 0 {
		return c.Delays.EndLevelGroupMs
	}
	return EndLevelGroupMessageDelay
}

// UniversalDelay delay del mensaje grupal universal de fin de juego.
func (c *Config) UniversalDelay() int64 {
	if c.Delays.UniversalEndGameMs > 0 {
		return c.Delays.UniversalEndGameMs
	}
	return UniversalEndGameDelay
}

// NextLevelDelay delay del inicio de nivel y del mensaje individual final.
func (c *Config) NextLevelDelay() int64 {
	if c.Delays.NextLevelStartMs > 0 {
		return c.Delays.NextLevelStartMs
	}
	return NextLevelStartDelay
}

// SoloOffer delay hasta ofrecerle al alpha jugar en solitario.
func (c *Config) SoloOffer() int64 {
	if c.Delays.SoloOfferMs > 0 {
		return c.Delays.SoloOfferMs
	}
	return SoloOfferDelay
}

// Caracteres extra permitidos después de una respuesta válida. Un jugador
// puede escribir "A)" y la historia solo lista "A"; igual debe ser válida.
const allowedSuffix = `[s\.\,\?\*\)\}\]]*`

// Advance avanza a un jugador un paso en la historia según su respuesta.
// Es una transición pura sobre el documento: muta únicamente la copia
// recibida y devuelve los comandos de envío; el caller persiste y despacha.
func Advance(game *models.GameSession, phone, rawAnswer string, cfg *Config) []models.Command {
	answer := firstWord(strings.ToUpper(rawAnswer))
	currentPath := game.CurrentPath(phone)
	if currentPath == "" {
		log.Printf("⚠️ Jugador %s sin estado en la partida %s", phone, game.ID)
		return nil
	}

	item, ok := cfg.Story[currentPath]
	choiceIndex := -1
	if ok {
		for i := range item.Choices {
			if matchesChoice(&item.Choices[i], answer) {
				choiceIndex = i
				break
			}
		}
	}

	// Respuesta no resoluble: se reenvía el mensaje actual. No es un error.
	if choiceIndex < 0 {
		return []models.Command{{Phone: phone, Path: currentPath}}
	}

	choice := item.Choices[choiceIndex]
	game.AddResult(phone, currentPath, choice.Key)
	next := choice.Next
	game.SetCurrentPath(phone, next)

	if !strings.HasPrefix(next, EndLevelPrefix) {
		return []models.Command{{Phone: phone, Path: next}}
	}

	// Fin de nivel: resolver el mensaje personal según las respuestas del
	// jugador y luego revisar si el grupo completo llegó a la barrera.
	level := next
	endPath := endLevelPath(game, phone, level, cfg, MatchAnswer)
	if endPath == "" {
		log.Printf("⚠️ Nivel %s de la historia %s sin condición satisfecha para %s", level, game.StoryID, phone)
		return nil
	}
	game.SetCurrentPath(phone, endPath)
	game.AddPathResult(phone, endPath)

	cmds := []models.Command{{Phone: phone, Path: endPath}}
	cmds = append(cmds, checkBarrier(game, phone, level, cfg)...)
	return cmds
}

// Start inicia la partida: asigna el path inicial al alpha y a cada beta que
// aceptó la invitación. Es idempotente sobre el flag Started.
func Start(game *models.GameSession, cfg *Config) []models.Command {
	if game.Started {
		return nil
	}
	game.Started = true

	cmds := []models.Command{{Phone: game.AlphaPhone, Path: cfg.StartPath}}
	game.SetCurrentPath(game.AlphaPhone, cfg.StartPath)

	for i := range game.Betas {
		if !game.Betas[i].InviteAccepted {
			continue
		}
		cmds = append(cmds, models.Command{Phone: game.Betas[i].Phone, Path: cfg.StartPath})
		game.SetCurrentPath(game.Betas[i].Phone, cfg.StartPath)
	}
	return cmds
}

// MarkBetaJoined marca al beta como unido; devuelve true si ya se unieron todos.
func MarkBetaJoined(game *models.GameSession, phone string) bool {
	for i := range game.Betas {
		if game.Betas[i].Phone == phone {
			game.Betas[i].InviteAccepted = true
			break
		}
	}

	for i := range game.Betas {
		if !game.Betas[i].InviteAccepted {
			return false
		}
	}
	return true
}

// WaitMessages mensajes de espera: al alpha se le pregunta si quiere arrancar
// ya, al beta recién unido se le pide paciencia.
func WaitMessages(game *models.GameSession, cfg *Config, betaPhone string) []models.Command {
	cmds := []models.Command{
		{Phone: game.AlphaPhone, Path: cfg.AlphaStartAskPath},
		{Phone: betaPhone, Path: cfg.BetaWaitPath},
	}
	game.SetCurrentPath(game.AlphaPhone, cfg.AlphaStartAskPath)
	game.SetCurrentPath(betaPhone, cfg.BetaWaitPath)
	return cmds
}

// checkBarrier revisa si todos los demás jugadores ya están esperando en un
// estado de fin de nivel. Si la barrera se satisface, avanza al grupo entero.
func checkBarrier(game *models.GameSession, phone, level string, cfg *Config) []models.Command {
	item := cfg.Story[level]

	for i := range game.PlayerStatus {
		if game.PlayerStatus[i].Phone == phone {
			continue
		}
		atEndLevel := false
		for j := range item.Choices {
			if game.PlayerStatus[i].Path == item.Choices[j].Next {
				atEndLevel = true
				break
			}
		}
		if !atEndLevel {
			return nil
		}
	}

	// Mensaje grupal de fin de nivel para todos los jugadores.
	groupKey := level + GroupSuffix
	groupPath := groupEndLevelPath(groupKey, game, cfg)
	var cmds []models.Command
	for i := range game.PlayerStatus {
		playerPhone := game.PlayerStatus[i].Phone
		cmds = append(cmds, models.Command{Phone: playerPhone, Path: groupPath, DelayMs: cfg.GroupDelay()})
		game.AddPathResult(playerPhone, groupPath)
	}

	// Loop separado del anterior para que el historial de todos los jugadores
	// esté actualizado antes de resolver el siguiente mensaje.
	nextLevel := cfg.Story[groupKey].NextLevel
	for i := range game.PlayerStatus {
		playerPhone := game.PlayerStatus[i].Phone
		nextPath := nextLevel

		if nextLevel == EndGameKey {
			if game.GroupEndGamePath == "" {
				cmds = append(cmds, groupEndGameMessages(game, cfg)...)
			}
			game.Ended = true

			nextPath = indivEndGamePath(game, playerPhone, cfg)
			if nextPath == "" {
				// Formato indeterminado: defecto de configuración, sin mensaje.
				continue
			}
		}

		cmds = append(cmds, models.Command{Phone: playerPhone, Path: nextPath, DelayMs: cfg.NextLevelDelay()})
		game.AddPathResult(playerPhone, nextPath)
		game.SetCurrentPath(playerPhone, nextPath)
	}

	return cmds
}

// groupEndLevelPath elige el mensaje grupal de fin de nivel: gana la opción
// cuyas condiciones satisfacen más jugadores. En partidas de exactamente dos
// jugadores un empate favorece a la opción declarada más tarde, que por
// convención autoral es la rama sin impacto.
func groupEndLevelPath(groupKey string, game *models.GameSession, cfg *Config) string {
	item := cfg.Story[groupKey]

	counter := make([]int, len(item.Choices))
	for i := range game.PlayerStatus {
		phone := game.PlayerStatus[i].Phone
		for j := range item.Choices {
			if item.Choices[j].Conditions.Evaluate(phone, game.StoryResults, MatchAnswer) {
				counter[j]++
				break
			}
		}
	}

	twoPlayerGame := len(game.PlayerStatus) == 2
	selected, maxCount := -1, -1
	for i, count := range counter {
		if (twoPlayerGame && count == maxCount) || count > maxCount {
			selected = i
			maxCount = count
		}
	}
	if selected < 0 {
		return ""
	}
	return item.Choices[selected].Next
}

// groupEndGameMessages calcula el mensaje universal de fin de juego y lo
// programa para todos los jugadores. Solo se ejecuta una vez por partida:
// el path queda memoizado en el documento.
func groupEndGameMessages(game *models.GameSession, cfg *Config) []models.Command {
	end := cfg.Story[EndGameKey]
	if end.GroupEndGameFormat != EndGameGroupSuccessFailure {
		return nil
	}

	// Cuántos niveles logró el grupo: paths de éxito grupal presentes en
	// cualquier parte del historial.
	successes := 0
	for _, path := range end.GroupLevelSuccessPaths {
		for i := range game.StoryResults {
			if game.StoryResults[i].Path == path {
				successes++
				break
			}
		}
	}

	universalPath := end.GroupSuccessFailure[strconv.Itoa(successes)]
	if universalPath == "" {
		log.Printf("⚠️ Historia %s sin mensaje grupal para %d éxitos", game.StoryID, successes)
		return nil
	}
	game.GroupEndGamePath = universalPath

	var cmds []models.Command
	for i := range game.PlayerStatus {
		playerPhone := game.PlayerStatus[i].Phone
		cmds = append(cmds, models.Command{Phone: playerPhone, Path: universalPath, DelayMs: cfg.UniversalDelay()})
		game.AddPathResult(playerPhone, universalPath)
		game.SetCurrentPath(playerPhone, universalPath)
	}
	return cmds
}

// indivEndGamePath resuelve el mensaje individual de fin de juego según la
// estrategia configurada en la historia.
func indivEndGamePath(game *models.GameSession, phone string, cfg *Config) string {
	switch cfg.Story[EndGameKey].IndivEndGameFormat {
	case EndGameDecisionBased:
		return endLevelPath(game, phone, EndGameKey, cfg, MatchAnswer)
	case EndGameRankBased:
		return RankPath(game, phone, cfg)
	default:
		log.Printf("⚠️ Historia %s con formato de fin de juego indeterminado", game.StoryID)
		return ""
	}
}

// endLevelPath determina el path de fin de nivel de un jugador: la primera
// opción del checkpoint cuyas condiciones satisface su historial.
func endLevelPath(game *models.GameSession, phone, level string, cfg *Config, field string) string {
	item, ok := cfg.Story[level]
	if !ok {
		return ""
	}
	for i := range item.Choices {
		if item.Choices[i].Conditions.Evaluate(phone, game.StoryResults, field) {
			return item.Choices[i].Next
		}
	}
	return ""
}

// matchesChoice verifica la respuesta contra las respuestas válidas de la
// opción, en orden de declaración.
func matchesChoice(choice *Choice, answer string) bool {
	for _, valid := range choice.ValidAnswers {
		re, err := regexp.Compile(`(?i)^` + valid + allowedSuffix + `$`)
		if err != nil {
			log.Printf("⚠️ Respuesta válida con patrón inválido: %s", valid)
			continue
		}
		if re.MatchString(answer) {
			return true
		}
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
