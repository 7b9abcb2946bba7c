package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/backsoul/storysms/pkg/models"
	"github.com/backsoul/storysms/pkg/sms"
	"github.com/google/uuid"
)

const scheduleKey = "story:scheduled_sends"

// SchedulerService programa envíos diferidos de opt-in paths. Los comandos
// pendientes viven en un sorted set de Redis con el timestamp de entrega
// como score, así un reinicio del proceso no pierde mensajes programados.
// Un comando programado no tiene cancelación: siempre se dispara.
type SchedulerService struct {
	store  Store
	sender sms.Sender
}

// NewSchedulerService crea una nueva instancia del scheduler
func NewSchedulerService(store Store, sender sms.Sender) *SchedulerService {
	return &SchedulerService{
		store:  store,
		sender: sender,
	}
}

// Schedule encola un comando para entregarse luego de su delay.
func (s *SchedulerService) Schedule(cmd models.Command) error {
	if cmd.ID == "" {
		cmd.ID = uuid.New().String()
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	dueAt := time.Now().UnixMilli() + cmd.DelayMs
	return s.store.ScheduleAt(scheduleKey, string(payload), dueAt)
}

// ScheduleAll encola una lista de comandos producidos por el motor.
func (s *SchedulerService) ScheduleAll(cmds []models.Command) {
	for _, cmd := range cmds {
		if err := s.Schedule(cmd); err != nil {
			log.Printf("⚠️ Error programando envío a path %s: %v", cmd.Path, err)
		}
	}
}

// Run despacha los comandos vencidos. Corre como goroutine; revisa la cola
// cada segundo y reclama cada comando con ZREM antes de entregarlo, de modo
// que con varios despachadores cada comando se entrega a lo más una vez.
func (s *SchedulerService) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.dispatchDue()
	}
}

func (s *SchedulerService) dispatchDue() {
	due, err := s.store.GetDue(scheduleKey, time.Now().UnixMilli())
	if err != nil {
		log.Printf("⚠️ Error leyendo cola de envíos: %v", err)
		return
	}

	for _, member := range due {
		claimed, err := s.store.ClaimScheduled(scheduleKey, member)
		if err != nil {
			log.Printf("⚠️ Error reclamando envío programado: %v", err)
			continue
		}
		if !claimed {
			// Otro despachador lo entregó primero.
			continue
		}

		var cmd models.Command
		if err := json.Unmarshal([]byte(member), &cmd); err != nil {
			log.Printf("⚠️ Comando programado corrupto: %v", err)
			continue
		}

		if err := s.sender.OptIn(cmd.Phone, cmd.Path); err != nil {
			log.Printf("⚠️ Error entregando opt-in path %s: %v", cmd.Path, err)
		}
	}
}
