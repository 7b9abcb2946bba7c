package story

import (
	"encoding/json"
	"fmt"

	"github.com/backsoul/storysms/pkg/models"
)

// Campo del historial contra el que se comparan las hojas de una condición.
const (
	MatchPath   = "path"
	MatchAnswer = "answer"
)

// Condition árbol de condiciones de una historia. Un nodo es una hoja
// (token de respuesta) o un operador $and/$or con hijos. Se parsea una sola
// vez al cargar la configuración, no en cada evaluación.
type Condition struct {
	Leaf string
	And  []*Condition
	Or   []*Condition
}

// UnmarshalJSON acepta la forma autorada: un string (hoja) o un objeto
// {"$and": [...]} / {"$or": [...]} cuyos hijos son strings u objetos.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var leaf string
	if err := json.Unmarshal(data, &leaf); err == nil {
		c.Leaf = leaf
		return nil
	}

	var node struct {
		And []*Condition `json:"$and"`
		Or  []*Condition `json:"$or"`
	}
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("condición inválida: %v", err)
	}
	if len(node.And) > 0 && len(node.Or) > 0 {
		return fmt.Errorf("condición con $and y $or en el mismo nodo")
	}
	c.And = node.And
	c.Or = node.Or
	return nil
}

// Evaluate evalúa la condición contra el historial de un jugador.
// $or corta en el primer hijo verdadero, $and en el primer hijo falso.
// Una condición vacía o nil siempre es falsa.
func (c *Condition) Evaluate(phone string, results []models.StoryResult, field string) bool {
	if c == nil {
		return false
	}

	if c.Leaf != "" {
		return matchResult(c.Leaf, phone, results, field)
	}

	if len(c.Or) > 0 {
		for _, child := range c.Or {
			if child.Evaluate(phone, results, field) {
				return true
			}
		}
		return false
	}

	if len(c.And) > 0 {
		for _, child := range c.And {
			if !child.Evaluate(phone, results, field) {
				return false
			}
		}
		return true
	}

	return false
}

// matchResult verifica si el jugador registró el valor en el campo indicado.
func matchResult(value, phone string, results []models.StoryResult, field string) bool {
	for i := range results {
		if results[i].Phone != phone {
			continue
		}
		if field == MatchPath && results[i].Path == value {
			return true
		}
		if field == MatchAnswer && results[i].Answer == value {
			return true
		}
	}
	return false
}
