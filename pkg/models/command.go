package models

// Command orden de envío diferido: opta el teléfono en el path luego de DelayMs.
// Una vez programada siempre se dispara, no hay cancelación.
type Command struct {
	ID      string `json:"id,omitempty"`
	Phone   string `json:"phone"`
	Path    string `json:"path"`
	DelayMs int64  `json:"delayMs"`
}
