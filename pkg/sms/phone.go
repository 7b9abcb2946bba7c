package sms

import "strings"

// NormalizePhone deja solo los dígitos del número y le antepone el código de
// país si viene en formato de 10 dígitos. Devuelve "" si no queda nada.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	normalized := digits.String()
	if len(normalized) == 10 {
		normalized = "1" + normalized
	}
	return normalized
}

// IsValidPhone verifica que el número normalizado sea un móvil US válido.
func IsValidPhone(phone string) bool {
	if len(phone) != 11 || phone[0] != '1' {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FirstWord devuelve la primera palabra del mensaje, sin espacios.
func FirstWord(message string) string {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Respuestas que se aceptan como un "sí".
var yesResponses = []string{"Y", "YES", "YEA", "YEAH", "YAH", "YA", "SI", "SÍ"}

// IsYesResponse verifica si la palabra es una respuesta afirmativa.
func IsYesResponse(word string) bool {
	upper := strings.ToUpper(strings.TrimSpace(word))
	for _, yes := range yesResponses {
		if upper == yes {
			return true
		}
	}
	return false
}
