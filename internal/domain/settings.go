package domain

import (
	"fmt"
	"strings"
)

// ReaderDirection détermine quel contrôle physique (gauche/droite) fait avancer la lecture.
type ReaderDirection string

const (
	DirectionLTR ReaderDirection = "LTR"
	DirectionRTL ReaderDirection = "RTL"
)

func (d ReaderDirection) Valid() bool {
	return d == DirectionLTR || d == DirectionRTL
}

func ParseReaderDirection(s string) (ReaderDirection, error) {
	d := ReaderDirection(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown reader direction %q", s)
	}
	return d, nil
}

// ReaderMode choisit la variante de lecteur. Le choix lui-même est une préférence
// utilisateur, le moteur ne fait que l'appliquer.
type ReaderMode string

const (
	ModePaged ReaderMode = "paged"
	ModeStrip ReaderMode = "strip"
)

func (m ReaderMode) Valid() bool {
	return m == ModePaged || m == ModeStrip
}

func ParseReaderMode(s string) (ReaderMode, error) {
	m := ReaderMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown reader mode %q", s)
	}
	return m, nil
}

type ReaderSettings struct {
	Direction ReaderDirection `json:"direction"`
	Mode      ReaderMode      `json:"mode"`
}

func DefaultReaderSettings() ReaderSettings {
	return ReaderSettings{
		Direction: DirectionRTL,
		Mode:      ModePaged,
	}
}

// Normalize complète les champs vides avec les valeurs par défaut.
// Une valeur non vide mais inconnue est laissée telle quelle.
func (s ReaderSettings) Normalize() ReaderSettings {
	def := DefaultReaderSettings()
	if s.Direction == "" {
		s.Direction = def.Direction
	}
	if s.Mode == "" {
		s.Mode = def.Mode
	}
	return s
}

func (s ReaderSettings) Validate() error {
	if !s.Direction.Valid() {
		return fmt.Errorf("unknown reader direction %q", s.Direction)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("unknown reader mode %q", s.Mode)
	}
	return nil
}
