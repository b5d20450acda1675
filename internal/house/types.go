package house

import (
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/geo"
)

// House is a monitored home. Location is nil when it has not been set.
type House struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Location is a postal address with its GPS position.
type Location struct {
	Address    string         `json:"address"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Validate checks the house ID and, when present, the location coordinate.
func (h *House) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidHouse)
	}
	if h.Location != nil {
		if err := h.Location.Coordinate.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidHouse, err)
		}
	}
	return nil
}
