// Package seats builds and mutates the seat layout of a show.
package seats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-booking/internal/models"
)

var DefaultRows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

const DefaultSeatsPerRow = 10

// Generate lays out rows x perRow seats in row-major order. Every seat starts
// available at the show's price and is identified by row + number ("C7").
func Generate(showID string, rows []string, perRow int, price float64) []models.Seat {
	out := make([]models.Seat, 0, len(rows)*perRow)
	for _, row := range rows {
		row = strings.ToUpper(row)
		for n := 1; n <= perRow; n++ {
			out = append(out, models.Seat{
				ShowID:   showID,
				ID:       SeatID(row, n),
				Row:      row,
				Number:   n,
				Position: len(out),
				Price:    price,
				State:    models.SeatAvailable,
			})
		}
	}
	return out
}

func SeatID(row string, number int) string {
	return row + strconv.Itoa(number)
}

// ParseID splits "AB12" into "AB" and 12.
func ParseID(id string) (string, int, error) {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	if i == 0 || i == len(id) {
		return "", 0, fmt.Errorf("malformed seat id %q", id)
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("malformed seat id %q", id)
	}
	return id[:i], n, nil
}

// CheckRows rejects row labels that repeat (case-insensitively) or that would
// not split back out of their seat ids.
func CheckRows(rows []string) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		label := strings.ToUpper(row)
		if parsed, _, err := ParseID(SeatID(label, 1)); err != nil || parsed != label {
			return fmt.Errorf("invalid row label %q", row)
		}
		if _, ok := seen[label]; ok {
			return fmt.Errorf("duplicate row %q", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// Find returns the seat with the given id.
func Find(layout []models.Seat, id string) (*models.Seat, bool) {
	for i := range layout {
		if layout[i].ID == id {
			return &layout[i], true
		}
	}
	return nil, false
}

// Transition moves seat to next, clearing hold fields when it leaves the
// locked state.
func Transition(seat *models.Seat, next models.SeatState) error {
	if !seat.State.CanTransition(next) {
		return fmt.Errorf("%w: seat %s %s -> %s", models.ErrInvalidTransition, seat.ID, seat.State, next)
	}
	seat.State = next
	if next != models.SeatLocked {
		seat.LockToken = ""
		seat.LockedUntil = time.Time{}
	}
	return nil
}

// Dedupe drops exact repeats, keeping first occurrences in order. Ids are
// never rewritten, so an id that names no seat is reported back as sent.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
