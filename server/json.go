package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"barrierbet/domain/entities"
	"barrierbet/domain/utils"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Amount is a money value in cents that travels as a JSON number with up to
// two decimals, e.g. 12.5 or 12.50 for 1250 cents.
type Amount int64

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(utils.FormatAmount(int64(a))), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	cents, err := utils.ParseAmount(number.String())
	if err != nil {
		return err
	}
	*a = Amount(cents)
	return nil
}

// Cents returns the amount in cents
func (a Amount) Cents() int64 {
	return int64(a)
}

// Difficulty is a tier name such as "Hard". Older clients send the tier's
// multiplier as a number instead, with 1.0 standing for Easy.
type Difficulty string

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*d = Difficulty(name)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return errors.New("difficulty must be a tier name or multiplier")
	}
	percent, err := utils.ParseAmount(number.String())
	if err != nil {
		return fmt.Errorf("invalid difficulty multiplier %s", number)
	}
	if percent == 100 {
		*d = Difficulty(entities.DifficultyEasy)
		return nil
	}
	for _, tier := range entities.Difficulties() {
		if tier.MultiplierPercent() == percent {
			*d = Difficulty(tier)
			return nil
		}
	}
	return fmt.Errorf("invalid difficulty multiplier %s", number)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}

// decodeJSON reads a bounded JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
