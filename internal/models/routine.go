// ABOUTME: Today's routine model and the pool of tiny routines.
// ABOUTME: A routine is replaced wholesale when a new one is generated.
package models

import (
	"math/rand"

	"github.com/google/uuid"
)

// Routine is the single active micro-task.
type Routine struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// RoutinePool holds the tiny routines a new day can draw from.
var RoutinePool = []string{
	"Drink a glass of warm water.",
	"Stretch your arms for 10 seconds.",
	"Look out the window for 1 minute.",
	"Tidy up one small corner of your room.",
	"Write down 3 things you are grateful for.",
	"Listen to your favorite calm song.",
}

// NewRoutine creates an uncompleted routine with a generated ID.
func NewRoutine(text string) Routine {
	return Routine{
		ID:   uuid.New().String(),
		Text: text,
	}
}

// RandomRoutine draws a routine from the pool, avoiding the current text when
// the pool allows it.
func RandomRoutine(r *rand.Rand, current string) Routine {
	text := RoutinePool[r.Intn(len(RoutinePool))]
	for text == current && len(RoutinePool) > 1 {
		text = RoutinePool[r.Intn(len(RoutinePool))]
	}
	return NewRoutine(text)
}
