// Package quiz generates the round content handed to a lobby when its
// session starts. The coordinator never looks inside the items.
package quiz

import (
	"fmt"
	"math/rand"

	"quizmatch/backend/internal/models"
)

const optionCount = 4

// GenerateRounds produces count multiple-choice arithmetic rounds.
// Order is preserved: clients play the items in the order given here.
func GenerateRounds(count int) []models.RoundItem {
	rounds := make([]models.RoundItem, 0, count)
	for i := 0; i < count; i++ {
		a := rand.Intn(50) + 1
		b := rand.Intn(50) + 1
		answer := a + b

		options := make([]string, optionCount)
		answerIndex := rand.Intn(optionCount)
		for j := range options {
			if j == answerIndex {
				options[j] = fmt.Sprintf("%d", answer)
				continue
			}
			// Wrong options stay near the answer but never equal it.
			offset := rand.Intn(10) + 1
			if rand.Intn(2) == 0 {
				offset = -offset
			}
			options[j] = fmt.Sprintf("%d", answer+offset)
		}

		rounds = append(rounds, models.RoundItem{
			Prompt:  fmt.Sprintf("What is %d + %d?", a, b),
			Options: options,
			Answer:  answerIndex,
		})
	}
	return rounds
}
