package reminder

import (
	"fmt"
	"math/rand/v2"
)

// Request is one calendar-triggered reminder to install. Identifier is
// stable per time slot so reinstalling replaces rather than duplicates.
type Request struct {
	Identifier string `json:"identifier"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Repeats    bool   `json:"repeats"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// checkpoints are the fixed time-of-day / fraction-of-target pairs. A
// reminder is due for a checkpoint whose fraction is not yet met.
var checkpoints = []struct {
	hour     int
	fraction float64
}{
	{12, 0.25},
	{16, 0.5},
	{20, 0.75},
}

var messages = []string{
	"Time for a glass of water 💧",
	"Had enough to drink today?",
	"Water break! 🚰",
}

func eveningMessages(remaining int) []string {
	return []string{
		fmt.Sprintf("Only %dml to go until today's goal - you've got this!", remaining),
		fmt.Sprintf("Almost there! Treat yourself to the last %dml for today", remaining),
		fmt.Sprintf("A small sip for you, a big step for your wellbeing - %dml left", remaining),
	}
}

// Plan maps the running total and target onto the set of reminders to
// install: at most one per checkpoint, only for checkpoints whose
// fractional threshold is still unmet. The 20:00 slot carries the
// remaining amount; the earlier slots pick a message from the fixed pool
// at random, so identifiers are stable across calls while bodies may vary.
func Plan(currentAmount, targetAmount int) []Request {
	remaining := targetAmount - currentAmount
	if remaining < 0 {
		remaining = 0
	}

	var requests []Request
	for _, cp := range checkpoints {
		required := float64(targetAmount) * cp.fraction
		if float64(currentAmount) >= required {
			continue
		}

		body := messages[rand.IntN(len(messages))]
		if cp.hour == 20 {
			pool := eveningMessages(remaining)
			body = pool[rand.IntN(len(pool))]
		}

		requests = append(requests, Request{
			Identifier: fmt.Sprintf("water-%d", cp.hour),
			Hour:       cp.hour,
			Minute:     0,
			Repeats:    true,
			Title:      "Drink water",
			Body:       body,
		})
	}
	return requests
}
