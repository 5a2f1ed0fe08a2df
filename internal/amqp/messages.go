package amqp

import (
	"encoding/json"
	"time"
)

// RolloverMessage carries one archived day to the health-sync worker.
// Day is the archived day's local midnight; AmountML the day's total.
type RolloverMessage struct {
	Day       time.Time `json:"day"`
	AmountML  int       `json:"amount_ml"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRolloverMessage(day time.Time, amountML int) *RolloverMessage {
	return &RolloverMessage{
		Day:       day,
		AmountML:  amountML,
		Timestamp: time.Now(),
	}
}

func (m *RolloverMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RolloverMessageFromJSON(data []byte) (*RolloverMessage, error) {
	var msg RolloverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
