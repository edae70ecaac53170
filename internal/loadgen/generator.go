package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	shapeDivisor       = 10
)

// Shape distribution cases. Clean payloads dominate so the run resembles
// real traffic where most model output parses on the first try.
const (
	caseFenced        = 6
	caseTrailingComma = 7
	caseMissingFields = 8
	caseProse         = 9
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generatePayloads creates the configured number of single-item payloads.
func generatePayloads(ctx context.Context, config *Config, stats *Stats) ([]Payload, error) {
	logger.Get().Info(ctx, "generating payloads", logger.Int("numPayloads", config.NumPayloads))

	payloads := make([]Payload, config.NumPayloads)
	for i := range payloads {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during payload generation: %w", ctx.Err())
		default:
		}
		payloads[i] = generateSinglePayload(i)
	}

	stats.PayloadsGenerated = len(payloads)
	logger.Get().Info(ctx, "generated payloads successfully", logger.Int("count", len(payloads)))
	return payloads, nil
}

// generateSinglePayload creates one scored-item payload with a randomly
// chosen defect shape.
func generateSinglePayload(index int) Payload {
	id := "payload_" + strconv.Itoa(index) + "_" + uuid.New().String()
	body := scoredItemJSON(index)

	randNum, _ := rand.Int(rand.Reader, big.NewInt(shapeDivisor))
	switch randNum.Int64() {
	case caseFenced:
		return Payload{ID: id, Kind: "single", Shape: ShapeFenced,
			Body: "```json\n" + body + "\n```"}
	case caseTrailingComma:
		return Payload{ID: id, Kind: "single", Shape: ShapeTrailingComma,
			Body: `{"questionNumber":` + strconv.Itoa(index+1) + `,"isCorrect":true,"pointsEarned":1,"confidence":0.8,}`}
	case caseMissingFields:
		return Payload{ID: id, Kind: "single", Shape: ShapeMissingFields,
			Body: `{"isCorrect":false}`}
	case caseProse:
		return Payload{ID: id, Kind: "single", Shape: ShapeProse,
			Body: "The student answer could not be graded automatically."}
	default:
		return Payload{ID: id, Kind: "single", Shape: ShapeClean, Body: body}
	}
}

// scoredItemJSON renders a conformant scored-item document.
func scoredItemJSON(index int) string {
	points := getRandomFloat() * 2
	confidence := 0.5 + getRandomFloat()*0.5
	correct := points > 1

	return fmt.Sprintf(`{"questionNumber":%d,"isCorrect":%t,"pointsEarned":%.2f,"confidence":%.2f}`,
		index+1, correct, points, confidence)
}

// generateBatchItems renders a batch of clean payloads for /validate/batch.
func generateBatchItems(n int) []batchRequestItem {
	items := make([]batchRequestItem, n)
	for i := range items {
		items[i] = batchRequestItem{
			ID:      "batch_" + strconv.Itoa(i),
			Payload: scoredItemJSON(i),
		}
	}
	return items
}
