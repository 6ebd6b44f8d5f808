package ai

import (
	"encoding/json"
	"fmt"

	"github.com/camuig/tradebook/internal/trade"
)

const systemPrompt = `You are a professional trading psychology and risk management coach.
Analyze the trader's performance from the trades you are given.
Look for patterns in the losses and check whether the trader is overtrading.
Give 3 specific, actionable tips to improve profitability.
Keep the tone encouraging but strict on risk management.
Format the output as Markdown.`

func BuildUserPrompt(trades []trade.Trade) (string, error) {
	data, err := json.MarshalIndent(Summarize(trades), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trades: %w", err)
	}
	return fmt.Sprintf("Here is a list of my recent %d trades:\n%s\n\nPlease analyze my performance.",
		RecentLimit, data), nil
}
