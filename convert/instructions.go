package convert

import (
	"fmt"
	"strings"

	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/schema"
)

// convertInstructions turns whichever instruction shape the scrape produced
// into ordered steps. A pre-split list is authoritative and taken verbatim;
// a free-text block is split on line boundaries with leading "1.", "2)"
// style numbering stripped per line.
func convertInstructions(r *models.ScrapedRecipe) []models.InstructionStep {
	lines := r.InstructionsList
	if len(lines) == 0 {
		lines = schema.SplitInstructionBlock(r.Instructions)
	}

	steps := make([]models.InstructionStep, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		steps = append(steps, models.InstructionStep{
			Title:       fmt.Sprintf("Step %d", len(steps)+1),
			Description: text,
		})
	}
	return steps
}
