package usecase

import (
	"fmt"

	"github.com/krywicki/zeroshot/internal/domain/entity"
)

// DemoMaxLength is the token limit of the demonstration run
const DemoMaxLength = 128

// DemoLabels are the candidate labels of the demonstration run
var DemoLabels = []string{"product", "customer support", "troubleshooting", "refund"}

// DemoInputs are the sentences of the demonstration run
var DemoInputs = []string{
	"I'm calling you today to get some help figuring out how my new router works.",
	"The new washing machine I bought from you guys is no longer working.",
	"Nice weather we're having today.",
	"I bought a motherboard recently and it was DOA. I'm hoping to return this.",
}

// ConversationTemplate phrases a label as a claim about a conversation
func ConversationTemplate(label string) string {
	return fmt.Sprintf("This conversation is about %s.", label)
}

// DemoInput returns the demonstration run on BART-MNLI
func DemoInput() *RunInput {
	return &RunInput{
		ModelConfig: entity.ModelConfigBartMNLI,
		Labels:      DemoLabels,
		Inputs:      DemoInputs,
		Template:    ConversationTemplate,
		MaxLength:   DemoMaxLength,
	}
}
