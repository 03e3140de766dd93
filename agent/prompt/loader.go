package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/chat.txt
	chatRaw string

	//go:embed template/planning.txt
	planningRaw string

	//go:embed template/generator.txt
	generatorRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Chat      string
	Planning  string
	Generator string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Chat:      strings.TrimSpace(chatRaw),
		Planning:  strings.TrimSpace(planningRaw),
		Generator: strings.TrimSpace(generatorRaw),
	}
}
