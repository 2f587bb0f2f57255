package extract

import (
	"github.com/harrisonrobin/taskplan/pkg/dates"
	"github.com/harrisonrobin/taskplan/pkg/llm"
)

// NewExtractor picks the extraction strategy for a session. The rule
// extractor is used unless the LLM path is requested and a client exists.
func NewExtractor(useLLM bool, client llm.Completer, resolver *dates.Resolver, now Clock) Extractor {
	if useLLM && client != nil {
		return NewLLMExtractor(client, resolver, now)
	}
	return NewRuleExtractor(resolver, now)
}
