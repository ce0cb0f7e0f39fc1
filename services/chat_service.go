package services

import (
	"context"
	"fmt"
	"log"

	"github.com/maxagent/rag/models"
)

const (
	// historyWindow bounds how many prior turns go into a request.
	historyWindow = 10
	// historyMessageLimit caps each replayed turn's size in bytes.
	historyMessageLimit = 500
	// contextTokenBudget bounds the retrieved-document context, leaving the
	// rest of the completion window for the conversation itself.
	contextTokenBudget = 1500

	apologyMessage = "Sorry, an internal error occurred. Please try again in a few moments."
)

// ChatService answers user messages grounded in the indexed documents.
type ChatService struct {
	assembler *ContextAssembler
	completer Completer
	opts      CompletionOptions
}

func NewChatService(assembler *ContextAssembler, completer Completer, opts CompletionOptions) *ChatService {
	return &ChatService{
		assembler: assembler,
		completer: completer,
		opts:      opts,
	}
}

// Answer runs one chat turn: assemble document context, build the message
// list, call the completion service, and record both turns in the session. A
// completion failure reaches the user as a fixed apology string, never a raw
// error.
func (s *ChatService) Answer(ctx context.Context, session *Session, userMessage string) string {
	contextText, err := s.assembler.Assemble(ctx, userMessage, contextTokenBudget)
	if err != nil {
		log.Printf("SERVICE: context assembly failed, answering without documents: %v", err)
		contextText = NoRelevantInformation
	}

	messages := make([]models.Message, 0, historyWindow+3)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: SystemPrompt()})
	messages = append(messages, models.Message{Role: models.RoleUser, Content: buildContextPrompt(contextText, userMessage)})
	for _, m := range session.RecentMessages(historyWindow) {
		messages = append(messages, models.Message{
			Role:    m.Role,
			Content: truncateBytes(m.Content, historyMessageLimit),
		})
	}
	messages = append(messages, models.Message{Role: models.RoleUser, Content: userMessage})

	answer, err := s.completer.Complete(ctx, messages, s.opts)
	if err != nil {
		log.Printf("SERVICE ERROR: completion failed: %v", err)
		answer = apologyMessage
	}

	session.AppendMessage(models.RoleUser, userMessage)
	session.AppendMessage(models.RoleAssistant, answer)
	return answer
}

func buildContextPrompt(contextText, question string) string {
	return fmt.Sprintf(`CONTEXT FROM INTERNAL DOCUMENTS:
%s

---

Based on the context above and your general knowledge, answer the following question:
%s

IMPORTANT:
- Always prioritise information from the internal document context
- If the answer is in the documents, cite the source
- If the documents hold nothing relevant, say so clearly
- Keep a professional and friendly tone`, contextText, question)
}
