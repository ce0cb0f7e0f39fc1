package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxagent/rag/models"
)

type fakeCompleter struct {
	got    []models.Message
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []models.Message, _ CompletionOptions) (string, error) {
	f.got = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestChat(searcher Searcher, completer Completer) *ChatService {
	return NewChatService(NewContextAssembler(searcher, 5), completer, CompletionOptions{
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   4000,
	})
}

func TestAnswerBuildsOrderedPrompt(t *testing.T) {
	searcher := &fakeSearcher{results: []models.SearchResult{{Text: "vacation policy: 30 days"}}}
	completer := &fakeCompleter{answer: "You get 30 days."}
	chat := newTestChat(searcher, completer)
	session := newSession()

	answer := chat.Answer(context.Background(), session, "How many vacation days?")
	assert.Equal(t, "You get 30 days.", answer)

	require.GreaterOrEqual(t, len(completer.got), 3)
	assert.Equal(t, models.RoleSystem, completer.got[0].Role)
	assert.Equal(t, SystemPrompt(), completer.got[0].Content)

	instruction := completer.got[1]
	assert.Equal(t, models.RoleUser, instruction.Role)
	assert.Contains(t, instruction.Content, "vacation policy: 30 days")
	assert.Contains(t, instruction.Content, "How many vacation days?")

	last := completer.got[len(completer.got)-1]
	assert.Equal(t, models.RoleUser, last.Role)
	assert.Equal(t, "How many vacation days?", last.Content)
}

func TestAnswerEmbedsSentinelWhenIndexEmpty(t *testing.T) {
	completer := &fakeCompleter{answer: "I don't know."}
	chat := newTestChat(&fakeSearcher{}, completer)

	chat.Answer(context.Background(), newSession(), "anything?")
	assert.Contains(t, completer.got[1].Content, NoRelevantInformation)
}

func TestAnswerReplaysBoundedHistory(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	chat := newTestChat(&fakeSearcher{}, completer)
	session := newSession()

	for i := 0; i < 7; i++ {
		session.AppendMessage(models.RoleUser, fmt.Sprintf("question %d", i))
		session.AppendMessage(models.RoleAssistant, fmt.Sprintf("answer %d", i))
	}

	chat.Answer(context.Background(), session, "current question")

	// system + instruction + last 10 turns + current message
	require.Len(t, completer.got, 13)
	window := completer.got[2 : len(completer.got)-1]
	assert.Equal(t, "question 2", window[0].Content, "oldest turns must fall out of the window")
	assert.Equal(t, "answer 6", window[len(window)-1].Content)
}

func TestAnswerTruncatesReplayedTurns(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	chat := newTestChat(&fakeSearcher{}, completer)
	session := newSession()
	session.AppendMessage(models.RoleUser, strings.Repeat("x", 2000))

	chat.Answer(context.Background(), session, "short question")

	require.Len(t, completer.got, 4)
	assert.Len(t, completer.got[2].Content, 500)
}

func TestAnswerCurrentMessageNotTruncated(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	chat := newTestChat(&fakeSearcher{}, completer)
	long := strings.Repeat("y", 2000)

	chat.Answer(context.Background(), newSession(), long)
	last := completer.got[len(completer.got)-1]
	assert.Equal(t, long, last.Content, "the current message goes through verbatim")
}

func TestAnswerApologisesOnCompletionFailure(t *testing.T) {
	completer := &fakeCompleter{err: ErrCompletionFailure}
	chat := newTestChat(&fakeSearcher{}, completer)
	session := newSession()

	answer := chat.Answer(context.Background(), session, "will this fail?")
	assert.Equal(t, apologyMessage, answer)

	// Both turns are still recorded so the transcript stays coherent.
	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, apologyMessage, messages[1].Content)
}

func TestAnswerRecordsBothTurns(t *testing.T) {
	completer := &fakeCompleter{answer: "the answer"}
	chat := newTestChat(&fakeSearcher{}, completer)
	session := newSession()

	chat.Answer(context.Background(), session, "the question")
	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "the question", messages[0].Content)
	assert.Equal(t, "the answer", messages[1].Content)
	assert.False(t, messages[0].Timestamp.IsZero())
}
