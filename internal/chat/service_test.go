package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figment/internal/figures"
	"figment/internal/imagestore"
	"figment/internal/llmclient"
)

func newTestService(llm llmclient.Client) (*Service, *imagestore.MemoryStore, *MemoryStore) {
	images := imagestore.NewMemoryStore()
	store := NewMemoryStore()
	svc := NewService(llm, images, figures.NewResolver("RiverMeadow"), store, "RiverMeadow")
	return svc, images, store
}

func TestAnswerResolvesFigureReferences(t *testing.T) {
	llm := llmclient.NewFakeClient("The appliance console is shown in Figure 3.")
	svc, images, _ := newTestService(llm)
	images.AddDocument("doc-1", "# Launch\nFigure 3 shows the console.",
		figures.DocumentImage{ID: 3, DocumentID: "doc-1", ImagePath: "img/3.png", Caption: "Figure 3 - Appliance console"},
	)

	msg, err := svc.Answer(context.Background(), "doc-1", "Where do I see the appliance console?")
	require.NoError(t, err)

	require.Len(t, msg.References, 1)
	assert.Equal(t, 3, msg.References[0].ID)
	assert.Equal(t, "image", msg.References[0].Type)
	assert.Equal(t, RoleAssistant, msg.Role)
}

func TestAnswerEmbedsFigureContextInSystemPrompt(t *testing.T) {
	llm := llmclient.NewFakeClient("answer")
	svc, images, _ := newTestService(llm)
	images.AddDocument("doc-1", "Figure 3 shows the console.",
		figures.DocumentImage{ID: 3, DocumentID: "doc-1", Caption: "Figure 3 - Appliance console"},
	)

	_, err := svc.Answer(context.Background(), "doc-1", "How do I launch?")
	require.NoError(t, err)

	require.Len(t, llm.Requests, 1)
	assert.Contains(t, llm.Requests[0].System, "Figure 3")
	assert.Contains(t, llm.Requests[0].System, "RiverMeadow")
}

func TestAnswerPersistsBothTurns(t *testing.T) {
	llm := llmclient.NewFakeClient("answer text")
	svc, _, store := newTestService(llm)

	_, err := svc.Answer(context.Background(), "", "hello there")
	require.NoError(t, err)

	history, err := store.History(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hello there", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Nil(t, history[0].References)
}

func TestAnswerUnscopedHasNoReferences(t *testing.T) {
	llm := llmclient.NewFakeClient("General info, see Figure 5.")
	svc, _, _ := newTestService(llm)

	msg, err := svc.Answer(context.Background(), "", "tell me about migration")
	require.NoError(t, err)
	assert.Nil(t, msg.References)
}

func TestAnswerRejectsEmptyMessage(t *testing.T) {
	svc, _, _ := newTestService(llmclient.NewFakeClient("x"))
	_, err := svc.Answer(context.Background(), "doc-1", "   ")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "empty"))
}
