package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"figment/internal/docmap"
	"figment/internal/figures"
	"figment/internal/imagestore"
	"figment/internal/llmclient"
)

// contextImageLimit caps how many figure descriptions get embedded in
// the system prompt; beyond that the model starts citing noise.
const contextImageLimit = 6

type Service struct {
	llm      llmclient.Client
	images   imagestore.Store
	mapper   *docmap.Mapper
	resolver *figures.Resolver
	store    Store
	product  string
}

func NewService(llm llmclient.Client, images imagestore.Store, resolver *figures.Resolver, store Store, product string) *Service {
	return &Service{
		llm:      llm,
		images:   images,
		mapper:   docmap.NewMapper(resolver.OSMigrationFigure),
		resolver: resolver,
		store:    store,
		product:  product,
	}
}

// Answer runs one chat turn and returns the persisted assistant
// message, citations included.
func (s *Service) Answer(ctx context.Context, documentID, userMessage string) (Message, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return Message{}, errors.New("chat: empty message")
	}

	now := time.Now().UTC()
	if err := s.store.Save(ctx, Message{
		ID:         uuid.New(),
		DocumentID: documentID,
		Role:       RoleUser,
		Content:    userMessage,
		CreatedAt:  now,
	}); err != nil {
		return Message{}, fmt.Errorf("save user message: %w", err)
	}

	candidates, system := s.assembleContext(ctx, documentID)

	answer, err := s.llm.Complete(ctx, llmclient.Request{
		System:      system,
		Prompt:      userMessage,
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return Message{}, fmt.Errorf("chat completion: %w", err)
	}

	msg := Message{
		ID:         uuid.New(),
		DocumentID: documentID,
		Role:       RoleAssistant,
		Content:    answer,
		References: s.resolver.Resolve(answer, userMessage, candidates),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Save(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("save assistant message: %w", err)
	}
	return msg, nil
}

func (s *Service) History(ctx context.Context, documentID string, limit int) ([]Message, error) {
	return s.store.History(ctx, documentID, limit)
}

// assembleContext loads the document's images and text, maps images to
// sections, and builds the system prompt. Lookup failures degrade to an
// unscoped prompt rather than failing the turn.
func (s *Service) assembleContext(ctx context.Context, documentID string) ([]figures.DocumentImage, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a support assistant for %s, a cloud workload migration product. ", s.product)
	b.WriteString("Answer from the product documentation. When a figure illustrates your answer, mention it by its figure number.")

	if documentID == "" {
		return nil, b.String()
	}

	candidates, err := s.images.Images(ctx, documentID)
	if err != nil {
		log.Printf("chat: load images for %s failed: %v", documentID, err)
		return nil, b.String()
	}

	text, err := s.images.DocumentText(ctx, documentID)
	if err != nil && !errors.Is(err, imagestore.ErrNotFound) {
		log.Printf("chat: load text for %s failed: %v", documentID, err)
	}

	infos := s.mapper.MapImages(documentID, text, candidates)
	lines := docmap.PromptLines(candidates, infos, contextImageLimit)
	if len(lines) > 0 {
		b.WriteString("\n\nFigures available in this document:\n")
		for _, line := range lines {
			b.WriteString("- " + line + "\n")
		}
	}
	return candidates, b.String()
}
