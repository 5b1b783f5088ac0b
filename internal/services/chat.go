package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type ChatService interface {
	// SaveIncoming persists one relay payload. The relay treats payloads as
	// opaque; this is the strict side that requires a real course id and a
	// non-empty content field before writing history.
	SaveIncoming(ctx context.Context, senderID uuid.UUID, courseID string, payload json.RawMessage) error
	History(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error)
}

type chatService struct {
	db              *gorm.DB
	log             *logger.Logger
	chatMessageRepo repos.ChatMessageRepo
}

func NewChatService(db *gorm.DB, baseLog *logger.Logger, chatMessageRepo repos.ChatMessageRepo) ChatService {
	serviceLog := baseLog.With("service", "ChatService")
	return &chatService{db: db, log: serviceLog, chatMessageRepo: chatMessageRepo}
}

type incomingChatPayload struct {
	Content    string     `json:"content"`
	ReceiverID *uuid.UUID `json:"receiverId,omitempty"`
}

func (cs *chatService) SaveIncoming(ctx context.Context, senderID uuid.UUID, courseID string, payload json.RawMessage) error {
	parsedCourseID, err := uuid.Parse(strings.TrimSpace(courseID))
	if err != nil {
		// Relay room ids are opaque strings; only UUID-keyed rooms map to
		// durable course history.
		return fmt.Errorf("course id %q is not persistable: %w", courseID, err)
	}

	var in incomingChatPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("decode chat payload: %w", err)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("chat message content is empty")
	}

	message := &types.ChatMessage{
		ID:         uuid.New(),
		CourseID:   parsedCourseID,
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		Metadata:   datatypes.JSON(payload),
	}
	if _, err := cs.chatMessageRepo.Create(ctx, nil, []*types.ChatMessage{message}); err != nil {
		return fmt.Errorf("persist chat message: %w", err)
	}
	return nil
}

func (cs *chatService) History(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error) {
	messages, err := cs.chatMessageRepo.ListForCourse(ctx, nil, courseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	return messages, nil
}
