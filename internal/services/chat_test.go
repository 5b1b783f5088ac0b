package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/repos"
)

func TestSaveIncomingPersistsMessage(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log))

	courseID := uuid.New()
	senderID := uuid.New()
	payload := json.RawMessage(`{"courseId":"` + courseID.String() + `","content":"hello room"}`)

	if err := svc.SaveIncoming(ctx, senderID, courseID.String(), payload); err != nil {
		t.Fatalf("SaveIncoming: %v", err)
	}

	history, err := svc.History(ctx, courseID, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d messages, want 1", len(history))
	}
	msg := history[0]
	if msg.Content != "hello room" {
		t.Fatalf("content = %q, want %q", msg.Content, "hello room")
	}
	if msg.SenderID != senderID {
		t.Fatalf("sender = %s, want %s", msg.SenderID, senderID)
	}
	if len(msg.Metadata) == 0 {
		t.Fatal("raw payload not kept in metadata")
	}
}

func TestSaveIncomingValidation(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	svc := NewChatService(db, log, repos.NewChatMessageRepo(db, log))
	senderID := uuid.New()

	if err := svc.SaveIncoming(ctx, senderID, "42", json.RawMessage(`{"content":"x"}`)); err == nil {
		t.Fatal("non-UUID room id was persisted")
	}
	courseID := uuid.New().String()
	if err := svc.SaveIncoming(ctx, senderID, courseID, json.RawMessage(`{"content":"  "}`)); err == nil {
		t.Fatal("blank content was persisted")
	}
	if err := svc.SaveIncoming(ctx, senderID, courseID, json.RawMessage(`not json`)); err == nil {
		t.Fatal("malformed payload was persisted")
	}
}
