package services

import (
	"context"
	"errors"

	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"
)

// ChatNotifier pushes a new message to connected websocket clients. The ws
// manager implements it; a nil notifier disables pushes.
type ChatNotifier interface {
	NotifyConversation(conversationID string, payload any)
}

// ChatService owns support conversations between users and admins.
type ChatService struct {
	chatRepo repositories.ChatRepository
	notifier ChatNotifier
}

func NewChatService(chatRepo repositories.ChatRepository, notifier ChatNotifier) *ChatService {
	return &ChatService{chatRepo: chatRepo, notifier: notifier}
}

// Start opens a conversation with its first message. The conversation
// waits unassigned until an admin claims it.
func (s *ChatService) Start(ctx context.Context, userID string, req *dto.StartConversationRequest) (*dto.ConversationResponse, error) {
	conv := &models.Conversation{
		UserID:  userID,
		Subject: req.Subject,
	}
	if err := s.chatRepo.CreateConversation(conv); err != nil {
		return nil, apperrors.InternalError(err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		Body:           req.Body,
	}
	if err := s.chatRepo.CreateMessage(msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "conversation started", "conversation_id", conv.ID, "user_id", userID)
	resp := toConversationResponse(conv)
	return &resp, nil
}

// Send appends a message. Writing to a closed conversation reopens it:
// closure is a soft state, never a wall for the participants.
func (s *ChatService) Send(ctx context.Context, senderID string, role models.UserRole, conversationID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	conv, err := s.authorizeParticipant(senderID, role, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Closed {
		if err := s.chatRepo.SetClosed(conversationID, false); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "conversation reopened by message", "conversation_id", conversationID)
	}

	// First admin reply claims an unassigned conversation.
	if conv.AdminID == nil && role == models.UserRoleAdmin {
		if err := s.chatRepo.AssignAdmin(conversationID, senderID); err != nil &&
			!errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           req.Body,
	}
	if err := s.chatRepo.CreateMessage(msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toMessageResponse(msg)
	if s.notifier != nil {
		s.notifier.NotifyConversation(conversationID, resp)
	}
	return &resp, nil
}

// Messages returns one page of a conversation, oldest first, and marks the
// other side's messages as read.
func (s *ChatService) Messages(ctx context.Context, userID string, role models.UserRole, conversationID string, limit, offset int) (*dto.MessageListResponse, error) {
	if _, err := s.authorizeParticipant(userID, role, conversationID); err != nil {
		return nil, err
	}

	msgs, total, err := s.chatRepo.FindMessages(conversationID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.chatRepo.MarkRead(conversationID, userID); err != nil {
		logger.CtxWarn(ctx, "mark read failed", "conversation_id", conversationID, "error", err.Error())
	}

	out := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i]))
	}
	return &dto.MessageListResponse{Messages: out, Total: total}, nil
}

// ListMine returns the conversations the caller participates in.
func (s *ChatService) ListMine(ctx context.Context, userID string, limit, offset int) ([]dto.ConversationResponse, int64, error) {
	convs, total, err := s.chatRepo.FindConversationsByUser(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return toConversationResponses(convs), total, nil
}

// ListUnassigned is the admin queue of conversations waiting for pickup.
func (s *ChatService) ListUnassigned(ctx context.Context, limit, offset int) ([]dto.ConversationResponse, int64, error) {
	convs, total, err := s.chatRepo.FindUnassigned(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return toConversationResponses(convs), total, nil
}

// Close marks a conversation resolved. Either participant may close it; a
// later message reopens it.
func (s *ChatService) Close(ctx context.Context, userID string, role models.UserRole, conversationID string) error {
	if _, err := s.authorizeParticipant(userID, role, conversationID); err != nil {
		return err
	}
	if err := s.chatRepo.SetClosed(conversationID, true); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// CanAccessConversation reports whether the caller may read a
// conversation. The websocket manager runs this before registering a
// subscription so pushes carry the same participation rules as the REST
// surface.
func (s *ChatService) CanAccessConversation(ctx context.Context, userID string, role models.UserRole, conversationID string) error {
	_, err := s.authorizeParticipant(userID, role, conversationID)
	return err
}

// authorizeParticipant loads the conversation and checks the caller may
// act in it. Admins may act in any conversation.
func (s *ChatService) authorizeParticipant(userID string, role models.UserRole, conversationID string) (*models.Conversation, error) {
	conv, err := s.chatRepo.FindConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if role == models.UserRoleAdmin {
		return conv, nil
	}
	if conv.UserID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return conv, nil
}

func toConversationResponse(c *models.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		AdminID:   c.AdminID,
		Subject:   c.Subject,
		Closed:    c.Closed,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toConversationResponses(convs []models.Conversation) []dto.ConversationResponse {
	out := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		out = append(out, toConversationResponse(&convs[i]))
	}
	return out
}

func toMessageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}
