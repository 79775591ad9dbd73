package dto

import "time"

type StartConversationRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Body    string `json:"body" validate:"required,min=1,max=10000"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=10000"`
}

type ConversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AdminID   *string   `json:"adminId"`
	Subject   string    `json:"subject"`
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}
