package repositories

import (
	"errors"

	"realty_backend/internal/models"

	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ChatRepository interface {
	CreateConversation(conv *models.Conversation) error
	FindConversationByID(id string) (*models.Conversation, error)
	FindConversationsByUser(userID string, limit, offset int) ([]models.Conversation, int64, error)
	FindUnassigned(limit, offset int) ([]models.Conversation, int64, error)
	AssignAdmin(conversationID, adminID string) error
	SetClosed(conversationID string, closed bool) error

	CreateMessage(msg *models.Message) error
	FindMessages(conversationID string, limit, offset int) ([]models.Message, int64, error)
	MarkRead(conversationID, readerID string) error
}

type ChatRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

func (r *ChatRepositoryImpl) CreateConversation(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *ChatRepositoryImpl) FindConversationByID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Preload("User").Preload("Admin").First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepositoryImpl) FindConversationsByUser(userID string, limit, offset int) ([]models.Conversation, int64, error) {
	base := r.db.Model(&models.Conversation{}).
		Where("user_id = ? OR admin_id = ?", userID, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []models.Conversation
	err := base.Preload("User").Preload("Admin").
		Order("updated_at DESC").Limit(limit).Offset(offset).Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

func (r *ChatRepositoryImpl) FindUnassigned(limit, offset int) ([]models.Conversation, int64, error) {
	base := r.db.Model(&models.Conversation{}).Where("admin_id IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []models.Conversation
	err := base.Preload("User").Order("created_at ASC").
		Limit(limit).Offset(offset).Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

func (r *ChatRepositoryImpl) AssignAdmin(conversationID, adminID string) error {
	result := r.db.Model(&models.Conversation{}).
		Where("id = ? AND admin_id IS NULL", conversationID).
		Update("admin_id", adminID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *ChatRepositoryImpl) SetClosed(conversationID string, closed bool) error {
	result := r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).Update("closed", closed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *ChatRepositoryImpl) CreateMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *ChatRepositoryImpl) FindMessages(conversationID string, limit, offset int) ([]models.Message, int64, error) {
	base := r.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []models.Message
	err := base.Order("created_at ASC").Limit(limit).Offset(offset).Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// MarkRead flags every message the reader did not send as read.
func (r *ChatRepositoryImpl) MarkRead(conversationID, readerID string) error {
	return r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = false", conversationID, readerID).
		Update("read", true).Error
}
