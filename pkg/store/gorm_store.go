package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"docchat/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &CorpusModel{}, &UploadEventModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser stores or replaces a user record.
func (s *GormStore) SaveUser(u domain.User) error {
	model := UserModel{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user by primary key.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromModel(model), true, nil
}

// GetUserByIdentifier fetches a user by username or email.
func (s *GormStore) GetUserByIdentifier(identifier string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.First(&model, "user_name = ? OR email = ?", identifier, identifier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user by identifier: %w", err)
	}
	return userFromModel(model), true, nil
}

// HasUserEmail reports whether a user with the email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count email: %w", err)
	}
	return count > 0, nil
}

// ListUserIDs returns all user IDs ordered by registration time.
func (s *GormStore) ListUserIDs() ([]string, error) {
	var ids []string
	if err := s.db.Model(&UserModel{}).Order("created_at asc").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

// DeleteUser removes a user record.
func (s *GormStore) DeleteUser(id string) error {
	if err := s.db.Delete(&UserModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// GetCorpus fetches the corpus for an owner.
func (s *GormStore) GetCorpus(ownerID string) (domain.Corpus, bool, error) {
	var model CorpusModel
	err := s.db.First(&model, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Corpus{}, false, nil
	}
	if err != nil {
		return domain.Corpus{}, false, fmt.Errorf("get corpus: %w", err)
	}
	return domain.Corpus{
		OwnerID:   model.OwnerID,
		Text:      model.Text,
		ByteSize:  model.ByteSize,
		UpdatedAt: model.UpdatedAt,
	}, true, nil
}

// PutCorpus writes the full corpus row for an owner in one statement, so a
// reader never observes a torn write.
func (s *GormStore) PutCorpus(c domain.Corpus) error {
	model := CorpusModel{
		OwnerID:   c.OwnerID,
		Text:      c.Text,
		ByteSize:  c.ByteSize,
		UpdatedAt: c.UpdatedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		UpdateAll: true,
	}).Create(&model).Error; err != nil {
		return fmt.Errorf("put corpus: %w", err)
	}
	return nil
}

// DeleteCorpus removes the corpus row and reports whether one existed.
func (s *GormStore) DeleteCorpus(ownerID string) (bool, error) {
	res := s.db.Delete(&CorpusModel{}, "owner_id = ?", ownerID)
	if res.Error != nil {
		return false, fmt.Errorf("delete corpus: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AppendUploadEvent records one upload attempt.
func (s *GormStore) AppendUploadEvent(e domain.UploadEvent) error {
	model := UploadEventModel{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Filename:  e.Filename,
		CharCount: e.CharCount,
		Accepted:  e.Accepted,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return fmt.Errorf("append upload event: %w", err)
	}
	return nil
}

// ListUploadEvents returns the most recent events for an owner, newest first.
func (s *GormStore) ListUploadEvents(ownerID string, limit int) ([]domain.UploadEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []UploadEventModel
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list upload events: %w", err)
	}
	events := make([]domain.UploadEvent, 0, len(models))
	for _, m := range models {
		events = append(events, domain.UploadEvent{
			ID:        m.ID,
			OwnerID:   m.OwnerID,
			Filename:  m.Filename,
			CharCount: m.CharCount,
			Accepted:  m.Accepted,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		})
	}
	return events, nil
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		UserName:     m.UserName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}
