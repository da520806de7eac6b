// Package app wires extraction, corpus management, and answering into the
// application core behind the HTTP layer.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docchat/internal/util"
	"docchat/pkg/ai"
	"docchat/pkg/auth"
	"docchat/pkg/corpus"
	"docchat/pkg/domain"
	"docchat/pkg/extract"
	"docchat/pkg/prompt"
	"docchat/pkg/storage"
	"docchat/pkg/store"
)

const (
	maxUserNameChars = 15
	minPasswordChars = 8

	defaultMaxContextChars = 12000
	defaultAnswerTimeout   = 30 * time.Second
	defaultHistoryLimit    = 50

	archiveTimeout = 30 * time.Second
)

// TextExtractor turns uploaded bytes into extracted text.
type TextExtractor interface {
	Extract(data []byte, filename string) (extract.Result, error)
}

// Config holds runtime dependencies and tunables for the core application.
type Config struct {
	Store     store.Store
	Corpus    *corpus.Manager
	Extractor TextExtractor
	Generator ai.TextGenerator
	// Archive, when set, receives a copy of every accepted upload.
	// Archive failures are logged and never fail the upload.
	Archive storage.ObjectStore

	AdminEmail      string
	MaxContextChars int
	AnswerTimeout   time.Duration
	HistoryLimit    int
}

// App is the application core: account management plus the upload → corpus
// → query pipeline. Stateless across requests; every query re-reads the
// current corpus.
type App struct {
	store     store.Store
	corpus    *corpus.Manager
	extractor TextExtractor
	generator ai.TextGenerator
	archive   storage.ObjectStore

	adminEmail      string
	maxContextChars int
	answerTimeout   time.Duration
	historyLimit    int
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	if cfg.Corpus == nil {
		return nil, errors.New("corpus manager required")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("generator required")
	}
	maxContextChars := cfg.MaxContextChars
	if maxContextChars <= 0 {
		maxContextChars = defaultMaxContextChars
	}
	answerTimeout := cfg.AnswerTimeout
	if answerTimeout <= 0 {
		answerTimeout = defaultAnswerTimeout
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &App{
		store:           cfg.Store,
		corpus:          cfg.Corpus,
		extractor:       cfg.Extractor,
		generator:       cfg.Generator,
		archive:         cfg.Archive,
		adminEmail:      strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		maxContextChars: maxContextChars,
		answerTimeout:   answerTimeout,
		historyLimit:    historyLimit,
	}, nil
}

// UploadReceipt reports the corpus state after a successful upload.
type UploadReceipt struct {
	Filename   string    `json:"filename"`
	CharCount  int       `json:"charCount"`
	TotalChars int       `json:"totalChars"`
	ByteSize   int64     `json:"byteSize"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Answer is the outcome of one query.
type Answer struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register creates a user account. An empty id gets a generated UUID;
// a supplied one must parse as a UUID and be unused.
func (a *App) Register(id, userName, email, password string) (domain.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return domain.User{}, fmt.Errorf("%w: user name required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(userName) > maxUserNameChars {
		return domain.User{}, fmt.Errorf("%w: user name too long", domain.ErrValidation)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordChars {
		return domain.User{}, fmt.Errorf("%w: password too short", domain.ErrValidation)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}
	if _, exists, err := a.store.GetUserByID(id); err != nil {
		return domain.User{}, fmt.Errorf("check user id: %w", err)
	} else if exists {
		return domain.User{}, fmt.Errorf("%w: user id already registered", domain.ErrValidation)
	}
	if exists, err := a.store.HasUserEmail(email); err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	} else if exists {
		return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	role := domain.RoleUser
	if a.adminEmail != "" && email == a.adminEmail {
		role = domain.RoleAdmin
	}
	user := domain.User{
		ID:           id,
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID, "user_name", user.UserName)
	return user, nil
}

// Authenticate checks an identifier (username or email) and password.
func (a *App) Authenticate(identifier, password string) (domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	user, exists, err := a.store.GetUserByIdentifier(identifier)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !exists || !auth.CheckPassword(password, user.PasswordHash) {
		slog.Warn("login failed", "identifier", identifier)
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser fetches a user by ID. Used by the HTTP layer to resolve session
// subjects.
func (a *App) GetUser(id string) (domain.User, bool, error) {
	return a.store.GetUserByID(id)
}

// ListUserIDs returns all registered user IDs with the total count.
func (a *App) ListUserIDs() ([]string, int, error) {
	ids, err := a.store.ListUserIDs()
	if err != nil {
		return nil, 0, err
	}
	return ids, len(ids), nil
}

// DeleteAccount removes a user after re-checking their password, along with
// their corpus.
func (a *App) DeleteAccount(ctx context.Context, userID, password string) error {
	user, exists, err := a.store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if _, err := a.corpus.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete corpus: %w", err)
	}
	if err := a.store.DeleteUser(userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.Info("account deleted", "user_id", userID)
	return nil
}

// Upload extracts text from a PDF and appends it to the owner's corpus,
// creating the corpus on first upload. Extraction runs before the per-owner
// lock is taken; only the combine-and-persist step is serialized. Every
// attempt, accepted or rejected, is recorded as an upload event.
func (a *App) Upload(ctx context.Context, owner domain.User, filename string, data []byte) (UploadReceipt, error) {
	filename = filepath.Base(filename)
	res, err := a.extractor.Extract(data, filename)
	if err != nil {
		a.recordEvent(owner.ID, filename, 0, false, reason(err))
		return UploadReceipt{}, err
	}
	c, err := a.corpus.CreateOrAppend(ctx, owner.ID, res.Text)
	if err != nil {
		a.recordEvent(owner.ID, filename, res.CharCount, false, reason(err))
		return UploadReceipt{}, err
	}
	eventID := a.recordEvent(owner.ID, filename, res.CharCount, true, "")
	if a.archive != nil {
		go a.archiveUpload(owner.ID, eventID, filename, data)
	}
	slog.Info("upload accepted",
		"user_id", owner.ID,
		"filename", filename,
		"chars", res.CharCount,
		"corpus_bytes", c.ByteSize,
	)
	return UploadReceipt{
		Filename:   filename,
		CharCount:  res.CharCount,
		TotalChars: utf8.RuneCountInString(c.Text),
		ByteSize:   c.ByteSize,
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

// Query answers a question over the owner's corpus. Single pass, no
// retries: a missing corpus ends as ErrNoContent before any model call, and
// an upstream failure surfaces as ErrUpstream for the caller to handle.
func (a *App) Query(ctx context.Context, owner domain.User, question string) (Answer, error) {
	c, err := a.corpus.Read(ctx, owner.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return Answer{}, domain.ErrNoContent
	}
	if err != nil {
		return Answer{}, err
	}
	if err := prompt.ValidateQuestion(question); err != nil {
		return Answer{}, err
	}
	userPrompt := prompt.Build(question, c.Text, a.maxContextChars)

	callCtx, cancel := context.WithTimeout(ctx, a.answerTimeout)
	defer cancel()
	text, err := a.generator.GenerateText(callCtx, prompt.SystemPrompt, userPrompt)
	if err != nil {
		slog.Warn("answer generation failed", "user_id", owner.ID, "err", err)
		return Answer{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	slog.Info("query answered", "user_id", owner.ID, "answer_chars", utf8.RuneCountInString(text))
	return Answer{
		Question:  strings.TrimSpace(question),
		Answer:    text,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DeleteCorpus removes the owner's accumulated text and reports whether a
// corpus existed.
func (a *App) DeleteCorpus(ctx context.Context, ownerID string) (bool, error) {
	existed, err := a.corpus.Delete(ctx, ownerID)
	if err != nil {
		return false, err
	}
	slog.Info("corpus deleted", "user_id", ownerID, "existed", existed)
	return existed, nil
}

// UploadHistory lists recent upload events for the owner, newest first.
// Events carry metadata only; corpus text is never included.
func (a *App) UploadHistory(ownerID string) ([]domain.UploadEvent, error) {
	return a.store.ListUploadEvents(ownerID, a.historyLimit)
}

func (a *App) recordEvent(ownerID, filename string, charCount int, accepted bool, reason string) string {
	event := domain.UploadEvent{
		ID:        util.NewID(),
		OwnerID:   ownerID,
		Filename:  filename,
		CharCount: charCount,
		Accepted:  accepted,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendUploadEvent(event); err != nil {
		slog.Warn("record upload event failed", "user_id", ownerID, "err", err)
	}
	return event.ID
}

func (a *App) archiveUpload(ownerID, eventID, filename string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	key := fmt.Sprintf("%s/%s_%s", ownerID, eventID, filename)
	if err := a.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		slog.Warn("archive upload failed", "user_id", ownerID, "key", key, "err", err)
	}
}

// reason strips the shared error-kind prefix so events store the short,
// user-facing explanation ("file too large", not "validation failed: ...").
func reason(err error) string {
	msg := err.Error()
	for _, kind := range []error{domain.ErrValidation, domain.ErrQuotaExceeded, domain.ErrExtraction} {
		prefix := kind.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
