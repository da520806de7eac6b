package store

import "docchat/pkg/domain"

// Store defines persistence operations for users, corpora, and upload events.
// Corpus operations are atomic per owner key; serialization of concurrent
// read-modify-write cycles is the corpus manager's job, not the store's.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByIdentifier(identifier string) (domain.User, bool, error)
	HasUserEmail(email string) (bool, error)
	ListUserIDs() ([]string, error)
	DeleteUser(id string) error

	// corpora
	GetCorpus(ownerID string) (domain.Corpus, bool, error)
	PutCorpus(domain.Corpus) error
	DeleteCorpus(ownerID string) (bool, error)

	// upload events
	AppendUploadEvent(domain.UploadEvent) error
	ListUploadEvents(ownerID string, limit int) ([]domain.UploadEvent, error)
}
