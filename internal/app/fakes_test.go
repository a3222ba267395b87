package app

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akash-tk/contactflix/internal/sdk/models"
	"github.com/akash-tk/contactflix/internal/sdk/sqldb"
	"github.com/akash-tk/contactflix/internal/services/minio"
)

// fakeStore is an in-memory sqldb.Service. It enforces the same
// uniqueness rules as the schema: unique user emails and a compound
// (owner, phone) constraint on contact phone numbers.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	contacts map[string]models.Contact
	seq      int

	listErr   error
	deleteErr error

	// suppressTaken makes that many FindTakenPhones calls report no
	// conflicts, so a concurrent write can slip past the pre-check and
	// the uniqueness constraint becomes the only line of defense.
	suppressTaken int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]models.User),
		contacts: make(map[string]models.Contact),
	}
}

func (f *fakeStore) Health() map[string]string { return map[string]string{"status": "up"} }
func (f *fakeStore) Close() error              { return nil }

func (f *fakeStore) nextTime() time.Time {
	f.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, sqldb.ErrDBNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, sqldb.ErrDBNotFound
}

func (f *fakeStore) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == nu.Email {
			return models.User{}, sqldb.ErrDBDuplicatedEntry
		}
	}
	now := f.nextTime()
	user := models.User{
		ID:             uuid.NewString(),
		FirstName:      nu.FirstName,
		LastName:       nu.LastName,
		Email:          nu.Email,
		Password:       nu.Password,
		DateOfBirth:    nu.DateOfBirth,
		Gender:         nu.Gender,
		PhoneNumbers:   append([]string(nil), nu.PhoneNumbers...),
		Address:        nu.Address,
		ProfilePicture: nu.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) phoneTaken(ownerID, phone, excludeContactID string) bool {
	for _, contact := range f.contacts {
		if contact.UserID != ownerID || contact.ID == excludeContactID {
			continue
		}
		for _, p := range contact.PhoneNumbers {
			if p == phone {
				return true
			}
		}
	}
	return false
}

func (f *fakeStore) CreateContact(ctx context.Context, nc models.NewContact) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, phone := range nc.PhoneNumbers {
		if f.phoneTaken(nc.UserID, phone, "") {
			return models.Contact{}, sqldb.ErrDBDuplicatedEntry
		}
	}
	now := f.nextTime()
	contact := models.Contact{
		ID:             uuid.NewString(),
		UserID:         nc.UserID,
		FirstName:      nc.FirstName,
		LastName:       nc.LastName,
		Address:        nc.Address,
		Company:        nc.Company,
		PhoneNumbers:   append([]string(nil), nc.PhoneNumbers...),
		ProfilePicture: nc.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.contacts[contact.ID] = contact
	return contact, nil
}

func (f *fakeStore) GetContactByID(ctx context.Context, contactID string) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[contactID]
	if !ok {
		return models.Contact{}, sqldb.ErrDBNotFound
	}
	return contact, nil
}

func contactMatches(contact models.Contact, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	fields := []string{contact.FirstName, contact.LastName}
	if contact.Address != nil {
		fields = append(fields, *contact.Address)
	}
	if contact.Company != nil {
		fields = append(fields, *contact.Company)
	}
	fields = append(fields, contact.PhoneNumbers...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (f *fakeStore) ListContacts(ctx context.Context, ownerID string, q models.ContactQuery) ([]models.Contact, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	var matched []models.Contact
	for _, contact := range f.contacts {
		if contact.UserID == ownerID && contactMatches(contact, q.Search) {
			matched = append(matched, contact)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeStore) UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.contacts[contact.ID]
	if !ok {
		return models.Contact{}, sqldb.ErrDBNotFound
	}
	for _, phone := range contact.PhoneNumbers {
		if f.phoneTaken(stored.UserID, phone, contact.ID) {
			return models.Contact{}, sqldb.ErrDBDuplicatedEntry
		}
	}
	contact.UserID = stored.UserID
	contact.CreatedAt = stored.CreatedAt
	contact.UpdatedAt = f.nextTime()
	contact.PhoneNumbers = append([]string(nil), contact.PhoneNumbers...)
	f.contacts[contact.ID] = contact
	return contact, nil
}

func (f *fakeStore) DeleteContact(ctx context.Context, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.contacts[contactID]; !ok {
		return sqldb.ErrDBNotFound
	}
	delete(f.contacts, contactID)
	return nil
}

func (f *fakeStore) FindTakenPhones(ctx context.Context, ownerID string, phones []string, excludeContactID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suppressTaken > 0 {
		f.suppressTaken--
		return nil, nil
	}
	var taken []string
	for _, phone := range phones {
		if f.phoneTaken(ownerID, phone, excludeContactID) {
			taken = append(taken, phone)
		}
	}
	return taken, nil
}

// fakeStorage is an in-memory ObjectStorage.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) NewObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "uploads/" + uuid.NewString() + ext
}

func (f *fakeStorage) UploadWithVariants(ctx context.Context, objectName string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return nil, minio.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) DeleteWithVariants(ctx context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, objectName)
	return nil
}

func (f *fakeStorage) has(objectName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectName]
	return ok
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
