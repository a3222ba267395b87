package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akash-tk/contactflix/internal/sdk/models"
)

const contactColumns = `
	id,
	user_id,
	first_name,
	last_name,
	address,
	company,
	profile_picture,
	created_at,
	updated_at
`

// CreateContact inserts a contact and its phone numbers in one
// transaction. The compound unique index on (user_id, phone) is the
// authoritative conflict signal: a concurrent insert of the same number
// for the same owner surfaces as ErrDBDuplicatedEntry.
func (s *service) CreateContact(ctx context.Context, nc models.NewContact) (models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Contact{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contacts (user_id, first_name, last_name, address, company, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + contactColumns

	contact, err := scanContact(tx.QueryRowContext(ctx, query,
		nc.UserID,
		nc.FirstName,
		nc.LastName,
		NullString(nc.Address),
		NullString(nc.Company),
		NullString(nc.ProfilePicture),
	))
	if err != nil {
		return models.Contact{}, fmt.Errorf("creating contact: %w", err)
	}

	if err := insertContactPhones(ctx, tx, contact.ID, nc.UserID, nc.PhoneNumbers); err != nil {
		return models.Contact{}, err
	}

	if err := tx.Commit(); err != nil {
		if isPgError(err, uniqueViolation) {
			return models.Contact{}, ErrDBDuplicatedEntry
		}
		return models.Contact{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	contact.PhoneNumbers = nc.PhoneNumbers
	return contact, nil
}

// GetContactByID retrieves a contact and its phone numbers.
func (s *service) GetContactByID(ctx context.Context, contactID string) (models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	contact, err := scanContact(s.db.QueryRowContext(ctx, query, contactID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, ErrDBNotFound
		}
		return models.Contact{}, fmt.Errorf("selecting contact: %w", err)
	}

	phones, err := s.contactPhones(ctx, []string{contact.ID})
	if err != nil {
		return models.Contact{}, err
	}
	contact.PhoneNumbers = phones[contact.ID]

	return contact, nil
}

// ListContacts returns one page of the owner's contacts, newest first,
// along with the total match count before pagination. A non-empty search
// term matches case-insensitive substrings of first name, last name,
// address, company, or any phone number.
func (s *service) ListContacts(ctx context.Context, ownerID string, q models.ContactQuery) ([]models.Contact, int, error) {
	const filter = `
		user_id = $1
		AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' ESCAPE '\'
			OR last_name ILIKE '%' || $2 || '%' ESCAPE '\'
			OR COALESCE(address, '') ILIKE '%' || $2 || '%' ESCAPE '\'
			OR COALESCE(company, '') ILIKE '%' || $2 || '%' ESCAPE '\'
			OR EXISTS (
				SELECT 1 FROM contact_phones p
				WHERE p.contact_id = contacts.id AND p.phone ILIKE '%' || $2 || '%' ESCAPE '\'
			))
	`

	search := escapeLike(q.Search)

	var total int
	countQuery := `SELECT COUNT(*) FROM contacts WHERE ` + filter
	if err := s.db.QueryRowContext(ctx, countQuery, ownerID, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting contacts: %w", err)
	}

	pageQuery := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + filter + `
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4
	`

	offset := (q.Page - 1) * q.Limit
	rows, err := s.db.QueryContext(ctx, pageQuery, ownerID, search, offset, q.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	var ids []string
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, contact)
		ids = append(ids, contact.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating contacts: %w", err)
	}

	phones, err := s.contactPhones(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range contacts {
		contacts[i].PhoneNumbers = phones[contacts[i].ID]
	}

	return contacts, total, nil
}

// UpdateContact replaces the contact's mutable fields and phone numbers
// in one transaction and bumps the update timestamp. The owner column is
// never touched.
func (s *service) UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Contact{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	query := `
		UPDATE contacts
		SET first_name = $2,
		    last_name = $3,
		    address = $4,
		    company = $5,
		    profile_picture = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + contactColumns

	updated, err := scanContact(tx.QueryRowContext(ctx, query,
		contact.ID,
		contact.FirstName,
		contact.LastName,
		NullString(contact.Address),
		NullString(contact.Company),
		NullString(contact.ProfilePicture),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, ErrDBNotFound
		}
		return models.Contact{}, fmt.Errorf("updating contact: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contact_phones WHERE contact_id = $1`, contact.ID); err != nil {
		return models.Contact{}, fmt.Errorf("clearing contact phones: %w", err)
	}
	if err := insertContactPhones(ctx, tx, contact.ID, updated.UserID, contact.PhoneNumbers); err != nil {
		return models.Contact{}, err
	}

	if err := tx.Commit(); err != nil {
		if isPgError(err, uniqueViolation) {
			return models.Contact{}, ErrDBDuplicatedEntry
		}
		return models.Contact{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	updated.PhoneNumbers = contact.PhoneNumbers
	return updated, nil
}

// DeleteContact removes a contact; its phone rows go with it via the
// cascade on contact_phones.
func (s *service) DeleteContact(ctx context.Context, contactID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, contactID)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDBNotFound
	}

	return nil
}

// FindTakenPhones checks all candidate numbers against the owner's other
// contacts in a single round trip.
func (s *service) FindTakenPhones(ctx context.Context, ownerID string, phones []string, excludeContactID string) ([]string, error) {
	if len(phones) == 0 {
		return nil, nil
	}

	const query = `
		SELECT DISTINCT phone
		FROM contact_phones
		WHERE user_id = $1
		  AND phone = ANY($2)
		  AND ($3::uuid IS NULL OR contact_id <> $3::uuid)
	`

	var exclude sql.NullString
	if excludeContactID != "" {
		exclude = sql.NullString{String: excludeContactID, Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query, ownerID, phones, exclude)
	if err != nil {
		return nil, fmt.Errorf("checking phone numbers: %w", err)
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("scanning phone number: %w", err)
		}
		taken = append(taken, phone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phone numbers: %w", err)
	}

	return taken, nil
}

func insertContactPhones(ctx context.Context, tx *sql.Tx, contactID, ownerID string, phones []string) error {
	const query = `
		INSERT INTO contact_phones (contact_id, user_id, phone, position)
		VALUES ($1, $2, $3, $4)
	`

	for i, phone := range phones {
		if _, err := tx.ExecContext(ctx, query, contactID, ownerID, phone, i); err != nil {
			if isPgError(err, uniqueViolation) {
				return ErrDBDuplicatedEntry
			}
			return fmt.Errorf("inserting contact phone: %w", err)
		}
	}
	return nil
}

func (s *service) contactPhones(ctx context.Context, contactIDs []string) (map[string][]string, error) {
	phones := make(map[string][]string, len(contactIDs))
	if len(contactIDs) == 0 {
		return phones, nil
	}

	const query = `
		SELECT contact_id, phone
		FROM contact_phones
		WHERE contact_id = ANY($1)
		ORDER BY contact_id, position
	`

	rows, err := s.db.QueryContext(ctx, query, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("selecting contact phones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, phone string
		if err := rows.Scan(&contactID, &phone); err != nil {
			return nil, fmt.Errorf("scanning contact phone: %w", err)
		}
		phones[contactID] = append(phones[contactID], phone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contact phones: %w", err)
	}

	return phones, nil
}

func scanContact(row rowScanner) (models.Contact, error) {
	var contact models.Contact
	var address, company, profilePicture sql.NullString

	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.FirstName,
		&contact.LastName,
		&address,
		&company,
		&profilePicture,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return models.Contact{}, err
	}

	contact.Address = StringPtr(address)
	contact.Company = StringPtr(company)
	contact.ProfilePicture = StringPtr(profilePicture)

	return contact, nil
}

// escapeLike neutralizes LIKE wildcards in a user-supplied search term so
// it matches as a literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
