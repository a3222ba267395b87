// Package sqldb provides database operations for the contacts service.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"

	"github.com/akash-tk/contactflix/internal/sdk/models"
)

// PostgreSQL error codes
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = "23505"
	undefinedTable      = "42P01"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	notNullViolation    = "23502"
)

var (
	ErrDBNotFound          = sql.ErrNoRows
	ErrDBDuplicatedEntry   = errors.New("duplicated entry")
	ErrUndefinedTable      = errors.New("undefined table")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrNotNullViolation    = errors.New("not null violation")
	ErrTransactionFailed   = errors.New("transaction failed")
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	// User operations
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)

	// Contact operations
	CreateContact(ctx context.Context, contact models.NewContact) (models.Contact, error)
	GetContactByID(ctx context.Context, contactID string) (models.Contact, error)
	ListContacts(ctx context.Context, ownerID string, query models.ContactQuery) ([]models.Contact, int, error)
	UpdateContact(ctx context.Context, contact models.Contact) (models.Contact, error)
	DeleteContact(ctx context.Context, contactID string) error

	// FindTakenPhones returns which of the given phone numbers already
	// belong to another contact of the same owner. excludeContactID may
	// be empty (no exclusion).
	FindTakenPhones(ctx context.Context, ownerID string, phones []string, excludeContactID string) ([]string, error)
}

type service struct {
	db *sql.DB
}

var (
	database   = os.Getenv("CONTACTS_DB_DATABASE")
	password   = os.Getenv("CONTACTS_DB_PASSWORD")
	username   = os.Getenv("CONTACTS_DB_USERNAME")
	port       = os.Getenv("CONTACTS_DB_PORT")
	host       = os.Getenv("CONTACTS_DB_HOST")
	schema     = os.Getenv("CONTACTS_DB_SCHEMA")
	dbInstance *service
)

func New() Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s", username, password, host, port, database, schema)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatal(err)
	}
	dbInstance = &service{
		db: db,
	}
	return dbInstance
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	log.Printf("Disconnected from database: %s", database)
	return s.db.Close()
}

// ---------------------------------------------
// User operations
// ---------------------------------------------

const userColumns = `
	id,
	first_name,
	last_name,
	email,
	password,
	date_of_birth,
	gender,
	phone_numbers,
	address,
	profile_picture,
	created_at,
	updated_at
`

// GetUserByID retrieves a user by their ID.
func (s *service) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address. The match is
// exact and case-sensitive.
func (s *service) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrDBNotFound
		}
		return models.User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *service) CreateUser(ctx context.Context, nu models.NewUser) (models.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, password, date_of_birth, gender, phone_numbers, address, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	phonesJSON, err := json.Marshal(nu.PhoneNumbers)
	if err != nil {
		return models.User{}, fmt.Errorf("encoding phone numbers: %w", err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		nu.FirstName,
		nu.LastName,
		nu.Email,
		nu.Password,
		nu.DateOfBirth,
		nu.Gender,
		phonesJSON,
		nu.Address,
		NullString(nu.ProfilePicture),
	))

	if err != nil {
		if isPgError(err, uniqueViolation) {
			return models.User{}, ErrDBDuplicatedEntry
		}
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var phonesJSON []byte
	var profilePicture sql.NullString

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.DateOfBirth,
		&user.Gender,
		&phonesJSON,
		&user.Address,
		&profilePicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	if len(phonesJSON) > 0 {
		if err := json.Unmarshal(phonesJSON, &user.PhoneNumbers); err != nil {
			return models.User{}, fmt.Errorf("decoding phone numbers: %w", err)
		}
	}
	user.ProfilePicture = StringPtr(profilePicture)

	return user, nil
}

// ---------------------------------------------
// Helpers
// ---------------------------------------------

// isPgError checks if the error is a PostgreSQL error with the given code
func isPgError(err error, code string) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == code
	}
	return false
}

// NullString creates a sql.NullString from a string pointer.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullTime creates a sql.NullTime from a time.Time pointer.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// StringPtr returns a pointer to a string from sql.NullString.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// TimePtr returns a pointer to a time.Time from sql.NullTime.
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDBNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDBDuplicatedEntry) || isPgError(err, uniqueViolation)
}

// IsForeignKeyViolation checks if the error is a foreign key violation error.
func IsForeignKeyViolation(err error) bool {
	return isPgError(err, foreignKeyViolation)
}
