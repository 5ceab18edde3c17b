package gorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/model"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// nameAAD binds encrypted names to the users.name column.
var nameAAD = []byte("users.name")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Ensure RegistrationStore implements store.RegistrationStore
var _ store.RegistrationStore = (*RegistrationStore)(nil)

// RegistrationStore implements store.RegistrationStore using GORM
type RegistrationStore struct {
	db     *gorm.DB
	cipher crypt.Cipher
}

// NewRegistrationStore creates a new RegistrationStore. cipher must be
// deterministic, e.g. *crypt.Deterministic.
func NewRegistrationStore(db *gorm.DB, cipher crypt.Cipher) *RegistrationStore {
	return &RegistrationStore{db: db, cipher: cipher}
}

// FindByName retrieves the registration of name
func (s *RegistrationStore) FindByName(ctx context.Context, name string) (*store.Registration, error) {
	encName, err := s.encryptName(name)
	if err != nil {
		return nil, err
	}

	var rows []model.User
	if err := s.db.WithContext(ctx).Where("name = ?", encName).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching registration: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}

	row := rows[0]
	schoolID, err := s.decryptSchool(row.Name, row.School)
	if err != nil {
		return nil, err
	}

	return &store.Registration{
		ID:          row.ID,
		Name:        name,
		SchoolID:    schoolID,
		DateConsent: row.DateConsent,
	}, nil
}

// Create inserts a registration
func (s *RegistrationStore) Create(ctx context.Context, r *store.Registration) error {
	encName, err := s.encryptName(r.Name)
	if err != nil {
		return err
	}
	encSchool, err := s.encryptSchool(encName, r.SchoolID)
	if err != nil {
		return err
	}

	row := model.User{
		Name:        encName,
		School:      encSchool,
		DateConsent: r.DateConsent,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating registration: %w: %w", store.ErrDuplicate, err)
		}
		return fmt.Errorf("creating registration: %w", err)
	}

	r.ID = row.ID
	return nil
}

// UpdateSchool replaces the school of name's registration
func (s *RegistrationStore) UpdateSchool(ctx context.Context, name string, schoolID int64) error {
	encName, err := s.encryptName(name)
	if err != nil {
		return err
	}
	encSchool, err := s.encryptSchool(encName, schoolID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("name = ?", encName).
		Update("school", encSchool)
	if result.Error != nil {
		return fmt.Errorf("updating registration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes name's registration
func (s *RegistrationStore) Delete(ctx context.Context, name string) error {
	encName, err := s.encryptName(name)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("name = ?", encName).Delete(&model.User{})
	if result.Error != nil {
		return fmt.Errorf("deleting registration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *RegistrationStore) encryptName(name string) ([]byte, error) {
	enc, err := s.cipher.Encrypt(nameAAD, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("encrypting name: %w", err)
	}
	return enc, nil
}

// The school ciphertext is bound to the row's encrypted name.
func (s *RegistrationStore) encryptSchool(encName []byte, schoolID int64) ([]byte, error) {
	enc, err := s.cipher.Encrypt(encName, []byte(strconv.FormatInt(schoolID, 10)))
	if err != nil {
		return nil, fmt.Errorf("encrypting school: %w", err)
	}
	return enc, nil
}

func (s *RegistrationStore) decryptSchool(encName, encSchool []byte) (int64, error) {
	plain, err := s.cipher.Decrypt(encName, encSchool)
	if err != nil {
		return 0, fmt.Errorf("decrypting school: %w", err)
	}
	id, err := strconv.ParseInt(string(plain), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decrypted school is not an id: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
