package stores

import (
	"context"
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/services"
)

// CheckInStore is the GORM implementation of services.CheckInStore.
type CheckInStore struct {
	db *gorm.DB
}

// NewCheckInStore creates a check-in store over db.
func NewCheckInStore(db *gorm.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

// InTx runs fn inside one database transaction.
func (s *CheckInStore) InTx(ctx context.Context, fn func(tx services.CheckInTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkInTx{db: tx})
	})
}

func (s *CheckInStore) FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error) {
	return findByUserOnDay(s.db.WithContext(ctx), userID, day)
}

func (s *CheckInStore) FindCheckIn(ctx context.Context, id uint) (*models.CheckIn, error) {
	var rec models.CheckIn
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrCheckInNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *CheckInStore) ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	var recs []models.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checkin_time DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *CheckInStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.CheckIn{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrCheckInNotFound
	}
	return nil
}

// checkInTx is the transactional view handed to the engine.
type checkInTx struct {
	db *gorm.DB
}

// UserForUpdate locks the user row for the remainder of the transaction,
// serializing concurrent check-in attempts for the same user.
func (t *checkInTx) UserForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (t *checkInTx) FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error) {
	return findByUserOnDay(t.db.WithContext(ctx), userID, day)
}

// CreateCheckIn inserts the record. A losing concurrent writer hits the
// (user_id, checkin_day) unique key and gets the domain failure, not a raw
// storage error.
func (t *checkInTx) CreateCheckIn(ctx context.Context, rec *models.CheckIn) error {
	err := t.db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return nil
	}
	var mysqlErr *mysqldrv.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return services.ErrDuplicateCheckIn
	}
	return err
}

func (t *checkInTx) SaveUser(ctx context.Context, user *models.User) error {
	return t.db.WithContext(ctx).Save(user).Error
}

func findByUserOnDay(db *gorm.DB, userID uint, day string) (*models.CheckIn, error) {
	var rec models.CheckIn
	err := db.Where("user_id = ? AND checkin_day = ?", userID, day).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
