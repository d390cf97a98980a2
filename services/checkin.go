package services

import (
	"context"
	"time"

	"github.com/lifecheck/lifecheck/models"
)

// CheckInTx is the view of the store available inside one atomic check-in.
// UserForUpdate must hold a row lock on the user until the transaction ends.
// CreateCheckIn returns ErrDuplicateCheckIn when the (user_id, checkin_day)
// unique key rejects the insert; the constraint, not the probe, is the
// source of truth for the one-per-day rule.
type CheckInTx interface {
	UserForUpdate(ctx context.Context, id uint) (*models.User, error)
	FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error)
	CreateCheckIn(ctx context.Context, rec *models.CheckIn) error
	SaveUser(ctx context.Context, user *models.User) error
}

// CheckInStore is the persistence collaborator of the engine.
type CheckInStore interface {
	InTx(ctx context.Context, fn func(tx CheckInTx) error) error
	FindByUserOnDay(ctx context.Context, userID uint, day string) (*models.CheckIn, error)
	FindCheckIn(ctx context.Context, id uint) (*models.CheckIn, error)
	ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error)
	Delete(ctx context.Context, id uint) error
}

// CheckInInput carries the caller-supplied optional fields of a check-in.
type CheckInInput struct {
	Note     string
	Location string
	Status   string
}

// CheckInResult is the outcome of a successful check-in.
type CheckInResult struct {
	Record     *models.CheckIn
	StreakDays int
}

// CheckInEngine enforces the one-per-day rule and recomputes streaks.
type CheckInEngine struct {
	users    UserStore
	checkins CheckInStore
	loc      *time.Location

	// now is swapped in tests to pin the calendar day.
	now func() time.Time
}

// NewCheckInEngine creates an engine computing day boundaries in loc.
func NewCheckInEngine(users UserStore, checkins CheckInStore, loc *time.Location) *CheckInEngine {
	if loc == nil {
		loc = time.Local
	}
	return &CheckInEngine{
		users:    users,
		checkins: checkins,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source, pinning the calendar day.
// Intended for tests.
func (e *CheckInEngine) WithClock(now func() time.Time) *CheckInEngine {
	e.now = now
	return e
}

// CheckIn records today's check-in for the user and updates the streak.
// The lookup, insert and user update run as one transaction: the row lock on
// the user serializes concurrent attempts and the unique day key fails the
// loser with ErrDuplicateCheckIn rather than a storage error.
func (e *CheckInEngine) CheckIn(ctx context.Context, userID uint, input CheckInInput) (*CheckInResult, error) {
	now := e.now().In(e.loc)
	today := models.DayOf(now)

	status := input.Status
	if status == "" {
		status = models.CheckInStatusNormal
	}

	var (
		rec    *models.CheckIn
		streak int
	)
	err := e.checkins.InTx(ctx, func(tx CheckInTx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// Early exit; the unique key below still backstops the race.
		if existing, err := tx.FindByUserOnDay(ctx, userID, today); err != nil {
			return err
		} else if existing != nil {
			return ErrDuplicateCheckIn
		}

		rec = &models.CheckIn{
			UserID:      user.ID,
			CheckinDay:  today,
			CheckinTime: now,
			Note:        input.Note,
			Location:    input.Location,
			Status:      status,
		}
		if err := tx.CreateCheckIn(ctx, rec); err != nil {
			return err
		}

		user.StreakDays = nextStreak(user.LastCheckInAt, now, user.StreakDays, e.loc)
		user.LastCheckInAt = &now
		streak = user.StreakDays
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return &CheckInResult{Record: rec, StreakDays: streak}, nil
}

// nextStreak computes the new consecutive-day count given the previous
// check-in time. A previous check-in dated today leaves the streak untouched;
// that branch is unreachable while the unique day key holds.
func nextStreak(prev *time.Time, now time.Time, current int, loc *time.Location) int {
	if prev == nil {
		return 1
	}
	prevDay := models.DayOf(prev.In(loc))
	switch prevDay {
	case models.DayOf(now):
		return current
	case models.DayOf(now.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// HasCheckedInToday reports whether the user already has a check-in whose
// timestamp falls within the current calendar day.
func (e *CheckInEngine) HasCheckedInToday(ctx context.Context, userID uint) (bool, error) {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		return false, err
	}
	today := models.DayOf(e.now().In(e.loc))
	existing, err := e.checkins.FindByUserOnDay(ctx, userID, today)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// UserCheckIns returns the user's check-in records, newest first.
func (e *CheckInEngine) UserCheckIns(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return e.checkins.ListByUser(ctx, userID)
}

// CheckInByID loads a single record.
func (e *CheckInEngine) CheckInByID(ctx context.Context, id uint) (*models.CheckIn, error) {
	return e.checkins.FindCheckIn(ctx, id)
}

// DeleteCheckIn removes a record owned by userID. Deleting a record does not
// rewind streak counters; it is an administrative correction.
func (e *CheckInEngine) DeleteCheckIn(ctx context.Context, userID, id uint) error {
	rec, err := e.checkins.FindCheckIn(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return ErrCheckInNotFound
	}
	return e.checkins.Delete(ctx, id)
}
