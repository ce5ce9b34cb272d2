package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

const userColumns = `id, username, password_hash, first_name, last_name, degree_type,
	specialty, subspecialty, npi_number, photo_url, bio`

func scanUser(sc scanner) (model.User, error) {
	var u model.User
	var degree, specialty, subspecialty, npi, photo, bio sql.Null[string]
	err := sc.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&degree, &specialty, &subspecialty, &npi, &photo, &bio)
	if err != nil {
		return u, fmt.Errorf("scan user: %w", err)
	}
	u.DegreeType = ptr(degree)
	u.Specialty = ptr(specialty)
	u.Subspecialty = ptr(subspecialty)
	u.NPINumber = ptr(npi)
	u.PhotoURL = ptr(photo)
	u.Bio = ptr(bio)
	return u, nil
}

// CreateUser inserts a provider profile. Usernames are unique; a duplicate
// fails with a constraint error.
func (s *Store) CreateUser(ctx context.Context, u model.User) (int64, error) {
	return call(ctx, s, "create_user", func(q querier) (int64, error) {
		return createUser(ctx, q, u)
	})
}

func createUser(ctx context.Context, q querier, u model.User) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO users (username, password_hash, first_name, last_name, degree_type,
			specialty, subspecialty, npi_number, photo_url, bio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.PasswordHash, u.FirstName, u.LastName, arg(u.DegreeType),
		arg(u.Specialty), arg(u.Subspecialty), arg(u.NPINumber), arg(u.PhotoURL), arg(u.Bio))
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// GetUser returns the user with id, or nil.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return call(ctx, s, "get_user", func(q querier) (*model.User, error) {
		return getUser(ctx, q, id)
	})
}

func getUser(ctx context.Context, q querier, id int64) (*model.User, error) {
	return queryOne(ctx, q, scanUser, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// CurrentUser returns the local provider, the user with the lowest id, or
// nil when no user exists.
func (s *Store) CurrentUser(ctx context.Context) (*model.User, error) {
	return call(ctx, s, "current_user", func(q querier) (*model.User, error) {
		return currentUser(ctx, q)
	})
}

func currentUser(ctx context.Context, q querier) (*model.User, error) {
	return queryOne(ctx, q, scanUser, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT 1`)
}

// UpdateUser replaces the profile fields of user u.ID. The password hash is
// left unchanged; see UpdatePassword.
func (s *Store) UpdateUser(ctx context.Context, u model.User) error {
	const op = "update_user"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "user", u.ID, `
			UPDATE users SET username = ?, first_name = ?, last_name = ?, degree_type = ?,
				specialty = ?, subspecialty = ?, npi_number = ?, photo_url = ?, bio = ?
			WHERE id = ?
		`, u.Username, u.FirstName, u.LastName, arg(u.DegreeType),
			arg(u.Specialty), arg(u.Subspecialty), arg(u.NPINumber), arg(u.PhotoURL), arg(u.Bio), u.ID)
	})
}

// UpdatePassword stores a new password hash. Hashing and verification are
// the caller's concern.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "update_password"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "user", id,
			`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	})
}

// Education

func scanEducation(sc scanner) (model.UserEducation, error) {
	var e model.UserEducation
	var degree, field sql.Null[string]
	var start, end sql.Null[int64]
	err := sc.Scan(&e.ID, &e.UserID, &e.EducationType, &e.Institution, &degree, &field, &start, &end)
	if err != nil {
		return e, fmt.Errorf("scan education: %w", err)
	}
	e.Degree = ptr(degree)
	e.FieldOfStudy = ptr(field)
	e.StartYear = ptr(start)
	e.EndYear = ptr(end)
	return e, nil
}

// AddEducation appends a training entry to a provider profile.
func (s *Store) AddEducation(ctx context.Context, e model.UserEducation) (int64, error) {
	return call(ctx, s, "add_education", func(q querier) (int64, error) {
		return addEducation(ctx, q, e)
	})
}

func addEducation(ctx context.Context, q querier, e model.UserEducation) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO user_education (user_id, education_type, institution, degree, field_of_study, start_year, end_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.UserID, e.EducationType, e.Institution, arg(e.Degree), arg(e.FieldOfStudy), arg(e.StartYear), arg(e.EndYear))
	if err != nil {
		return 0, fmt.Errorf("insert education: %w", err)
	}
	return id, nil
}

// ListEducation returns a provider's education, most recent start first.
func (s *Store) ListEducation(ctx context.Context, userID int64) ([]model.UserEducation, error) {
	return call(ctx, s, "list_education", func(q querier) ([]model.UserEducation, error) {
		return listEducation(ctx, q, userID)
	})
}

func listEducation(ctx context.Context, q querier, userID int64) ([]model.UserEducation, error) {
	return queryAll(ctx, q, scanEducation, `
		SELECT id, user_id, education_type, institution, degree, field_of_study, start_year, end_year
		FROM user_education WHERE user_id = ?
		ORDER BY start_year DESC, id DESC
	`, userID)
}

// DeleteEducation removes a training entry.
func (s *Store) DeleteEducation(ctx context.Context, id int64) error {
	const op = "delete_education"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "education entry", id, `DELETE FROM user_education WHERE id = ?`, id)
	})
}

// Badges

func scanBadge(sc scanner) (model.UserBadge, error) {
	var b model.UserBadge
	var desc, icon, color, awarded sql.Null[string]
	if err := sc.Scan(&b.ID, &b.UserID, &b.BadgeName, &b.BadgeType, &desc, &icon, &color, &awarded); err != nil {
		return b, fmt.Errorf("scan badge: %w", err)
	}
	b.Description = ptr(desc)
	b.Icon = ptr(icon)
	b.Color = ptr(color)
	b.AwardedDate = ptr(awarded)
	return b, nil
}

// AddBadge appends a certification, award or honor to a provider profile.
func (s *Store) AddBadge(ctx context.Context, b model.UserBadge) (int64, error) {
	return call(ctx, s, "add_badge", func(q querier) (int64, error) {
		return addBadge(ctx, q, b)
	})
}

func addBadge(ctx context.Context, q querier, b model.UserBadge) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO user_badges (user_id, badge_name, badge_type, description, icon, color, awarded_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.UserID, b.BadgeName, b.BadgeType, arg(b.Description), arg(b.Icon), arg(b.Color), arg(b.AwardedDate))
	if err != nil {
		return 0, fmt.Errorf("insert badge: %w", err)
	}
	return id, nil
}

// ListBadges returns a provider's badges, most recently awarded first.
func (s *Store) ListBadges(ctx context.Context, userID int64) ([]model.UserBadge, error) {
	return call(ctx, s, "list_badges", func(q querier) ([]model.UserBadge, error) {
		return listBadges(ctx, q, userID)
	})
}

func listBadges(ctx context.Context, q querier, userID int64) ([]model.UserBadge, error) {
	return queryAll(ctx, q, scanBadge, `
		SELECT id, user_id, badge_name, badge_type, description, icon, color, awarded_date
		FROM user_badges WHERE user_id = ?
		ORDER BY awarded_date DESC, id DESC
	`, userID)
}

// DeleteBadge removes a badge.
func (s *Store) DeleteBadge(ctx context.Context, id int64) error {
	const op = "delete_badge"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "badge", id, `DELETE FROM user_badges WHERE id = ?`, id)
	})
}

// Settings

func scanSettings(sc scanner) (model.UserSettings, error) {
	var st model.UserSettings
	var notif, email, sms, twoFactor, zen int64
	err := sc.Scan(&st.ID, &st.UserID, &st.Language, &notif, &email, &sms, &twoFactor, &zen)
	if err != nil {
		return st, fmt.Errorf("scan settings: %w", err)
	}
	st.NotificationsEnabled = notif != 0
	st.EmailNotifications = email != 0
	st.SMSNotifications = sms != 0
	st.TwoFactorEnabled = twoFactor != 0
	st.ZenModeDefault = zen != 0
	return st, nil
}

// GetUserSettings returns a user's settings, first persisting the defaults
// if the user has none yet. It returns nil when the user does not exist.
func (s *Store) GetUserSettings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	return callTx(ctx, s, "get_user_settings", func(q querier) (*model.UserSettings, error) {
		u, err := getUser(ctx, q, userID)
		if err != nil || u == nil {
			return nil, err
		}
		return userSettings(ctx, q, userID)
	})
}

// userSettings reads the settings row, inserting defaults when absent.
func userSettings(ctx context.Context, q querier, userID int64) (*model.UserSettings, error) {
	def := model.DefaultUserSettings(userID)
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_settings (user_id, language, notifications_enabled,
			email_notifications, sms_notifications, two_factor_enabled, zen_mode_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, def.Language, boolInt(def.NotificationsEnabled), boolInt(def.EmailNotifications),
		boolInt(def.SMSNotifications), boolInt(def.TwoFactorEnabled), boolInt(def.ZenModeDefault))
	if err != nil {
		return nil, fmt.Errorf("insert default settings: %w", err)
	}
	return queryOne(ctx, q, scanSettings, `
		SELECT id, user_id, language, notifications_enabled, email_notifications,
			sms_notifications, two_factor_enabled, zen_mode_default
		FROM user_settings WHERE user_id = ?
	`, userID)
}

// UpdateUserSettings writes every settings field for st.UserID, creating the
// row if needed.
func (s *Store) UpdateUserSettings(ctx context.Context, st model.UserSettings) error {
	return exec(ctx, s, "update_user_settings", func(q querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO user_settings (user_id, language, notifications_enabled,
				email_notifications, sms_notifications, two_factor_enabled, zen_mode_default)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				language = excluded.language,
				notifications_enabled = excluded.notifications_enabled,
				email_notifications = excluded.email_notifications,
				sms_notifications = excluded.sms_notifications,
				two_factor_enabled = excluded.two_factor_enabled,
				zen_mode_default = excluded.zen_mode_default
		`, st.UserID, st.Language, boolInt(st.NotificationsEnabled), boolInt(st.EmailNotifications),
			boolInt(st.SMSNotifications), boolInt(st.TwoFactorEnabled), boolInt(st.ZenModeDefault))
		if err != nil {
			return fmt.Errorf("upsert settings: %w", err)
		}
		return nil
	})
}
