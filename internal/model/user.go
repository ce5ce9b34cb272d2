package model

// User is a clinician (provider) profile.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"password_hash"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	DegreeType   *string `json:"degree_type,omitempty"`
	Specialty    *string `json:"specialty,omitempty"`
	Subspecialty *string `json:"subspecialty,omitempty"`
	NPINumber    *string `json:"npi_number,omitempty"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	Bio          *string `json:"bio,omitempty"`
}

// UserEducation is one training entry on a provider profile.
type UserEducation struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	EducationType string  `json:"education_type"`
	Institution   string  `json:"institution"`
	Degree        *string `json:"degree,omitempty"`
	FieldOfStudy  *string `json:"field_of_study,omitempty"`
	StartYear     *int64  `json:"start_year,omitempty"`
	EndYear       *int64  `json:"end_year,omitempty"`
}

// UserBadge is a certification, award or honor.
type UserBadge struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	BadgeName   string  `json:"badge_name"`
	BadgeType   string  `json:"badge_type"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	AwardedDate *string `json:"awarded_date,omitempty"`
}

// UserSettings holds per-user preferences. Exactly one row exists per user.
type UserSettings struct {
	ID                   int64  `json:"id"`
	UserID               int64  `json:"user_id"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	EmailNotifications   bool   `json:"email_notifications"`
	SMSNotifications     bool   `json:"sms_notifications"`
	TwoFactorEnabled     bool   `json:"two_factor_enabled"`
	ZenModeDefault       bool   `json:"zen_mode_default"`
}

// DefaultUserSettings returns the settings a user has before changing any.
func DefaultUserSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:               userID,
		Language:             "en",
		NotificationsEnabled: true,
		EmailNotifications:   true,
		SMSNotifications:     false,
		TwoFactorEnabled:     false,
		ZenModeDefault:       false,
	}
}
