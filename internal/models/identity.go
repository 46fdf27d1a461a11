package models

// Identity is the authenticated viewer as reported by the external auth service.
// A nil *Identity means an anonymous viewer.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Profile holds display metadata for an author, stored in the profiles table.
// ID is text since Firebase UIDs are not UUIDs.
type Profile struct {
	ID          string `json:"id" gorm:"type:text;primaryKey" bson:"_id"`
	DisplayName string `json:"display_name" bson:"display_name"`
	AvatarURL   string `json:"avatar_url" bson:"avatar_url"`
}

func (Profile) TableName() string { return "profiles" }
