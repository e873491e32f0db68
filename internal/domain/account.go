package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is the root identity entity. The pair (DisplayName, ShortCode) is
// globally unique; display names alone may repeat, the 4-digit short code
// disambiguates them for end users ("nova#4821").
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"           json:"id"`
	DisplayName  string             `bson:"display_name"            json:"display_name"`
	ShortCode    string             `bson:"short_code"              json:"short_code"`
	Email        string             `bson:"email,omitempty"         json:"email,omitempty"`
	ProfileImage string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	Bio          string             `bson:"bio,omitempty"           json:"bio,omitempty"`
	LastLogin    time.Time          `bson:"last_login,omitempty"    json:"last_login,omitempty"`
	Online       bool               `bson:"online"                  json:"online"`
	CreatedAt    time.Time          `bson:"created_at"              json:"created_at"`
}

// Tag is the human-facing identity, display name plus short code.
func (a *Account) Tag() string {
	return a.DisplayName + "#" + a.ShortCode
}
