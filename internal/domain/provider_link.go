package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supported identity providers.
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// SupportedProvider reports whether name is a provider this service federates with.
func SupportedProvider(name string) bool {
	switch name {
	case ProviderGoogle, ProviderKakao, ProviderNaver:
		return true
	}
	return false
}

// ProviderLink binds one external identity (provider, external user id) to
// exactly one local account. Links are created once and never mutated.
type ProviderLink struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID  primitive.ObjectID `bson:"account_id"    json:"account_id"`
	Provider   string             `bson:"provider"      json:"provider"`
	ExternalID string             `bson:"external_id"   json:"external_id"`
	CreatedAt  time.Time          `bson:"created_at"    json:"created_at"`
}
