package models

import "time"

// Profile carries quota accounting for a user. ID is the user id.
type Profile struct {
	ID           string    `json:"id" bson:"_id"`
	FullName     string    `json:"full_name" bson:"full_name"`
	AvatarURL    string    `json:"avatar_url" bson:"avatar_url"`
	StorageUsed  int64     `json:"storage_used" bson:"storage_used"`
	StorageLimit int64     `json:"storage_limit" bson:"storage_limit"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type StorageUsage struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

func (p *Profile) Usage() StorageUsage {
	return StorageUsage{Used: p.StorageUsed, Total: p.StorageLimit}
}

// Remaining returns the free bytes left in the quota, never negative.
func (p *Profile) Remaining() int64 {
	if p.StorageUsed >= p.StorageLimit {
		return 0
	}
	return p.StorageLimit - p.StorageUsed
}
