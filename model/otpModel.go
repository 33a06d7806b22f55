// model/otp.go
package model

import "time"

// Otp stores only the hash of an issued reset code. Several rows may exist
// per user; the most recent unused one is the current code.
type Otp struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OtpHash   string    `json:"-"`
	IsUsed    bool      `json:"is_used"`
	ExpiredAt time.Time `json:"expired_at"`
	CreatedAt time.Time `json:"created_at"`
}
