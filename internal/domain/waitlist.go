package domain

import "time"

type WaitlistEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Province  string    `json:"province"`
	CreatedAt time.Time `json:"createdAt"`
}
