package therapist

import "time"

// Therapist is a care professional linked to candidates through the
// encrypted therapist reference on their profile.
type Therapist struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
