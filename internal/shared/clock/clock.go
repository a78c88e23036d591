package clock

import "time"

// Clock memisahkan "now" dari service agar mudah dites
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func System() Clock {
	return systemClock{}
}

// Fixed mengembalikan Clock yang selalu menjawab waktu yang sama (untuk test)
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
