package pomotimer

import "time"

// ExistingRecord holds the columns every stored row carries. Times are kept at
// second precision, matching the unix timestamps the database stores.
type ExistingRecord[T ~string] struct {
	ID        T
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewExistingRecord[T ~string](id T, at time.Time) ExistingRecord[T] {
	at = at.Truncate(time.Second)
	return ExistingRecord[T]{
		ID:        id,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Touch returns a copy stamped as updated at at.
func (r ExistingRecord[T]) Touch(at time.Time) ExistingRecord[T] {
	r.UpdatedAt = at.Truncate(time.Second)
	return r
}
