package recordstore

// Codec maps records of type T to and from CSV rows.
type Codec[T any] struct {
	// Header is written as the first row and skipped when loading.
	Header []string
	Encode func(T) []string
	// Decode returns an error for rows that should be skipped.
	Decode func([]string) (T, error)
	ID     func(T) uint
}
