package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithEdition labels the board's metrics with an edition id.
func WithEdition(id string) Option {
	return func(s *TreapStore) {
		if id != "" {
			s.edition = id
		}
	}
}
