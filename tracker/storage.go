package tracker

// Storage is the injected persistence port. Load returns (nil, nil) when no
// document exists yet. Save failures surface to the caller unchanged; the
// ledger never retries.
type Storage interface {
	Load() (*Aggregate, error)
	Save(*Aggregate) error
}

// MemoryStorage is an in-memory Storage used in tests. It round-trips
// through the document codec so tests exercise the same encode/decode path
// as the file-backed store.
type MemoryStorage struct {
	data []byte
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (s *MemoryStorage) Load() (*Aggregate, error) {
	if s.data == nil {
		return nil, nil
	}
	return DecodeAggregate(s.data)
}

func (s *MemoryStorage) Save(agg *Aggregate) error {
	data, err := EncodeAggregate(agg)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}
