package tracker

import (
	"fmt"

	"github.com/peterbourgon/diskv/v3"
)

const aggregateKey = "aggregate"

// DiskvStorage persists the aggregate document as a single key in a
// file-backed diskv store.
type DiskvStorage struct {
	d *diskv.Diskv
}

// NewDiskvStorage creates a Storage rooted at basePath.
func NewDiskvStorage(basePath string) *DiskvStorage {
	return &DiskvStorage{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1 << 20,
	})}
}

func (s *DiskvStorage) Load() (*Aggregate, error) {
	if !s.d.Has(aggregateKey) {
		return nil, nil
	}
	data, err := s.d.Read(aggregateKey)
	if err != nil {
		return nil, fmt.Errorf("read aggregate: %w", err)
	}
	return DecodeAggregate(data)
}

func (s *DiskvStorage) Save(agg *Aggregate) error {
	data, err := EncodeAggregate(agg)
	if err != nil {
		return err
	}
	if err := s.d.Write(aggregateKey, data); err != nil {
		return fmt.Errorf("write aggregate: %w", err)
	}
	return nil
}
