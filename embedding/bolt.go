package embedding

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	bolt "go.etcd.io/bbolt"
)

var vectorBucket = []byte("vector")

// flushThreshold is the number of vectors written per transaction on import.
const flushThreshold = 4096

// BoltStore is a Lookup backed by a bbolt file, so a large GloVe text file
// is parsed once and reused across runs.
type BoltStore struct {
	db *bolt.DB
}

var _ Lookup = (*BoltStore)(nil)

// OpenBoltStore opens or creates the store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0666, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(vectorBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Len returns the number of stored vectors.
func (s *BoltStore) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(vectorBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Import stores every vector of a GloVe text stream and returns how many
// were written.
func (s *BoltStore) Import(r io.Reader) (int, error) {
	var pending []Entry
	count := 0

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(vectorBucket)
			for _, e := range pending {
				if err := b.Put([]byte(e.Word), encodeVector(e.Vector)); err != nil {
					return err
				}
			}
			return nil
		})
		count += len(pending)
		pending = pending[:0]
		return err
	}

	err := Scan(r, func(e Entry) error {
		pending = append(pending, e)
		if len(pending) >= flushThreshold {
			return flush()
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

func (s *BoltStore) Vector(word string) ([]float64, bool, error) {
	var vec []float64
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(vectorBucket).Get([]byte(word))
		if data == nil {
			return nil
		}
		v, err := decodeVector(data)
		vec = v
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return vec, vec != nil, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	return buf
}

// decodeVector copies out of the bolt page, which is only valid inside the
// transaction.
func decodeVector(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("corrupt vector of %d bytes", len(data))
	}
	v := make([]float64, len(data)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return v, nil
}
