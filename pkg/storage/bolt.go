package storage

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketBaselines   = []byte("baselines")
	bucketEvaluations = []byte("evaluations")
)

var ErrNotFound = errors.New("not_found")

type DB struct {
	db *bolt.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(bucketBaselines); e != nil {
			return e
		}
		if _, e := tx.CreateBucketIfNotExists(bucketEvaluations); e != nil {
			return e
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// BaselineRecord caches one computed baseline. Building the underlying
// distribution is the expensive step, so results are worth keeping across
// restarts.
type BaselineRecord struct {
	Key          string  `json:"key"`
	N            int     `json:"n"`
	T            int     `json:"t"`
	Baseline     float64 `json:"baseline"`
	ComputedUnix int64   `json:"computed_unix"`
}

// EvalRecord is one stored verdict for an evaluated classifier.
type EvalRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	N           int     `json:"n"`
	T           int     `json:"t"`
	Accuracy    float64 `json:"accuracy"`
	PValue      float64 `json:"p_value"`
	Baseline    float64 `json:"baseline"`
	Verdict     string  `json:"verdict"`
	CreatedUnix int64   `json:"created_unix"`
}

// SpecKey digests (n, ps) into a stable identifier for a constructed
// distribution. Permutations of ps hash differently; exchangeability makes
// that a recompute, not a bug.
func SpecKey(n int, ps []float64) string {
	h := sha1.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
	for _, p := range ps {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p))
		h.Write(buf[:])
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// BaselineKey extends a spec key with the classifier count, keying one cached
// baseline value.
func BaselineKey(specKey string, t int) string {
	return fmt.Sprintf("%s:%d", specKey, t)
}

func (d *DB) PutBaseline(r BaselineRecord) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		j, _ := json.Marshal(r)
		return tx.Bucket(bucketBaselines).Put([]byte(r.Key), j)
	})
}

func (d *DB) GetBaseline(key string) (*BaselineRecord, error) {
	var r BaselineRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBaselines).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DB) PutEval(r EvalRecord) (EvalRecord, error) {
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEvaluations)
		if r.ID == "" {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			r.ID = fmt.Sprintf("eval-%06d", seq)
		}
		if r.CreatedUnix == 0 {
			r.CreatedUnix = time.Now().Unix()
		}
		j, _ := json.Marshal(r)
		return b.Put([]byte(r.ID), j)
	})
	return r, err
}

func (d *DB) ListEvals() ([]EvalRecord, error) {
	out := []EvalRecord{}
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEvaluations).ForEach(func(k, v []byte) error {
			var r EvalRecord
			if err := json.Unmarshal(v, &r); err == nil {
				out = append(out, r)
			}
			return nil
		})
	})
	return out, err
}
