// Package checkpoint stores chain states in a bolt database so that an
// interrupted chain can be resumed.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"

	"github.com/san-kum/hmcsim/internal/dynamo"
)

var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket holding all checkpoints.
var MAIN = []byte("main")

// Data is one stored chain state.
type Data struct {
	Pos   []float64 `json:"pos"`
	Mom   []float64 `json:"mom"`
	Dir   int       `json:"dir"`
	Iter  int       `json:"iter"`
	Final bool      `json:"final"`
}

func (d *Data) State() *dynamo.ChainState {
	return dynamo.NewChainState(d.Pos, d.Mom, d.Dir)
}

// Open opens or creates the database at path.
func Open(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
}

// IO saves and loads the checkpoint stored under one key. A nil database
// turns every operation into a no-op.
type IO struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

func NewIO(db *bolt.DB, key []byte, seconds float64) *IO {
	return &IO{
		db:      db,
		key:     key,
		seconds: seconds,
	}
}

func (c *IO) Save(data *Data) error {
	// failed saves are not retried immediately either
	c.SetNow()
	b, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	if err := SaveData(c.db, c.key, b); err != nil {
		log.Error("Error saving checkpoint", err)
		return err
	}
	return nil
}

// SaveState stores s as the state reached after iter transitions.
func (c *IO) SaveState(s *dynamo.ChainState, iter int, final bool) error {
	return c.Save(&Data{Pos: s.Pos, Mom: s.Mom, Dir: s.Dir, Iter: iter, Final: final})
}

// Load returns the stored checkpoint, or nil if there is none.
func (c *IO) Load() (*Data, error) {
	b, err := LoadData(c.db, c.key)
	if err != nil || b == nil {
		return nil, err
	}

	var data *Data
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	if data == nil || len(data.Pos) == 0 {
		return nil, nil
	}

	if data.Final {
		log.Noticef("Found finished chain checkpoint (iter=%v)", data.Iter)
	} else {
		log.Noticef("Found unfinished chain checkpoint (iter=%v)", data.Iter)
	}
	return data, nil
}

// Old reports whether the last save is more than the configured number of
// seconds ago.
func (c *IO) Old() bool {
	return time.Since(c.last).Seconds() > c.seconds
}

func (c *IO) SetNow() {
	c.last = time.Now()
}

// Observer returns a chain observer that saves the state at iteration
// offset+i whenever the last checkpoint is old. Save logs its own errors.
func (c *IO) Observer(offset int) func(i int, s *dynamo.ChainState, ts dynamo.TransitionStats) {
	return func(i int, s *dynamo.ChainState, ts dynamo.TransitionStats) {
		if c.Old() {
			c.SaveState(s, offset+i, false)
		}
	}
}

// SaveData stores data under key in the main bucket.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData returns a copy of the value under key, nil if absent.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	if db == nil {
		return nil, nil
	}
	var data []byte
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Keys lists the stored checkpoint keys.
func Keys(db *bolt.DB) ([]string, error) {
	var keys []string
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}
