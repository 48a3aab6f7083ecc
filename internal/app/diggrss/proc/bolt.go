package proc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	log "github.com/go-pkgz/lgr"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
)

var episodesBucket = []byte("episodes")

// BoltStore keeps the episode list in a bolt bucket, one json record per
// episode, keyed by list position so the stored order survives a reload.
type BoltStore struct {
	DB *bolt.DB
}

// NewBoltStore opens (or creates) the bolt db file.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("can't open bolt db %s: %w", path, err)
	}
	return &BoltStore{DB: db}, nil
}

// Load episodes in stored order, records that fail to unmarshal are skipped.
func (b *BoltStore) Load() ([]podcast.Episode, error) {
	result := []podcast.Episode{}
	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(episodesBucket)
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			item := podcast.Episode{}
			if err := json.Unmarshal(v, &item); err != nil {
				log.Printf("[WARN] failed to unmarshal %s, %v", string(k), err)
				continue
			}
			result = append(result, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Save drops the bucket and rewrites it, the previous list is not merged.
func (b *BoltStore) Save(episodes []podcast.Episode) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(episodesBucket) != nil {
			if err := tx.DeleteBucket(episodesBucket); err != nil {
				return err
			}
		}

		bucket, err := tx.CreateBucket(episodesBucket)
		if err != nil {
			return err
		}

		for i, episode := range episodes {
			jdata, jerr := json.Marshal(episode)
			if jerr != nil {
				return jerr
			}
			if err := bucket.Put([]byte(fmt.Sprintf("%08d", i)), jdata); err != nil {
				return err
			}
		}
		return nil
	})
}
