package engine

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const runsBucket = "runs"
const latestKey = "latest"

// Journal persists run reports in a bbolt database so the status API and the
// log command can show past runs across reboots.
type Journal struct {
	db *bolt.DB
}

func OpenJournal(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) Save(report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if err := b.Put([]byte(report.ID), data); err != nil {
			return err
		}
		return b.Put([]byte(latestKey), []byte(report.ID))
	})
}

// Get returns the report with the given run ID, or nil when unknown.
func (j *Journal) Get(id string) (*Report, error) {
	var report *Report
	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(runsBucket)).Get([]byte(id))
		if data == nil {
			return nil
		}
		report = &Report{}
		return json.Unmarshal(data, report)
	})
	return report, err
}

// Latest returns the most recently saved report, or nil when the journal is
// empty.
func (j *Journal) Latest() (*Report, error) {
	var id []byte
	err := j.db.View(func(tx *bolt.Tx) error {
		id = append(id, tx.Bucket([]byte(runsBucket)).Get([]byte(latestKey))...)
		return nil
	})
	if err != nil || len(id) == 0 {
		return nil, err
	}
	return j.Get(string(id))
}

// List returns every stored report, in key order.
func (j *Journal) List() ([]*Report, error) {
	var reports []*Report
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).ForEach(func(k, v []byte) error {
			if string(k) == latestKey {
				return nil
			}
			var r Report
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			reports = append(reports, &r)
			return nil
		})
	})
	return reports, err
}
