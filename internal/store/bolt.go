// Package store persists the network manager's mesh model in a BoltDB file.
// It implements the manager's StateSerializer contract: Serialize replaces
// the stored snapshot, Deserialize repopulates the model on startup.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"zigbee-host/internal/network"
	"zigbee-host/internal/zigbee"
)

var (
	bucketNodes   = []byte("nodes")
	bucketDevices = []byte("devices")
	bucketGroups  = []byte("groups")
)

// BoltStore is a bbolt-backed state serializer.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates the database file.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketNodes, bucketDevices, bucketGroups} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Serialize writes a full snapshot of the mesh model, replacing the previous
// one.
func (s *BoltStore) Serialize(m *network.Manager) error {
	nodes := m.Nodes()
	devices := m.Devices()
	groups := m.Groups()

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketNodes, bucketDevices, bucketGroups} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		nb := tx.Bucket(bucketNodes)
		for _, node := range nodes {
			data, err := json.Marshal(nodeToRecord(node))
			if err != nil {
				return err
			}
			if err := nb.Put(nodeKey(node.NetworkAddress), data); err != nil {
				return err
			}
		}

		db := tx.Bucket(bucketDevices)
		for _, device := range devices {
			data, err := json.Marshal(deviceToRecord(device))
			if err != nil {
				return err
			}
			if err := db.Put(deviceKey(device.Address.Addr, device.Address.Endpoint), data); err != nil {
				return err
			}
		}

		gb := tx.Bucket(bucketGroups)
		for _, group := range groups {
			data, err := json.Marshal(groupRecord{ID: group.ID, Label: group.Label})
			if err != nil {
				return err
			}
			if err := gb.Put(groupKey(group.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Deserialize reads the stored snapshot and repopulates the mesh model. The
// records are collected first and applied outside the read transaction,
// since repopulating the model triggers saves through this same adapter.
func (s *BoltStore) Deserialize(m *network.Manager) error {
	var nodes []nodeRecord
	var devices []deviceRecord
	var groups []groupRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketNodes); b != nil {
			if err := b.ForEach(func(_, v []byte) error {
				var r nodeRecord
				if err := json.Unmarshal(v, &r); err != nil {
					return err
				}
				nodes = append(nodes, r)
				return nil
			}); err != nil {
				return err
			}
		}
		if b := tx.Bucket(bucketDevices); b != nil {
			if err := b.ForEach(func(_, v []byte) error {
				var r deviceRecord
				if err := json.Unmarshal(v, &r); err != nil {
					return err
				}
				devices = append(devices, r)
				return nil
			}); err != nil {
				return err
			}
		}
		if b := tx.Bucket(bucketGroups); b != nil {
			if err := b.ForEach(func(_, v []byte) error {
				var r groupRecord
				if err := json.Unmarshal(v, &r); err != nil {
					return err
				}
				groups = append(groups, r)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	for _, r := range nodes {
		m.AddNode(recordToNode(r))
	}
	for _, r := range devices {
		m.AddDevice(recordToDevice(r))
	}
	for _, r := range groups {
		m.AddGroup(&zigbee.Group{ID: r.ID, Label: r.Label})
	}
	return nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func nodeKey(addr uint16) []byte {
	return []byte(fmt.Sprintf("%04X", addr))
}

func deviceKey(addr uint16, endpoint uint8) []byte {
	return []byte(fmt.Sprintf("%04X/%d", addr, endpoint))
}

func groupKey(id uint16) []byte {
	return []byte(fmt.Sprintf("%04X", id))
}
