package main

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/moovolt/csms/ocpp16/core"
)

// Key layout of the operational store. Known stations and authorized idTags
// are allowlists seeded from config and editable at runtime; boot metadata
// and transactions are written by the handlers.
const (
	knownStationPrefix = "known_station__"
	idTagPrefix        = "id_tag__"
	bootInfoPrefix     = "boot__"
	transactionPrefix  = "transaction__"
	transactionSeqKey  = "transaction_seq"
)

type opStore struct {
	db *badger.DB
}

func openStore(path string) (*opStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, errors.Wrap(err, "opening badger store")
	}
	return &opStore{db: db}, nil
}

func (s *opStore) Close() error { return s.db.Close() }

func (s *opStore) set(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (s *opStore) get(key string) (string, error) {
	value := ""
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = string(v)
		return nil
	})
	return value, err
}

func (s *opStore) exists(key string) bool {
	found := false
	s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		found = err == nil
		return nil
	})
	return found
}

func setIfNotExistsTX(txn *badger.Txn, key, value string) error {
	if _, err := txn.Get([]byte(key)); err == nil {
		return nil
	}
	return txn.Set([]byte(key), []byte(value))
}

// seed installs setup metadata and the configured allowlists, preserving
// entries added at runtime.
func (s *opStore) seed(cfg serviceConfig, startedAt time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		txn.Set([]byte("started_at"), []byte(startedAt.Format(time.RFC3339)))
		txn.Set([]byte("listen_addr"), []byte(cfg.ListenAddr))
		setIfNotExistsTX(txn, transactionSeqKey, "0")
		for _, id := range cfg.KnownStations {
			if err := setIfNotExistsTX(txn, knownStationPrefix+id, "1"); err != nil {
				return err
			}
		}
		for _, tag := range cfg.IdTags {
			if err := setIfNotExistsTX(txn, idTagPrefix+tag, "1"); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *opStore) isKnownStation(stationID string) bool {
	return s.exists(knownStationPrefix + stationID)
}

func (s *opStore) isAuthorizedTag(idTag string) bool {
	return s.exists(idTagPrefix + idTag)
}

// nextTransactionID allocates a process-wide monotonically increasing
// transaction id.
func (s *opStore) nextTransactionID() (int, error) {
	id := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		current := 0
		if item, err := txn.Get([]byte(transactionSeqKey)); err == nil {
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			current, _ = strconv.Atoi(string(v))
		}
		id = current + 1
		return txn.Set([]byte(transactionSeqKey), []byte(strconv.Itoa(id)))
	})
	return id, err
}

func (s *opStore) recordBoot(stationID string, request *core.BootNotificationRequest, status core.RegistrationStatus) error {
	record := map[string]string{
		"vendor":   request.ChargePointVendor,
		"model":    request.ChargePointModel,
		"serial":   request.ChargePointSerialNumber,
		"firmware": request.FirmwareVersion,
		"status":   string(status),
		"seen_at":  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.set(bootInfoPrefix+stationID, string(data))
}

func (s *opStore) recordTransaction(stationID string, transactionID int, state string) error {
	key := transactionPrefix + strconv.Itoa(transactionID)
	return s.set(key, stationID+":"+state)
}
