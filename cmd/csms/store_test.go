package main

import (
	"testing"
	"time"

	"github.com/moovolt/csms/ocpp16/core"
)

func newTestStore(t *testing.T) *opStore {
	t.Helper()
	store, err := openStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedAllowlists(t *testing.T) {
	store := newTestStore(t)
	cfg := defaultServiceConfig()
	cfg.KnownStations = []string{"cp001"}
	cfg.IdTags = []string{"TAG-1"}

	if err := store.seed(cfg, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if !store.isKnownStation("cp001") {
		t.Fatal("cp001 should be known")
	}
	if store.isKnownStation("cp999") {
		t.Fatal("cp999 should not be known")
	}
	if !store.isAuthorizedTag("TAG-1") {
		t.Fatal("TAG-1 should be authorized")
	}
	if store.isAuthorizedTag("TAG-9") {
		t.Fatal("TAG-9 should not be authorized")
	}
}

func TestStoreTransactionIDsAreMonotonic(t *testing.T) {
	store := newTestStore(t)

	first, err := store.nextTransactionID()
	if err != nil {
		t.Fatalf("next transaction id: %v", err)
	}
	second, err := store.nextTransactionID()
	if err != nil {
		t.Fatalf("next transaction id: %v", err)
	}
	if second <= first {
		t.Fatalf("transaction ids must increase: %d then %d", first, second)
	}
}

func TestStoreRecordBoot(t *testing.T) {
	store := newTestStore(t)
	request := &core.BootNotificationRequest{ChargePointVendor: "X", ChargePointModel: "Y"}
	if err := store.recordBoot("cp001", request, core.RegistrationStatusAccepted); err != nil {
		t.Fatalf("record boot: %v", err)
	}
	value, err := store.get(bootInfoPrefix + "cp001")
	if err != nil {
		t.Fatalf("get boot record: %v", err)
	}
	if value == "" {
		t.Fatal("boot record missing")
	}
}
