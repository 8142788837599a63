package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
)

func TestDeviceRegister(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New err: %v", err)
	}
	defer db.Close()

	rm := &fakeRepoManager{d: &fakeDevicesRepo{}}
	svc := NewDeviceService(db, rm)

	d, err := svc.Register(context.Background(), "u1", "dev-1", "Bedroom")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if d.ID != "dev-1" || d.Name != "Bedroom" || d.UserID != "u1" {
		t.Fatalf("unexpected device: %+v", d)
	}

	_, err = svc.Register(context.Background(), "u1", "", "x")
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation for empty id, got %v", err)
	}
}

func TestDeviceList(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New err: %v", err)
	}
	defer db.Close()

	want := []models.Device{{ID: "a", Name: "Bedroom"}, {ID: "b", Name: "Kitchen"}}
	rm := &fakeRepoManager{d: &fakeDevicesRepo{listOut: want}}
	svc := NewDeviceService(db, rm)

	got, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Name != "Kitchen" {
		t.Fatalf("unexpected devices: %+v", got)
	}

	rmErr := &fakeRepoManager{d: &fakeDevicesRepo{listErr: errBoom{}}}
	if _, err := NewDeviceService(db, rmErr).List(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error")
	}
}
