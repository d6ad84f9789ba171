package session

import (
	"errors"
	"testing"

	"github.com/sashakosti/Go_Race_Bot/internal/wizard"
)

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore()
	w := wizard.New(nil, wizard.Options{})

	if _, ok := s.Get(1); ok {
		t.Fatal("expected no session before Create")
	}

	sess, err := s.Create(1, w)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ChatID != 1 || sess.Wizard != w {
		t.Errorf("unexpected session: %+v", sess)
	}

	got, ok := s.Get(1)
	if !ok || got != sess {
		t.Errorf("Get returned %v, %v", got, ok)
	}

	s.Delete(1)
	if _, ok := s.Get(1); ok {
		t.Error("session still present after Delete")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_OneSessionPerChat(t *testing.T) {
	s := NewStore()
	first := wizard.New(nil, wizard.Options{})
	if _, err := s.Create(7, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := s.Create(7, wizard.New(nil, wizard.Options{}))
	if !errors.Is(err, ErrActiveSession) {
		t.Fatalf("expected ErrActiveSession, got %v", err)
	}
	if got, _ := s.Get(7); got.Wizard != first {
		t.Error("second Create replaced the running wizard")
	}

	// other chats are independent
	if _, err := s.Create(8, wizard.New(nil, wizard.Options{})); err != nil {
		t.Errorf("Create for another chat: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}
