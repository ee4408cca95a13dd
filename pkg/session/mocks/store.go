// this package provides a "mock" implementation of the session store for testing.
package mocks

import (
	"errors"

	"github.com/dpetrashka/kanaweb/pkg/kana"
	"github.com/dpetrashka/kanaweb/pkg/session"
)

type Store struct {
	Impl struct {
		New        func(practice session.Practice, mode kana.Script) (session.Session, error)
		Get        func(id string) (session.Session, error)
		SwitchMode func(id string, mode kana.Script) (session.Session, error)
		NewPrompt  func(id string) (session.Session, error)
	}
	Calls struct {
		New []struct {
			Practice session.Practice
			Mode     kana.Script
		}
		Get        []struct{ ID string }
		SwitchMode []struct {
			ID   string
			Mode kana.Script
		}
		NewPrompt []struct{ ID string }
	}
}

var _ session.Store = &Store{}

func NewStore() *Store {
	return &Store{}
}

func (m *Store) New(practice session.Practice, mode kana.Script) (session.Session, error) {
	m.Calls.New = append(m.Calls.New, struct {
		Practice session.Practice
		Mode     kana.Script
	}{Practice: practice, Mode: mode})
	if m.Impl.New != nil {
		return m.Impl.New(practice, mode)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) Get(id string) (session.Session, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ ID string }{ID: id})
	if m.Impl.Get != nil {
		return m.Impl.Get(id)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) SwitchMode(id string, mode kana.Script) (session.Session, error) {
	m.Calls.SwitchMode = append(m.Calls.SwitchMode, struct {
		ID   string
		Mode kana.Script
	}{ID: id, Mode: mode})
	if m.Impl.SwitchMode != nil {
		return m.Impl.SwitchMode(id, mode)
	}
	panic(errors.New("it should not be called"))
}

func (m *Store) NewPrompt(id string) (session.Session, error) {
	m.Calls.NewPrompt = append(m.Calls.NewPrompt, struct{ ID string }{ID: id})
	if m.Impl.NewPrompt != nil {
		return m.Impl.NewPrompt(id)
	}
	panic(errors.New("it should not be called"))
}
