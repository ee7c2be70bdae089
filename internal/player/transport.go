package player

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// transport is the narrow slice of the session bus the Session needs. the
// real implementation wraps *dbus.Conn; tests substitute a scripted fake.
type transport interface {
	listNames() ([]string, error)
	getProperty(service, name string) (dbus.Variant, error)
	callPlayer(service, method string, args ...interface{}) error
	addMatch(rule string) error
	signals(ch chan<- *dbus.Signal)
	close() error
}

type sessionBus struct {
	bus *dbus.Conn
}

func dialSessionBus() (transport, error) {
	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &sessionBus{bus: bus}, nil
}

func (t *sessionBus) listNames() ([]string, error) {
	var names []string
	err := t.bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}
	return names, nil
}

func (t *sessionBus) getProperty(service, name string) (dbus.Variant, error) {
	return t.bus.Object(service, mprisPath).GetProperty(name)
}

func (t *sessionBus) callPlayer(service, method string, args ...interface{}) error {
	return t.bus.Object(service, mprisPath).Call(mprisPlayerIface+"."+method, 0, args...).Err
}

func (t *sessionBus) addMatch(rule string) error {
	return t.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err
}

func (t *sessionBus) signals(ch chan<- *dbus.Signal) {
	t.bus.Signal(ch)
}

func (t *sessionBus) close() error {
	return t.bus.Close()
}
