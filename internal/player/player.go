// Package player tracks an MPRIS media player over the session bus: status,
// position, seeks and track metadata. A Session heals itself after transport
// failures by dropping its player binding and re-probing on the next call, so
// callers never run their own retry loops.
package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"mkowalczyk.dev/lrctap/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisPrefix      = "org.mpris.MediaPlayer2."

	propertiesChangedSignal = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// ErrNoPlayer means no MPRIS service is currently on the bus. It is an
// expected condition, never fatal: position queries degrade to the
// unavailable sentinel until a player shows up.
var ErrNoPlayer = errors.New("no media player found on the session bus")

// PositionUnavailable is the position sentinel reported while the player is
// not playing or the transport is unreachable.
const PositionUnavailable float64 = -1

type Status string

const (
	StatusPlaying Status = "Playing"
	StatusPaused  Status = "Paused"
	StatusStopped Status = "Stopped"
	StatusUnknown Status = "Unknown"
)

func statusFromString(raw string) Status {
	switch raw {
	case "Playing":
		return StatusPlaying
	case "Paused":
		return StatusPaused
	case "Stopped":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

// SeekResult reports how a seek or restart request ended, so callers can
// tell an unreachable transport from a request clamped at the track start.
type SeekResult int

const (
	SeekApplied SeekResult = iota
	SeekClamped
	SeekUnavailable
)

// Snapshot is one poll of the transport: status first, then position, both
// captured at At. Superseded by the next poll, never updated in place.
type Snapshot struct {
	Position float64
	At       time.Time
	Status   Status
}

type EventKind int

const (
	EventTrackChanged EventKind = iota
	EventStatusChanged
)

// Event is what the background signal pump posts for the UI to drain.
type Event struct {
	Kind   EventKind
	Track  *track.Info
	Status Status
}

// Session owns the bus connection, the bound player service and the cached
// track written by the signal pump. All remote calls are synchronous
// round-trips bounded by the bus timeout; any failure invalidates the player
// binding so the next call reconnects.
type Session struct {
	dial      func() (transport, error)
	preferred []string

	mu      sync.RWMutex
	bus     transport
	service string
	track   *track.Info
	playing bool

	signalChan chan *dbus.Signal
	eventChan  chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
}

// NewSession builds a session preferring the given short player names
// (e.g. "vlc") during discovery. Nothing is dialed until Start or the first
// remote call.
func NewSession(preferred []string) *Session {
	return &Session{
		dial:      dialSessionBus,
		preferred: preferred,
		eventChan: make(chan Event, 16),
	}
}

// Start dials the bus, subscribes to player property-change signals and runs
// the pump goroutine. A dial failure is advisory: the session stays usable
// and every later call retries the connection.
func (s *Session) Start() error {
	s.signalChan = make(chan *dbus.Signal, 10)
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.signalLoop()

	s.mu.Lock()
	_, err := s.ensureBusLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return nil
}

// Stop tears down the signal pump, waiting a bounded time for it to drain,
// then closes the bus. Errors here are swallowed: shutdown correctness no
// longer matters.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.stopChan != nil {
			close(s.stopChan)
		}
	})

	if s.done != nil {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
		}
	}

	s.mu.Lock()
	if s.bus != nil {
		_ = s.bus.close()
		s.bus = nil
	}
	s.mu.Unlock()
}

// Events exposes the pump's bounded channel. Events are dropped, not
// blocked on, when the consumer lags.
func (s *Session) Events() <-chan Event {
	return s.eventChan
}

// Connect probes the bus for MPRIS services and binds one, preferring the
// configured player names. Calling it while already bound is a no-op.
func (s *Session) Connect() error {
	_, _, err := s.connectIfNeeded()
	return err
}

// Service returns the bound MPRIS service name, or "" while disconnected.
func (s *Session) Service() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// ShortName strips the MPRIS prefix from a service name for display.
func ShortName(service string) string {
	return strings.TrimPrefix(service, mprisPrefix)
}

// Discover lists the MPRIS services currently on the bus.
func (s *Session) Discover() ([]string, error) {
	s.mu.Lock()
	bus, err := s.ensureBusLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	names, err := bus.listNames()
	if err != nil {
		s.invalidateBus()
		return nil, err
	}
	return filterPlayers(names), nil
}

// Status reports the player's playback status. Unknown is a value, not an
// error: callers always get a status.
func (s *Session) Status() Status {
	bus, service, err := s.connectIfNeeded()
	if err != nil {
		return StatusUnknown
	}

	prop, err := bus.getProperty(service, mprisPlayerIface+".PlaybackStatus")
	if err != nil {
		s.invalidate()
		return StatusUnknown
	}

	raw, _ := prop.Value().(string)
	return statusFromString(raw)
}

// Position reports playback position in seconds, or PositionUnavailable
// while the player is not playing or unreachable.
func (s *Session) Position() float64 {
	if s.Status() != StatusPlaying {
		return PositionUnavailable
	}

	micros, err := s.positionMicros()
	if err != nil {
		return PositionUnavailable
	}
	return float64(micros) / 1_000_000
}

// Poll captures a snapshot: status first, then position only while playing.
func (s *Session) Poll() Snapshot {
	snap := Snapshot{
		Position: PositionUnavailable,
		At:       time.Now(),
		Status:   s.Status(),
	}
	if snap.Status == StatusPlaying {
		if micros, err := s.positionMicros(); err == nil {
			snap.Position = float64(micros) / 1_000_000
		}
	}
	return snap
}

// SeekBy seeks relative by deltaSeconds. Targets before the track start are
// clamped to absolute zero using the transport-owned position, and the
// result says so.
func (s *Session) SeekBy(deltaSeconds float64) SeekResult {
	micros, err := s.positionMicros()
	if err != nil {
		return SeekUnavailable
	}

	target := micros + int64(deltaSeconds*1_000_000)
	result := SeekApplied
	if target < 0 {
		target = 0
		result = SeekClamped
	}

	if err := s.callPlayer("Seek", target-micros); err != nil {
		return SeekUnavailable
	}
	return result
}

// Restart rewinds to absolute zero and forces playback. The transport only
// offers relative seeks, so zero is reached by seeking back by the current
// position.
func (s *Session) Restart() SeekResult {
	micros, err := s.positionMicros()
	if err != nil {
		return SeekUnavailable
	}

	if micros > 0 {
		if err := s.callPlayer("Seek", -micros); err != nil {
			return SeekUnavailable
		}
	}
	if err := s.callPlayer("Play"); err != nil {
		return SeekUnavailable
	}
	return SeekApplied
}

// Track fetches the player's current metadata. Absent fields stay zero;
// only a transport failure is an error.
func (s *Session) Track() (*track.Info, error) {
	bus, service, err := s.connectIfNeeded()
	if err != nil {
		return nil, err
	}

	prop, err := bus.getProperty(service, mprisPlayerIface+".Metadata")
	if err != nil {
		s.invalidate()
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}
	return trackFromMetadata(metadata), nil
}

// CurrentTrack returns the pump's cached track, falling back to a live
// metadata fetch before the first playback signal has arrived. Returns nil
// when neither is available.
func (s *Session) CurrentTrack() *track.Info {
	s.mu.RLock()
	cached := s.track
	s.mu.RUnlock()
	if cached != nil {
		copied := *cached
		return &copied
	}

	info, err := s.Track()
	if err != nil {
		return nil
	}
	return info
}

func (s *Session) connectIfNeeded() (transport, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bus, err := s.ensureBusLocked()
	if err != nil {
		return nil, "", err
	}
	if s.service != "" {
		return bus, s.service, nil
	}

	names, err := bus.listNames()
	if err != nil {
		s.bus = nil
		return nil, "", fmt.Errorf("failed to list bus names: %w", err)
	}

	candidates := filterPlayers(names)
	if len(candidates) == 0 {
		return nil, "", ErrNoPlayer
	}

	s.service = pickService(candidates, s.preferred)
	return bus, s.service, nil
}

// ensureBusLocked dials the bus if needed and re-arms the signal
// subscription on the fresh connection. Caller holds s.mu.
func (s *Session) ensureBusLocked() (transport, error) {
	if s.bus != nil {
		return s.bus, nil
	}

	bus, err := s.dial()
	if err != nil {
		return nil, err
	}

	if s.signalChan != nil {
		bus.signals(s.signalChan)
		// metadata refresh is best-effort, a failed match only loses it
		_ = bus.addMatch(fmt.Sprintf(
			"type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
			mprisPath,
		))
	}

	s.bus = bus
	return bus, nil
}

func (s *Session) invalidate() {
	s.mu.Lock()
	s.service = ""
	s.mu.Unlock()
}

func (s *Session) invalidateBus() {
	s.mu.Lock()
	s.service = ""
	s.bus = nil
	s.mu.Unlock()
}

func (s *Session) positionMicros() (int64, error) {
	bus, service, err := s.connectIfNeeded()
	if err != nil {
		return 0, err
	}

	prop, err := bus.getProperty(service, mprisPlayerIface+".Position")
	if err != nil {
		s.invalidate()
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	micros, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}
	if micros < 0 {
		micros = 0
	}
	return micros, nil
}

func (s *Session) callPlayer(method string, args ...interface{}) error {
	bus, service, err := s.connectIfNeeded()
	if err != nil {
		return err
	}

	if err := bus.callPlayer(service, method, args...); err != nil {
		s.invalidate()
		return fmt.Errorf("player call %s failed: %w", method, err)
	}
	return nil
}

func filterPlayers(names []string) []string {
	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	return players
}

// pickService chooses among discovered MPRIS services, walking the preferred
// short names in priority order before settling for the first candidate.
func pickService(candidates []string, preferred []string) string {
	for _, want := range preferred {
		for _, name := range candidates {
			if name == mprisPrefix+want {
				return name
			}
		}
		for _, name := range candidates {
			if strings.Contains(ShortName(name), want) {
				return name
			}
		}
	}
	return candidates[0]
}

func (s *Session) signalLoop() {
	defer close(s.done)
	for {
		select {
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(sig)
		case <-s.stopChan:
			return
		}
	}
}

// handleSignal refreshes the cached track, but only on a status transition
// into Playing; everything else about player state is pulled on demand.
func (s *Session) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != propertiesChangedSignal {
		return
	}
	if len(sig.Body) < 2 {
		return
	}

	iface, ok := sig.Body[0].(string)
	if !ok || iface != mprisPlayerIface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	statusVariant, ok := changed["PlaybackStatus"]
	if !ok {
		return
	}
	raw, _ := statusVariant.Value().(string)
	status := statusFromString(raw)

	s.mu.Lock()
	wasPlaying := s.playing
	s.playing = status == StatusPlaying
	s.mu.Unlock()

	s.emit(Event{Kind: EventStatusChanged, Status: status})

	if status != StatusPlaying || wasPlaying {
		return
	}

	info := trackFromChanged(changed)
	if info == nil {
		if fetched, err := s.Track(); err == nil {
			info = fetched
		}
	}
	if info == nil {
		return
	}

	s.mu.Lock()
	s.track = info
	s.mu.Unlock()
	s.emit(Event{Kind: EventTrackChanged, Track: info})
}

func (s *Session) emit(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

func trackFromChanged(changed map[string]dbus.Variant) *track.Info {
	metadataVariant, ok := changed["Metadata"]
	if !ok {
		return nil
	}
	metadata, ok := metadataVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}
	return trackFromMetadata(metadata)
}

func trackFromMetadata(metadata map[string]dbus.Variant) *track.Info {
	return &track.Info{
		Title:        extractString(metadata, "xesam:title"),
		Artist:       extractArtist(metadata, "xesam:artist"),
		Album:        extractString(metadata, "xesam:album"),
		FileURL:      extractString(metadata, "xesam:url"),
		ArtworkURL:   extractString(metadata, "mpris:artUrl"),
		TrackID:      extractString(metadata, "mpris:trackid"),
		DurationSecs: extractDurationSeconds(metadata, "mpris:length"),
	}
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	raw := variant.Value()
	if raw == nil {
		return ""
	}

	text, ok := raw.(string)
	if ok {
		return text
	}
	return ""
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	raw := variant.Value()
	if raw == nil {
		return ""
	}

	switch typed := raw.(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractDurationSeconds(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	raw := variant.Value()
	if raw == nil {
		return 0
	}

	switch typed := raw.(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return typed / 1_000_000
	case uint64:
		if typed == 0 {
			return 0
		}
		return int64(typed / 1_000_000)
	default:
		return 0
	}
}
