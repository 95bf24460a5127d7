package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/erp/kernel/internal/domain/shared"
)

// Upgrader rewrites a decoded payload of one version into the next version
type Upgrader func(payload map[string]any) (map[string]any, error)

type registration struct {
	current   int
	types     map[int]reflect.Type
	upgraders map[int]Upgrader
}

// Serializer encodes kernel events as JSON and decodes them back into their
// registered Go types. Payloads written under an older payload version are
// upgraded step by step to the current version before decoding.
type Serializer struct {
	mu    sync.RWMutex
	types map[string]*registration
}

// NewSerializer creates an empty serializer
func NewSerializer() *Serializer {
	return &Serializer{types: make(map[string]*registration)}
}

// Register associates a payload version of an event type with a Go type.
// The highest registered version becomes the current one.
func (s *Serializer) Register(eventType string, version int, instance shared.DomainEvent) {
	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.types[eventType]
	if !ok {
		reg = &registration{types: make(map[int]reflect.Type), upgraders: make(map[int]Upgrader)}
		s.types[eventType] = reg
	}
	reg.types[version] = t
	if version > reg.current {
		reg.current = version
	}
}

// RegisterUpgrader installs the step from version from to from+1
func (s *Serializer) RegisterUpgrader(eventType string, from int, upgrade Upgrader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.types[eventType]
	if !ok {
		return fmt.Errorf("%w: unknown event type %s", shared.ErrInvalidInput, eventType)
	}
	reg.upgraders[from] = upgrade
	return nil
}

// Serialize encodes an event of a registered type
func (s *Serializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	if !s.IsRegistered(event.EventType()) {
		return nil, fmt.Errorf("%w: unknown event type %s", shared.ErrInvalidInput, event.EventType())
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return data, nil
}

// Deserialize decodes a payload into the current Go type of its event type
func (s *Serializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	reg, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %s", shared.ErrInvalidInput, eventType)
	}

	version := PayloadVersion(data)
	if version > reg.current {
		return nil, fmt.Errorf("%w: %s payload version %d is newer than %d", shared.ErrInvalidInput, eventType, version, reg.current)
	}
	if version < reg.current {
		upgraded, err := s.upgrade(reg, eventType, data, version)
		if err != nil {
			return nil, err
		}
		data = upgraded
	}

	target, ok := reg.types[reg.current]
	if !ok {
		return nil, fmt.Errorf("no type registered for %s version %d", eventType, reg.current)
	}
	ptr := reflect.New(target).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s type %s does not implement DomainEvent", eventType, target)
	}
	return event, nil
}

func (s *Serializer) upgrade(reg *registration, eventType string, data []byte, from int) ([]byte, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", eventType, err)
	}
	for v := from; v < reg.current; v++ {
		step, ok := reg.upgraders[v]
		if !ok {
			return nil, fmt.Errorf("missing upgrader for %s v%d -> v%d", eventType, v, v+1)
		}
		next, err := step(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to upgrade %s v%d -> v%d: %w", eventType, v, v+1, err)
		}
		next[payloadVersionKey] = v + 1
		payload = next
	}
	return json.Marshal(payload)
}

// IsRegistered reports whether the event type has any registered version
func (s *Serializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}

// CurrentVersion returns the highest registered payload version
func (s *Serializer) CurrentVersion(eventType string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.types[eventType]
	if !ok {
		return 0, false
	}
	return reg.current, true
}

// RegisteredTypes returns the registered event types in lexical order
func (s *Serializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

const payloadVersionKey = "payload_version"

// PayloadVersion reads the payload version of an encoded event; payloads
// without one are version 1
func PayloadVersion(data []byte) int {
	var probe struct {
		Version int `json:"payload_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Version < 1 {
		return 1
	}
	return probe.Version
}
