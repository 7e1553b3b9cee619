package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store persists each player's Memory as a set of compressed segments.
type Store interface {
	// Load returns the player's memory, or an empty one if nothing is saved.
	Load(ctx context.Context, player string) (*Memory, error)
	// Save writes the dirty segments of m and clears its dirty set.
	Save(ctx context.Context, player string, tick int, m *Memory) error
	Close() error
}

type queuesSegment struct {
	Spawn []SpawnRequest `json:"spawn"`
	Scout []string       `json:"scout"`
}

// EncodeAll and DecodeAll are safe for concurrent use, so one pair serves every
// session.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

func encodeSegment(m *Memory, s Segment) ([]byte, error) {
	var v any
	switch s {
	case SegmentQueues:
		v = queuesSegment{Spawn: m.SpawnQueue, Scout: m.ScoutQueue}
	case SegmentHighways:
		v = m.Highways
	case SegmentPlans:
		v = m.Plans
	case SegmentIntel:
		v = m.Intel
	case SegmentRooms:
		v = m.Rooms
	case SegmentCreeps:
		v = m.Creeps
	default:
		return nil, fmt.Errorf("unknown segment %q", s)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", s, err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

func decodeSegment(m *Memory, s Segment, data []byte) error {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", s, err)
	}
	switch s {
	case SegmentQueues:
		var q queuesSegment
		if err = json.Unmarshal(raw, &q); err == nil {
			m.SpawnQueue, m.ScoutQueue = q.Spawn, q.Scout
		}
	case SegmentHighways:
		err = json.Unmarshal(raw, &m.Highways)
	case SegmentPlans:
		err = json.Unmarshal(raw, &m.Plans)
	case SegmentIntel:
		err = json.Unmarshal(raw, &m.Intel)
	case SegmentRooms:
		err = json.Unmarshal(raw, &m.Rooms)
	case SegmentCreeps:
		err = json.Unmarshal(raw, &m.Creeps)
	default:
		return fmt.Errorf("unknown segment %q", s)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s: %w", s, err)
	}
	return nil
}

// ensureMaps restores nil maps after decoding a segment that held "null".
func ensureMaps(m *Memory) {
	if m.Highways == nil {
		m.Highways = make(map[string]Highway)
	}
	if m.Plans == nil {
		m.Plans = make(map[string]*RoomPlan)
	}
	if m.Intel == nil {
		m.Intel = make(map[string]*Intel)
	}
	if m.Rooms == nil {
		m.Rooms = make(map[string]*RoomMemory)
	}
	if m.Creeps == nil {
		m.Creeps = make(map[string]*CreepMemory)
	}
}

// MemStore keeps segments in process memory. Used in tests and when the
// sidecar runs without a database.
type MemStore struct {
	mu       sync.Mutex
	segments map[string]map[Segment][]byte
	closed   bool
}

func NewMemStore() *MemStore {
	return &MemStore{segments: make(map[string]map[Segment][]byte)}
}

func (s *MemStore) Load(ctx context.Context, player string) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	m := NewMemory()
	for _, seg := range Segments {
		data, ok := s.segments[player][seg]
		if !ok {
			continue
		}
		if err := decodeSegment(m, seg, data); err != nil {
			return nil, err
		}
	}
	ensureMaps(m)
	return m, nil
}

func (s *MemStore) Save(ctx context.Context, player string, tick int, m *Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	staged := make(map[Segment][]byte)
	for _, seg := range m.Dirty() {
		data, err := encodeSegment(m, seg)
		if err != nil {
			return err
		}
		staged[seg] = data
	}
	if s.segments[player] == nil {
		s.segments[player] = make(map[Segment][]byte)
	}
	maps.Copy(s.segments[player], staged)
	m.ClearDirty()
	return nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
