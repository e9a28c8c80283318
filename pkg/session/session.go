package session

import (
	"bytes"
	"encoding/json"
	"maps"
	"time"
)

// ttlKey is the reserved field carrying the session lifetime in milliseconds.
const ttlKey = "ttl"

// Session holds application-defined values plus the lifetime used for the
// cookie max-age and the store entry expiry.
type Session struct {
	TTL    time.Duration
	Values map[string]any
}

// NewSession creates an empty session living for ttl.
func NewSession(ttl time.Duration) *Session {
	return &Session{
		TTL:    ttl,
		Values: make(map[string]any),
	}
}

// Get retrieves a value from session data
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value from session data.
// Values restored from a store arrive as json.Number.
func (s *Session) GetInt(key string) (int, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	val, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// GetTime retrieves a time value from session data
func (s *Session) GetTime(key string) (time.Time, bool) {
	val, ok := s.Get(key)
	if !ok {
		return time.Time{}, false
	}
	t, ok := val.(time.Time)
	return t, ok
}

// Set stores a value in session data. The "ttl" key is reserved; use the TTL
// field instead.
func (s *Session) Set(key string, value any) {
	if s == nil || key == ttlKey {
		return
	}
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = value
}

// Delete removes a value from session data
func (s *Session) Delete(key string) {
	if s == nil || s.Values == nil {
		return
	}
	delete(s.Values, key)
}

// Clear removes all data from the session, keeping its TTL
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Values = make(map[string]any)
}

// MarshalJSON encodes the session as one flat object in canonical form:
// structs and other typed values are re-encoded as plain JSON objects with
// sorted keys, so a session hashes the same before and after a store round-trip.
func (s *Session) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Values)+1)
	maps.Copy(flat, s.Values)
	flat[ttlKey] = s.TTL.Milliseconds()

	data, err := json.Marshal(flat)
	if err != nil {
		return nil, err
	}
	return canonicalJSON(data)
}

func canonicalJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a flat session object. Numbers are kept as
// json.Number so they re-encode byte for byte.
func (s *Session) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var flat map[string]any
	if err := dec.Decode(&flat); err != nil {
		return err
	}
	if flat == nil {
		return ErrInvalidSession
	}

	s.TTL = 0
	if raw, ok := flat[ttlKey]; ok {
		delete(flat, ttlKey)
		if n, ok := raw.(json.Number); ok {
			if ms, err := n.Int64(); err == nil {
				s.TTL = time.Duration(ms) * time.Millisecond
			}
		}
	}
	s.Values = flat
	return nil
}
