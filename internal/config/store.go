package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ErrNotFound indicates that neither the user config nor the packaged
// defaults define a key.
var ErrNotFound = errors.New("config key not found")

// NotFoundError names the missing key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Key)
}

// Is allows errors.Is(err, ErrNotFound)
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValueError reports a key whose value cannot be coerced to the requested type.
type ValueError struct {
	Key   string
	Value interface{}
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %v for config key %s: %v", e.Value, e.Key, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// Store resolves dotted keys against a viper instance. Every getter returns
// an error wrapping ErrNotFound when the key is unset; callers decide whether
// that is fatal.
type Store struct {
	v *viper.Viper
}

// NewStore wraps v. A nil v uses the global viper instance.
func NewStore(v *viper.Viper) *Store {
	if v == nil {
		v = viper.GetViper()
	}
	return &Store{v: v}
}

func (s *Store) lookup(key string) (interface{}, error) {
	if !s.v.IsSet(key) {
		return nil, &NotFoundError{Key: key}
	}
	return s.v.Get(key), nil
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) (interface{}, error) {
	return s.lookup(key)
}

// String resolves key as a string.
func (s *Store) String(key string) (string, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	val, err := cast.ToStringE(raw)
	if err != nil {
		return "", &ValueError{Key: key, Value: raw, Err: err}
	}
	return val, nil
}

// Int resolves key as an int.
func (s *Store) Int(key string) (int, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return 0, err
	}
	val, err := cast.ToIntE(raw)
	if err != nil {
		return 0, &ValueError{Key: key, Value: raw, Err: err}
	}
	return val, nil
}

// Float resolves key as a float64. A list value yields its first element,
// an empty list counts as unset.
func (s *Store) Float(key string) (float64, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return 0, err
	}
	if items, ok := raw.([]interface{}); ok {
		if len(items) == 0 {
			return 0, &NotFoundError{Key: key}
		}
		raw = items[0]
	}
	val, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &ValueError{Key: key, Value: raw, Err: err}
	}
	return val, nil
}

// StringSlice resolves key as a list of strings.
func (s *Store) StringSlice(key string) ([]string, error) {
	raw, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	val, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, &ValueError{Key: key, Value: raw, Err: err}
	}
	return val, nil
}
