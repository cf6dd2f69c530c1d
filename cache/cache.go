package cache

import (
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
)

type sightingCache struct {
	filename string
	lock     sync.RWMutex
}

// New returns a SightingCache backed by a JSON file keyed by canonical address.
func New(filename string) ble.SightingCache {
	sc := sightingCache{
		filename: filename,
	}

	return &sc
}

func (sc *sightingCache) Store(mac ble.Addr, s ble.Sighting, replace bool) error {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	cache, err := sc.loadExisting()
	if err != nil {
		return err
	}

	key := mac.String()
	if _, ok := cache[key]; ok && !replace {
		return errors.Errorf("cache already contains a sighting for %s", key)
	}

	s.Addr = key
	cache[key] = s

	return sc.storeCache(cache)
}

func (sc *sightingCache) Load(mac ble.Addr) (ble.Sighting, error) {
	sc.lock.RLock()
	defer sc.lock.RUnlock()

	cache, err := sc.loadExisting()
	if err != nil {
		return ble.Sighting{}, err
	}

	s, ok := cache[mac.String()]
	if !ok {
		return ble.Sighting{}, errors.Wrapf(ble.ErrNotFound, "no sighting for %s in cache", mac.String())
	}

	return s, nil
}

func (sc *sightingCache) Clear() error {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	err := os.Remove(sc.filename)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "can't clear cache")
	}

	return nil
}

func (sc *sightingCache) loadExisting() (map[string]ble.Sighting, error) {
	in, err := os.ReadFile(sc.filename)
	if os.IsNotExist(err) {
		return map[string]ble.Sighting{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can't read cache %s", sc.filename)
	}

	var cache map[string]ble.Sighting
	if err := jsoniter.Unmarshal(in, &cache); err != nil {
		return nil, errors.Wrapf(err, "can't decode cache %s", sc.filename)
	}
	if cache == nil {
		cache = map[string]ble.Sighting{}
	}

	return cache, nil
}

func (sc *sightingCache) storeCache(cache map[string]ble.Sighting) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return errors.Wrap(err, "can't encode cache")
	}

	return os.WriteFile(sc.filename, out, 0644)
}
