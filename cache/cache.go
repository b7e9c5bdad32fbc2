// Package cache keeps ble.ControllerInfo records in a JSON file, keyed by
// SPI port.
package cache

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	ble "github.com/rigado/ble-spi"
)

type controllerCache struct {
	filename string
	lock     sync.RWMutex
}

func New(filename string) ble.ControllerCache {
	return &controllerCache{
		filename: filename,
	}
}

func (cc *controllerCache) Store(port string, info ble.ControllerInfo, replace bool) error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return err
	}

	if _, ok := cache[port]; ok && !replace {
		return fmt.Errorf("cache already contains controller info for %q", port)
	}
	cache[port] = info

	return cc.storeCache(cache)
}

func (cc *controllerCache) Load(port string) (ble.ControllerInfo, error) {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return ble.ControllerInfo{}, err
	}

	info, ok := cache[port]
	if !ok {
		return ble.ControllerInfo{}, fmt.Errorf("controller info for %q not found in cache", port)
	}
	return info, nil
}

func (cc *controllerCache) Clear() error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	err := os.Remove(cc.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (cc *controllerCache) loadExisting() (map[string]ble.ControllerInfo, error) {
	in, err := os.ReadFile(cc.filename)
	if os.IsNotExist(err) {
		return map[string]ble.ControllerInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cache map[string]ble.ControllerInfo
	if err := jsoniter.Unmarshal(in, &cache); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = map[string]ble.ControllerInfo{}
	}
	return cache, nil
}

func (cc *controllerCache) storeCache(cache map[string]ble.ControllerInfo) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}
	return os.WriteFile(cc.filename, out, 0644)
}
