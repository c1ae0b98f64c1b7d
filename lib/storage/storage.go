package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/veristry/veristry/lib/errors"
)

type IterItem struct {
	N     int64
	Key   []byte
	Value []byte
}

type Item struct {
	Key   string
	Value interface{}
}

// Config points to the backend; supported schemes are "file://<path>"
// and "memory://".
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (config *Config, err error) {
	var u *url.URL
	if u, err = url.Parse(s); err != nil {
		err = errors.StorageCoreError.Clone().SetData("error", err.Error())
		return
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "file", "memory":
	default:
		err = errors.StorageCoreError.Clone().SetData("error", "unsupported storage scheme")
		return
	}

	config = &Config{
		Scheme: scheme,
		Path:   filepath.Join(u.Host, u.Path),
	}

	return
}

func NewStorage(config *Config) (st *LevelDBBackend, err error) {
	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return nil, err
	}

	return
}
