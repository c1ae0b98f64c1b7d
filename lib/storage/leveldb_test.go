package storage

import (
	"fmt"
	"io/ioutil"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veristry/veristry/lib/errors"
)

func TestLevelDBBackendInitFileStorage(t *testing.T) {
	path, _ := ioutil.TempDir("/tmp", "veristry")
	defer CleanDB(path)

	st := &LevelDBBackend{}
	defer st.Close()

	config, err := NewConfigFromString(fmt.Sprintf("file://%s", path))
	require.NoError(t, err)
	require.NoError(t, st.Init(config))
}

func TestLevelDBBackendInitMemStorage(t *testing.T) {
	st := &LevelDBBackend{}
	defer st.Close()

	config, err := NewConfigFromString("memory://")
	require.NoError(t, err)
	require.NoError(t, st.Init(config))
}

func TestLevelDBBackendNew(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	input := map[int]string{
		90: "99",
		91: "91",
		92: "92",
	}
	require.NoError(t, st.New(key, input))

	fetched := map[int]string{}
	require.NoError(t, st.Get(key, &fetched))
	require.True(t, reflect.DeepEqual(input, fetched))

	// `New` only works for a fresh key
	require.Error(t, st.New(key, input))
}

func TestLevelDBBackendNews(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	var args []Item
	for i := 0; i < 100; i++ {
		args = append(args, Item{fmt.Sprintf("%d", i), i})
	}

	require.NoError(t, st.News(args...))

	for _, i := range args {
		exists, err := st.Has(i.Key)
		require.NoError(t, err)
		require.True(t, exists)
	}
}

func TestLevelDBBackendHas(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	exists, _ := st.Has(key)
	require.False(t, exists)

	st.New(key, 10)
	exists, _ = st.Has(key)
	require.True(t, exists)

	st.Remove(key)
	exists, _ = st.Has(key)
	require.False(t, exists)
}

func TestLevelDBBackendGetRaw(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	st.New("showme", "input")

	// when record does not exist, it must return StorageRecordDoesNotExist
	_, err := st.GetRaw("vacuum")
	require.Equal(t, errors.StorageRecordDoesNotExist, err)
}

func TestLevelDBBackendSet(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"
	input := 20

	// `Set` must fail with a fresh key
	require.Error(t, st.Set(key, input))

	st.New(key, input)
	require.NoError(t, st.Set(key, input+1))
}

func TestLevelDBBackendRemove(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	key := "showme"

	require.Error(t, st.Remove(key))

	st.New(key, 20)
	require.NoError(t, st.Remove(key))

	exists, _ := st.Has(key)
	require.False(t, exists)
}

func TestLevelDBBackendTransaction(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	ts, err := st.OpenTransaction()
	require.NoError(t, err)

	require.NoError(t, ts.New("showme", 1))
	require.NoError(t, ts.Commit())

	var fetched int
	require.NoError(t, st.Get("showme", &fetched))
	require.Equal(t, 1, fetched)

	ts, err = st.OpenTransaction()
	require.NoError(t, err)
	require.NoError(t, ts.Set("showme", 2))
	require.NoError(t, ts.Discard())

	require.NoError(t, st.Get("showme", &fetched))
	require.Equal(t, 1, fetched)
}

func TestLevelDBBackendGetIterator(t *testing.T) {
	st := NewTestStorage()
	defer st.Close()

	total := 30
	for i := 0; i < total; i++ {
		require.NoError(t, st.New(fmt.Sprintf("vr-%03d", i), i))
	}
	require.NoError(t, st.New("xx-000", 99))

	var collected []string
	iterFunc, closeFunc := st.GetIterator("vr-", nil)
	for {
		item, hasNext := iterFunc()
		if !hasNext {
			break
		}
		collected = append(collected, string(item.Key))
	}
	closeFunc()

	require.Equal(t, total, len(collected))
	require.Equal(t, "vr-000", collected[0])
	require.Equal(t, fmt.Sprintf("vr-%03d", total-1), collected[total-1])
}
