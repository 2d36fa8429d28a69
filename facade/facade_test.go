package facade_test

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/bridge"
	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/facade"
	"github.com/momentics/spaceradio/fake"
	"github.com/momentics/spaceradio/param"
	"github.com/momentics/spaceradio/transport"
)

func listen(t *testing.T) (net.PacketConn, uint16) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, uint16(conn.LocalAddr().(*net.UDPAddr).Port)
}

func testConfig(port uint16) *facade.Config {
	cfg := facade.DefaultConfig()
	cfg.LocalAddr = "127.0.0.1:0"
	cfg.Port = port
	cfg.BlockSize = 64
	return cfg
}

func readUpdate(t *testing.T, conn net.PacketConn) (int, float32) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	index, value, err := transport.DecodeUpdate(buf[:n])
	require.NoError(t, err)
	return index, value
}

func TestSpaceRadioLifecycle(t *testing.T) {
	conn, port := listen(t)
	s, err := facade.New(testConfig(port))
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunBlock(), facade.ErrNotStarted)
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	require.NoError(t, s.Set(3, 0.25))
	require.NoError(t, s.RunBlock())
	index, value := readUpdate(t, conn)
	assert.Equal(t, 3, index)
	assert.Equal(t, float32(0.25), value)
	assert.Equal(t, uint64(64), s.Position())

	err = s.Set(64, 1)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))

	stats := s.GetControl().Stats()
	assert.Equal(t, float64(1), stats["blocks"])
	assert.Contains(t, stats, "pending_tasks")
	assert.Contains(t, stats, "debug.bridge.instance")

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.Error(t, s.Start())
}

func TestSpaceRadioWorkerPool(t *testing.T) {
	conn, port := listen(t)
	cfg := testConfig(port)
	cfg.NumWorkers = 3
	s, err := facade.New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Set(i, 1))
	}
	require.NoError(t, s.RunBlock())
	require.NoError(t, s.Shutdown())

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		index, value := readUpdate(t, conn)
		assert.Equal(t, float32(1), value)
		seen[index] = true
	}
	assert.Len(t, seen, 4)
}

func TestSpaceRadioEndpointReconfiguration(t *testing.T) {
	first, port1 := listen(t)
	second, port2 := listen(t)
	s, err := facade.New(testConfig(port1))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Shutdown()

	require.NoError(t, s.Set(1, 0.5))
	require.NoError(t, s.RunBlock())
	index, _ := readUpdate(t, first)
	assert.Equal(t, 1, index)

	require.NoError(t, s.GetControl().SetEndpoint("127.0.0.1", port2))
	require.NoError(t, s.Set(2, 0.5))
	require.NoError(t, s.RunBlock())
	index, _ = readUpdate(t, second)
	assert.Equal(t, 2, index)
}

func TestSpaceRadioRun(t *testing.T) {
	conn, port := listen(t)
	cfg := testConfig(port)
	s, err := facade.New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Shutdown()
	s.SetAutomation(facade.NewAutomation(5, 4))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	assert.NotZero(t, s.Position())

	index, _ := readUpdate(t, conn)
	assert.Less(t, index, 4)
}

func TestSpaceRadioStatePersistence(t *testing.T) {
	_, port := listen(t)
	path := filepath.Join(t.TempDir(), "state.json")
	cfg := testConfig(port)
	cfg.StatePath = path

	s, err := facade.New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Endpoint().Store(control.Endpoint{Address: "127.0.0.1", Port: 9555}))
	require.NoError(t, s.Set(7, 0.125))
	require.NoError(t, s.Shutdown())

	restored, err := facade.New(cfg)
	require.NoError(t, err)
	defer restored.Shutdown()
	assert.Equal(t, uint16(9555), restored.Endpoint().Load().Port)
	v, ok := restored.Bridge().Bank().Value(7)
	require.True(t, ok)
	assert.Equal(t, float32(0.125), v)
}

func TestNewReleasesResourcesOnRestoreFailure(t *testing.T) {
	for _, workers := range []int{1, 3} {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"spaceradio":{"osc_address":5}}`), 0o600))
		cfg := facade.DefaultConfig()
		cfg.StatePath = path
		cfg.NumWorkers = workers

		baseline := runtime.NumGoroutine()
		conn := fake.NewPacketConn()
		s, err := facade.New(cfg, bridge.WithSender(transport.NewSenderConn(conn)))
		assert.Nil(t, s)
		assert.True(t, errors.Is(err, api.ErrInvalidArgument), "got %v", err)
		assert.True(t, conn.Closed(), "sender socket must be closed")
		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= baseline
		}, 2*time.Second, 10*time.Millisecond, "workers=%d", workers)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.BlockSize = 0
	_, err := facade.New(cfg)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))

	cfg = facade.DefaultConfig()
	cfg.Address = ""
	_, err = facade.New(cfg)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))

	cfg = facade.DefaultConfig()
	assert.Equal(t, time.Duration(float64(512)/48000*float64(time.Second)), cfg.BlockDuration())
}

func TestAutomation(t *testing.T) {
	bank := param.NewBank(8, nil)
	a := facade.NewAutomation(1, 4)

	assert.InDelta(t, 0.5, a.ValueAt(0, 0), 1e-6)
	assert.InDelta(t, 1.0, a.ValueAt(0, 0.25), 1e-6)
	assert.InDelta(t, 1.0, a.ValueAt(1, 0), 1e-6)

	a.Apply(bank, 0.25)
	v, _ := bank.Value(0)
	assert.InDelta(t, 1.0, v, 1e-6)
	v, _ = bank.Value(5)
	assert.Zero(t, v, "controls past Controls are untouched")

	allocs := testing.AllocsPerRun(50, func() { a.Apply(bank, 0.3) })
	assert.Zero(t, allocs)
}

func TestFileStateStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := facade.NewFileStateStore(path)

	_, err := store.Load("a")
	assert.True(t, errors.Is(err, api.ErrNotFound))

	require.NoError(t, store.Save("a", []byte(`{"x":1}`)))
	require.NoError(t, store.Save("b.c", []byte(`[1,2]`)))
	assert.Error(t, store.Save("bad", []byte(`{`)))

	data, err := store.Load("a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(data))
	data, err = store.Load("b.c")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(data))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b.c"}, keys)
}
