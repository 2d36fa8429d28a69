package bridge_test

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/bridge"
	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/fake"
	"github.com/momentics/spaceradio/internal/concurrency"
	"github.com/momentics/spaceradio/transport"
)

var (
	outBus = api.BusConfig{NumInputChannels: 0, NumOutputChannels: 1}
	bufCfg = api.BufferConfig{SampleRate: 48000, MinBufferSize: 64, MaxBufferSize: 512}
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newFakeBridge(t *testing.T) (*bridge.Bridge, *fake.PacketConn) {
	t.Helper()
	conn := fake.NewPacketConn()
	b, err := bridge.New(bridge.DefaultConfig(),
		bridge.WithSender(transport.NewSenderConn(conn)),
		bridge.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.True(t, b.Initialize(outBus, bufCfg, fake.NewContext[bridge.Task]()))
	t.Cleanup(func() { _ = b.Shutdown() })
	return b, conn
}

func TestProcessDispatchesChangedControls(t *testing.T) {
	b, _ := newFakeBridge(t)
	ctx := fake.NewContext[bridge.Task]()

	require.True(t, b.Bank().Set(3, 0.25))
	require.True(t, b.Bank().Set(47, 0.8))

	assert.Equal(t, api.ProcessNormal, b.Process(api.NewBuffer(1, 128), ctx))
	assert.ElementsMatch(t, []bridge.Task{{Index: 3, Value: 0.25}, {Index: 47, Value: 0.8}}, ctx.Take())

	b.Process(api.NewBuffer(1, 128), ctx)
	assert.Empty(t, ctx.Take(), "second block must not resend")
}

func TestProcessCoalescesRepeatedWrites(t *testing.T) {
	b, _ := newFakeBridge(t)
	ctx := fake.NewContext[bridge.Task]()

	b.Bank().Set(5, 0.1)
	b.Bank().Set(5, 0.5)
	b.Bank().Set(5, 0.9)
	b.Process(api.NewBuffer(1, 64), ctx)

	tasks := ctx.Take()
	require.Len(t, tasks, 1)
	assert.Equal(t, 5, tasks[0].Index)
	assert.InDelta(t, 0.9, tasks[0].Value, 1e-6)
}

func TestProcessWithoutChanges(t *testing.T) {
	b, _ := newFakeBridge(t)
	ctx := fake.NewContext[bridge.Task]()
	for i := 0; i < 3; i++ {
		assert.Equal(t, api.ProcessNormal, b.Process(api.NewBuffer(1, 64), ctx))
	}
	assert.Empty(t, ctx.Take())
	assert.Equal(t, float64(3), control.CounterValue(b.Metrics().Blocks))
	assert.Zero(t, control.CounterValue(b.Metrics().Dispatched))
}

func TestProcessCountsRejectedSubmissions(t *testing.T) {
	b, _ := newFakeBridge(t)
	ctx := fake.NewContext[bridge.Task]()
	ctx.Reject(true)

	b.Bank().Set(1, 0.5)
	b.Bank().Set(2, 0.5)
	assert.Equal(t, api.ProcessNormal, b.Process(api.NewBuffer(1, 64), ctx))
	assert.Equal(t, float64(2), control.CounterValue(b.Metrics().SubmitFailed))

	// Rejected tasks are lost, not retried.
	ctx.Reject(false)
	b.Process(api.NewBuffer(1, 64), ctx)
	assert.Empty(t, ctx.Take())
}

type discardContext struct{ n int }

func (d *discardContext) ExecuteBackground(bridge.Task) bool {
	d.n++
	return true
}

func TestProcessDoesNotAllocate(t *testing.T) {
	b, _ := newFakeBridge(t)
	ctx := &discardContext{}
	buf := api.NewBuffer(1, 256)
	bank := b.Bank()

	allocs := testing.AllocsPerRun(100, func() {
		for i := 0; i < bank.Len(); i += 7 {
			bank.Set(i, 0.5)
		}
		b.Process(buf, ctx)
	})
	assert.Zero(t, allocs)
	assert.NotZero(t, ctx.n)
}

func TestTaskExecutorSendsToCurrentEndpoint(t *testing.T) {
	b, conn := newFakeBridge(t)
	run := b.TaskExecutor()

	run(bridge.Task{Index: 3, Value: 0.25})
	require.NoError(t, b.Endpoint().Store(control.Endpoint{Address: "10.0.0.5", Port: 8000}))
	run(bridge.Task{Index: 3, Value: 0.5})

	sent := conn.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "127.0.0.1:9009", sent[0].Addr)
	assert.Equal(t, "10.0.0.5:8000", sent[1].Addr)

	index, value, err := transport.DecodeUpdate(sent[1].Data)
	require.NoError(t, err)
	assert.Equal(t, 3, index)
	assert.Equal(t, float32(0.5), value)
	assert.Equal(t, float64(2), control.CounterValue(b.Metrics().Sent))
}

func TestTaskExecutorWithoutSender(t *testing.T) {
	b, err := bridge.New(bridge.DefaultConfig(), bridge.WithoutSender(), bridge.WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.False(t, b.SenderAvailable())

	ctx := fake.NewContext[bridge.Task]()
	b.Bank().Set(0, 1)
	b.Process(api.NewBuffer(1, 64), ctx)

	run := b.TaskExecutor()
	assert.NotPanics(t, func() {
		for _, task := range ctx.Take() {
			run(task)
		}
	})
	assert.Equal(t, float64(1), control.CounterValue(b.Metrics().Dropped))
	assert.Zero(t, control.CounterValue(b.Metrics().Sent))
}

func TestTaskExecutorSendFailure(t *testing.T) {
	b, conn := newFakeBridge(t)
	conn.SetSendError(errors.New("network unreachable"))
	run := b.TaskExecutor()

	run(bridge.Task{Index: 1, Value: 0.1})
	conn.SetSendError(nil)
	run(bridge.Task{Index: 2, Value: 0.2})

	assert.Equal(t, float64(1), control.CounterValue(b.Metrics().Failed))
	assert.Equal(t, float64(1), control.CounterValue(b.Metrics().Sent))
	require.Len(t, conn.Sent(), 1)
}

func TestTaskExecutorSerializesSends(t *testing.T) {
	b, conn := newFakeBridge(t)
	run := b.TaskExecutor()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run(bridge.Task{Index: i, Value: float32(i) / 32})
		}(i)
	}
	wg.Wait()
	assert.Len(t, conn.Sent(), 32)
}

func TestEndpointNeverTorn(t *testing.T) {
	b, conn := newFakeBridge(t)
	run := b.TaskExecutor()
	pairs := []control.Endpoint{
		{Address: "127.0.0.1", Port: 9009},
		{Address: "127.0.0.2", Port: 9010},
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				_ = b.Endpoint().Store(pairs[i%2])
			}
		}
	}()
	for i := 0; i < 500; i++ {
		run(bridge.Task{Index: 0, Value: 0})
	}
	close(stop)
	wg.Wait()

	for _, d := range conn.Sent() {
		assert.Contains(t, []string{"127.0.0.1:9009", "127.0.0.2:9010"}, d.Addr)
	}
}

func TestInitializeRejectsUnsupportedLayouts(t *testing.T) {
	b, _ := newFakeBridge(t)
	assert.False(t, b.Initialize(api.BusConfig{NumOutputChannels: 0}, bufCfg, nil))
	assert.False(t, b.Initialize(outBus, api.BufferConfig{SampleRate: 0}, nil))
	assert.True(t, b.Initialize(api.BusConfig{NumInputChannels: 2, NumOutputChannels: 2}, bufCfg, nil))
	assert.True(t, b.Active())
	b.Deactivate()
	assert.False(t, b.Active())
}

func TestParams(t *testing.T) {
	b, _ := newFakeBridge(t)
	params := b.Params()
	require.Len(t, params, 66)

	assert.Equal(t, "channel_1", params[0].ID)
	assert.Equal(t, "Ch. 64", params[63].Name)
	assert.True(t, params[0].Automatable())

	assert.Equal(t, bridge.KeyAddress, params[64].ID)
	assert.Equal(t, api.ParamPersistString, params[64].Kind)
	assert.Equal(t, bridge.KeyPort, params[65].ID)
	assert.False(t, params[65].Automatable())
	assert.Equal(t, float32(9009), params[65].Default)
}

func TestStateRoundTrip(t *testing.T) {
	b, _ := newFakeBridge(t)
	require.NoError(t, b.Endpoint().Store(control.Endpoint{Address: "192.168.1.20", Port: 7000}))
	b.Bank().Set(10, 0.75)

	data, err := b.SaveState()
	require.NoError(t, err)

	other, _ := newFakeBridge(t)
	require.NoError(t, other.RestoreState(data))
	assert.Equal(t, control.Endpoint{Address: "192.168.1.20", Port: 7000}, other.Endpoint().Load())
	v, ok := other.Bank().Value(10)
	require.True(t, ok)
	assert.Equal(t, float32(0.75), v)

	// Restored controls are resent on the next block.
	ctx := fake.NewContext[bridge.Task]()
	other.Process(api.NewBuffer(1, 64), ctx)
	assert.Len(t, ctx.Take(), other.Bank().Len())
}

func TestRestoreStateValidation(t *testing.T) {
	b, _ := newFakeBridge(t)
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"osc_address":`},
		{"address type", `{"osc_address":5}`},
		{"port range", `{"osc_port":70000}`},
		{"empty address", `{"osc_address":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.RestoreState([]byte(tt.data))
			assert.True(t, errors.Is(err, api.ErrInvalidArgument), "got %v", err)
		})
	}
	assert.Equal(t, control.DefaultEndpoint(), b.Endpoint().Load())

	require.NoError(t, b.RestoreState([]byte(`{"osc_port":9100,"params":{"bogus":1}}`)))
	assert.Equal(t, uint16(9100), b.Endpoint().Load().Port)
}

func TestShutdownClosesSender(t *testing.T) {
	b, conn := newFakeBridge(t)
	require.NoError(t, b.Shutdown())
	assert.True(t, conn.Closed())
	assert.False(t, b.SenderAvailable())
	require.NoError(t, b.Shutdown())

	b.TaskExecutor()(bridge.Task{Index: 0, Value: 1})
	assert.Equal(t, float64(1), control.CounterValue(b.Metrics().Dropped))
}

func TestLoopbackDelivery(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.LocalAddr().(*net.UDPAddr).Port

	cfg := bridge.DefaultConfig()
	cfg.LocalAddr = "127.0.0.1:0"
	cfg.Port = uint16(port)
	b, err := bridge.New(cfg, bridge.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer b.Shutdown()
	require.True(t, b.SenderAvailable())

	q := concurrency.NewTaskQueue[bridge.Task](64, -1, b.TaskExecutor())
	defer q.Close()
	require.True(t, b.Initialize(outBus, bufCfg, q))

	b.Bank().Set(3, 0.25)
	b.Process(api.NewBuffer(1, 64), q)

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := listener.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{'/', '3', 0, 0, ',', 'f', 0, 0, 0x3e, 0x80, 0, 0}, buf[:n])
}

func TestBindFailureLeavesBridgeUsable(t *testing.T) {
	cfg := bridge.DefaultConfig()
	cfg.LocalAddr = "127.0.0.1:99999"
	b, err := bridge.New(cfg, bridge.WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.False(t, b.SenderAvailable())

	ctx := fake.NewContext[bridge.Task]()
	b.Bank().Set(0, 1)
	assert.Equal(t, api.ProcessNormal, b.Process(api.NewBuffer(1, 64), ctx))
	for _, task := range ctx.Take() {
		b.TaskExecutor()(task)
	}
	assert.Equal(t, float64(1), control.CounterValue(b.Metrics().Dropped))
}

func TestBindFailureLoggedOnce(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	cfg := bridge.DefaultConfig()
	cfg.LocalAddr = "127.0.0.1:99999"
	b, err := bridge.New(cfg)
	require.NoError(t, err)
	defer b.Shutdown()

	errorsLogged := 0
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel {
			errorsLogged++
		}
	}
	assert.Equal(t, 1, errorsLogged)
}

func TestInfo(t *testing.T) {
	info := bridge.PluginInfo()
	assert.Equal(t, "xyz.wondering.space-radio", info.ClapID)
	assert.Equal(t, "OSC broadcaster", info.Description)
	assert.Equal(t, uint32(0), info.InputChannels)
	assert.Equal(t, uint32(1), info.OutputChannels)
}
