package gasfee_test

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/goware/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	fetches int32
	fail    atomic.Bool
}

func (s *stubSource) FetchEstimates(ctx context.Context) (*gasfee.Estimates, error) {
	if s.fail.Load() {
		return nil, fmt.Errorf("stub: unavailable")
	}
	n := atomic.AddInt32(&s.fetches, 1)
	return &gasfee.Estimates{
		Type:     gasfee.EstimateEthGasPrice,
		GasPrice: gasfee.GweiToWei(int64(n)),
	}, nil
}

func testOptions() gasfee.Options {
	options := gasfee.DefaultOptions
	options.Logger = logger.NewLogger(logger.LogLevel_DEBUG)
	options.PollingInterval = 20 * time.Millisecond
	return options
}

func TestPollerStartFetchesImmediately(t *testing.T) {
	source := &stubSource{}
	poller, err := gasfee.NewPoller(source, testOptions())
	require.NoError(t, err)

	token, err := poller.StartPolling(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	defer poller.StopPolling(token)

	latest := poller.LatestEstimates()
	assert.Equal(t, gasfee.EstimateEthGasPrice, latest.Type)
	assert.Equal(t, gasfee.GweiToWei(1), latest.GasPrice)
}

func TestPollerPushesUpdatesToSubscribers(t *testing.T) {
	source := &stubSource{}
	poller, err := gasfee.NewPoller(source, testOptions())
	require.NoError(t, err)

	sub := poller.Subscribe()
	defer sub.Unsubscribe()

	token, err := poller.StartPolling(context.Background())
	require.NoError(t, err)
	defer poller.StopPolling(token)

	select {
	case estimates := <-sub.Estimates():
		assert.Equal(t, gasfee.EstimateEthGasPrice, estimates.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no estimate update received")
	}
}

func TestPollerKeepsLastSnapshotOnFetchError(t *testing.T) {
	source := &stubSource{}
	poller, err := gasfee.NewPoller(source, testOptions())
	require.NoError(t, err)

	token, err := poller.StartPolling(context.Background())
	require.NoError(t, err)
	defer poller.StopPolling(token)

	before := poller.LatestEstimates()
	require.NotNil(t, before.GasPrice)

	source.fail.Store(true)
	time.Sleep(60 * time.Millisecond)

	after := poller.LatestEstimates()
	assert.Equal(t, before.GasPrice, after.GasPrice)
}

func TestPollerStopsAfterLastToken(t *testing.T) {
	source := &stubSource{}
	poller, err := gasfee.NewPoller(source, testOptions())
	require.NoError(t, err)

	tokenA, err := poller.StartPolling(context.Background())
	require.NoError(t, err)
	tokenB, err := poller.StartPolling(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, tokenA, tokenB)

	poller.StopPolling(tokenA)
	poller.StopPolling(tokenB)

	count := atomic.LoadInt32(&source.fetches)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, count, atomic.LoadInt32(&source.fetches))
}

func TestRoundGasPrice(t *testing.T) {
	tenthGwei := new(big.Int).Div(gasfee.GweiToWei(1), big.NewInt(10))

	// already aligned
	assert.Equal(t, gasfee.GweiToWei(2), gasfee.RoundGasPrice(gasfee.GweiToWei(2)))

	// rounds up to the next tenth of a gwei
	in := new(big.Int).Add(gasfee.GweiToWei(1), big.NewInt(1))
	expected := new(big.Int).Add(gasfee.GweiToWei(1), tenthGwei)
	assert.Equal(t, expected, gasfee.RoundGasPrice(in))

	// sub-tenth values pass through
	assert.Equal(t, big.NewInt(5), gasfee.RoundGasPrice(big.NewInt(5)))
	assert.Equal(t, big.NewInt(0).String(), gasfee.RoundGasPrice(nil).String())
}
