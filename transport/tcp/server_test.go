package tcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/config"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/entity"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/match"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/protocol"
)

const waitTimeout = 2 * time.Second

type pairRecorder struct {
	pairs chan [entity.PlayerCount]io.ReadWriteCloser
}

func (that *pairRecorder) Play(_ context.Context, conns [entity.PlayerCount]io.ReadWriteCloser) (*entity.Match, error) {
	that.pairs <- conns

	return entity.NewMatch("recorded"), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, coordinator coordinator) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result := make(chan error, 1)
	go func() {
		result <- New(discardLogger(), coordinator).Serve(ctx, listener)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-result:
		case <-time.After(waitTimeout):
			t.Error("server did not stop")
		}
	})

	return listener.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, waitTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestServer_PairsInJoinOrder(t *testing.T) {
	// Given: a server with a coordinator that records pairs
	recorder := &pairRecorder{pairs: make(chan [entity.PlayerCount]io.ReadWriteCloser, 1)}
	addr := serve(t, recorder)

	// When: two players connect one after the other
	first := dial(t, addr)
	_, err := first.Write([]byte{'x'})
	require.NoError(t, err)

	// wait for the first connection to be accepted before dialing the second
	time.Sleep(50 * time.Millisecond)

	second := dial(t, addr)
	_, err = second.Write([]byte{'o'})
	require.NoError(t, err)

	// Then: the first connection plays X and the second plays O
	var pair [entity.PlayerCount]io.ReadWriteCloser
	select {
	case pair = <-recorder.pairs:
	case <-time.After(waitTimeout):
		require.Fail(t, "no match was started")
	}

	for player, want := range []byte{'x', 'o'} {
		buf := make([]byte, 1)
		_, err = io.ReadFull(pair[player], buf)
		require.NoError(t, err)
		assert.Equal(t, want, buf[0], "player %d", player)
	}
}

func TestServer_StopsOnCancel(t *testing.T) {
	// Given: a server with a single unpaired player
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() {
		result <- New(discardLogger(), &pairRecorder{}).Serve(ctx, listener)
	}()

	waiting := dial(t, listener.Addr().String())

	// When: the context is canceled
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Then: the server returns cleanly and hangs up on the waiting player
	select {
	case err = <-result:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		require.Fail(t, "server did not stop")
	}

	require.NoError(t, waiting.SetReadDeadline(time.Now().Add(waitTimeout)))
	_, err = waiting.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
}

func TestServer_PlaysMatchOverTCP(t *testing.T) {
	// Given: a server running real matches
	coordinator := match.NewCoordinator(discardLogger(), config.Match{}, nil)
	addr := serve(t, coordinator)

	x := protocol.NewClientChannel(dial(t, addr), 0)
	time.Sleep(50 * time.Millisecond)
	o := protocol.NewClientChannel(dial(t, addr), 0)

	// When: X takes the left column while O answers in the middle column
	outcomes := make(chan entity.Outcome, entity.PlayerCount)
	for _, side := range []struct {
		channel *protocol.ClientChannel
		moves   []int
	}{
		{channel: x, moves: []int{0, 3, 6}},
		{channel: o, moves: []int{1, 4}},
	} {
		go func() {
			moves := side.moves
			for {
				message, err := side.channel.Receive()
				if err != nil {
					outcomes <- ""
					return
				}

				switch message.Type {
				case protocol.TypeInput:
					if len(moves) == 0 {
						continue
					}
					if err = side.channel.Send(protocol.NewMoveMessage(moves[0])); err != nil {
						outcomes <- ""
						return
					}
					moves = moves[1:]
				case protocol.TypeEnd:
					outcomes <- message.Outcome
					return
				}
			}
		}()
	}

	// Then: one player wins and the other loses
	got := make(map[entity.Outcome]int)
	for range entity.PlayerCount {
		select {
		case outcome := <-outcomes:
			got[outcome]++
		case <-time.After(waitTimeout):
			require.Fail(t, "match did not end")
		}
	}

	assert.Equal(t, map[entity.Outcome]int{entity.OutcomeWin: 1, entity.OutcomeLose: 1}, got)
}

var errTooManyFiles = errors.New("accept: too many open files")

// brokenListener fails every Accept until it is closed.
type brokenListener struct {
	accepts atomic.Int32
	closed  chan struct{}
	once    sync.Once
}

func (that *brokenListener) Accept() (net.Conn, error) {
	that.accepts.Add(1)

	select {
	case <-that.closed:
		return nil, net.ErrClosed
	default:
		return nil, errTooManyFiles
	}
}

func (that *brokenListener) Close() error {
	that.once.Do(func() { close(that.closed) })
	return nil
}

func (that *brokenListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
}

func TestServer_BacksOffOnAcceptErrors(t *testing.T) {
	// Given: a listener that keeps failing
	listener := &brokenListener{closed: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() {
		result <- New(discardLogger(), &pairRecorder{}).Serve(ctx, listener)
	}()

	// When: the server runs for a while and is then stopped
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		require.Fail(t, "server did not stop")
	}

	// Then: retries were spaced out instead of spinning
	assert.Less(t, listener.accepts.Load(), int32(20))
}

func TestNextRetryDelay(t *testing.T) {
	delay := nextRetryDelay(0)
	assert.Equal(t, minRetryDelay, delay)

	for range 20 {
		delay = nextRetryDelay(delay)
	}
	assert.Equal(t, maxRetryDelay, delay)
}
