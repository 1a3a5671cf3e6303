package audit

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sealwatch/slasher/consensus-types/primitives"
	"github.com/sealwatch/slasher/slasher/types"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
	logTest "github.com/sirupsen/logrus/hooks/test"
)

type testFeed struct {
	feed event.Feed
}

func (f *testFeed) SubscribeSlashEvents(ch chan<- *types.SlashEvent) event.Subscription {
	return f.feed.Subscribe(ch)
}

func record(height primitives.BlockNumber) *types.SlashRecord {
	return &types.SlashRecord{
		Offender:       common.HexToAddress("0x05"),
		ValidatorIndex: 5,
		Epoch:          primitives.Epoch(uint64(height) / 100),
		Height:         height,
		Penalty:        10000,
		Reward:         100,
		CommunityFund:  9900,
	}
}

func waitForRecent(t *testing.T, s *Service, n int) []*types.SlashRecord {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if recent := s.Recent(); len(recent) >= n {
			return recent
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d audited records, got %d", n, len(s.Recent()))
	return nil
}

func TestNew_NilFeed(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.ErrorContains(t, "nil slash event feed", err)
}

func TestService_AuditsEvents(t *testing.T) {
	hook := logTest.NewGlobal()
	feed := &testFeed{}
	file := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := New(context.Background(), &Config{Feed: feed, FilePath: file, RecentSize: 2})
	require.NoError(t, err)
	s.Start()

	for _, h := range []primitives.BlockNumber{100, 200, 300} {
		feed.feed.Send(&types.SlashEvent{Record: record(h)})
	}
	waitForRecent(t, s, 2)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Status())

	recent := s.Recent()
	require.Equal(t, 2, len(recent))
	assert.Equal(t, primitives.BlockNumber(200), recent[0].Height)
	assert.Equal(t, primitives.BlockNumber(300), recent[1].Height)
	require.LogsContain(t, hook, "Audited slash")

	f, err := os.Open(file)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	scanner := bufio.NewScanner(f)
	var lines []*types.SlashRecord
	for scanner.Scan() {
		r := &types.SlashRecord{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), r))
		lines = append(lines, r)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, 3, len(lines))
	assert.DeepEqual(t, record(100), lines[0])
}

func TestService_StopWithoutStart(t *testing.T) {
	s, err := New(context.Background(), &Config{Feed: &testFeed{}})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	s.Start()
	assert.Equal(t, 0, len(s.Recent()))
}

func TestService_BadFilePath(t *testing.T) {
	s, err := New(context.Background(), &Config{
		Feed:     &testFeed{},
		FilePath: filepath.Join(t.TempDir(), "missing", "audit.jsonl"),
	})
	require.NoError(t, err)
	s.Start()
	assert.ErrorContains(t, "could not open audit file", s.Status())
	require.NoError(t, s.Stop())
}
