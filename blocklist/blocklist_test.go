package blocklist

import (
	"testing"

	"github.com/flashts-io/flashts/tstime"
)

func meta(since, until uint64) BlockMetaInfo {
	return BlockMetaInfo{Since: tstime.NewSec(since), Until: tstime.NewSec(until), TimestampNums: 10}
}

func sec(v uint64) *tstime.Sec {
	s := tstime.NewSec(v)
	return &s
}

func TestSearchSinceOnlyBoundary(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), []BlockMetaInfo{meta(10, 12), meta(21, 23), meta(30, 36)})

	got, ok := bl.Search(sec(22), nil)
	if !ok {
		t.Fatal("expected a match")
	}
	want := []BlockMetaInfo{meta(21, 23), meta(30, 36)}
	assertMetasEqual(t, got, want)

	_, ok = bl.Search(sec(40), nil)
	if ok {
		t.Fatal("expected no match for since=40")
	}

	_, ok = bl.Search(nil, sec(9))
	if ok {
		t.Fatal("expected no match for until=9")
	}
}

func TestSearchUntilOnly(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), []BlockMetaInfo{meta(10, 12), meta(21, 23), meta(30, 36)})
	got, ok := bl.Search(nil, sec(22))
	if !ok {
		t.Fatal("expected a match")
	}
	assertMetasEqual(t, got, []BlockMetaInfo{meta(10, 12), meta(21, 23)})
}

func TestSearchNoBounds(t *testing.T) {
	metas := []BlockMetaInfo{meta(10, 12), meta(21, 23)}
	bl := New("dummy", tstime.NewNano(0), metas)
	got, ok := bl.Search(nil, nil)
	if !ok {
		t.Fatal("expected a match")
	}
	assertMetasEqual(t, got, metas)
}

func TestAddBlockAppendsAtTail(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), nil)
	if err := bl.AddBlock(meta(10, 20)); err != nil {
		t.Fatal(err)
	}
	if err := bl.AddBlock(meta(21, 22)); err != nil {
		t.Fatal(err)
	}
	assertMetasEqual(t, bl.Metas, []BlockMetaInfo{meta(10, 20), meta(21, 22)})
}

func TestAddBlockInsertsOutOfOrderByUntil(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), []BlockMetaInfo{meta(10, 20), meta(21, 22)})
	if err := bl.AddBlock(meta(9, 10)); err != nil {
		t.Fatal(err)
	}
	assertMetasEqual(t, bl.Metas, []BlockMetaInfo{meta(9, 10), meta(10, 20), meta(21, 22)})

	if err := bl.AddBlock(meta(10, 10)); err != nil {
		t.Fatal(err)
	}
	assertMetasEqual(t, bl.Metas, []BlockMetaInfo{meta(9, 10), meta(10, 10), meta(10, 20), meta(21, 22)})
}

func TestWriteReadRoundTrip(t *testing.T) {
	metas := []BlockMetaInfo{meta(1629745452, 1629745453), meta(1629745454, 1629745455)}
	bl := New("dummy", tstime.NewNano(1629745452_715062000), metas)

	data, err := bl.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read("dummy", data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.UpdatedAt != bl.UpdatedAt {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, bl.UpdatedAt)
	}
	assertMetasEqual(t, got.Metas, metas)
}

func TestWriteRejectsEmpty(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), nil)
	if _, err := bl.Write(); err != ErrEmptyBlockMetaInfos {
		t.Fatalf("got %v, want ErrEmptyBlockMetaInfos", err)
	}
}

func TestReadRejectsCorruptedCRC(t *testing.T) {
	bl := New("dummy", tstime.NewNano(0), []BlockMetaInfo{meta(1, 2)})
	data, err := bl.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data[0] ^= 0xFF
	if _, err := Read("dummy", data); err == nil {
		t.Fatal("expected crc mismatch error")
	}
}

func assertMetasEqual(t *testing.T, got, want []BlockMetaInfo) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d metas, want %d: %+v vs %+v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("meta %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
