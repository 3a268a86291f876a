package nrf24l01

import "testing"

func TestChannelTableKnownSeed(t *testing.T) {
	want := [NumChannels]uint8{
		33, 111, 21, 28, 105, 38, 6, 26, 107, 102, 36, 27,
		113, 7, 37, 55, 83, 90, 93, 85, 78, 42, 92,
	}
	got := genChannelTable(0x30251023)
	if got != want {
		t.Errorf("genChannelTable(0x30251023) == %v, want %v", got, want)
	}
}

func TestChannelTableFirstEntry(t *testing.T) {
	// The very first PRN candidate is always accepted: the table is
	// empty and no quota can be exceeded.
	seed := uint32(0x30251023)
	prn := seed*0x0019660D + 0x3C6EF35F
	want := uint8(prn % 125)
	got := genChannelTable(seed)
	if got[0] != want {
		t.Errorf("first channel == %d, want %d", got[0], want)
	}
}

func TestChannelTableDeterminism(t *testing.T) {
	a := genChannelTable(0xDEADBEEF)
	b := genChannelTable(0xDEADBEEF)
	if a != b {
		t.Errorf("two runs disagree: %v vs %v", a, b)
	}
}

func TestChannelTableInvariants(t *testing.T) {
	for seed := uint32(0); seed < 500; seed += 7 {
		table := genChannelTable(seed)
		seen := make(map[uint8]bool)
		var bandCount [4]int
		for _, c := range table {
			if c > 124 {
				t.Fatalf("seed %#x: channel %d out of range", seed, c)
			}
			if seen[c] {
				t.Fatalf("seed %#x: duplicate channel %d", seed, c)
			}
			seen[c] = true
			bandCount[channelBand(c)]++
		}
		for band, count := range bandCount {
			if count > bandQuota[band] {
				t.Fatalf("seed %#x: band %d has %d channels, quota %d",
					seed, band, count, bandQuota[band])
			}
		}
	}
}

func TestHopSequence(t *testing.T) {
	seq := HopSequence(0xAABB30251023)
	table := genChannelTable(0x30251023)
	if len(seq) != NumChannels {
		t.Fatalf("len == %d, want %d", len(seq), NumChannels)
	}
	for i := range seq {
		if seq[i] != table[i] {
			t.Errorf("entry %d: %d != %d (high id bits must not matter)",
				i, seq[i], table[i])
		}
	}
}
