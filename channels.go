package nrf24l01

// NumChannels is the length of the hop sequence.
const NumChannels = 23

// The 2.4 GHz band is split into four sub-bands with a quota each, so
// the hop sequence cannot cluster in one corner of the band.
var (
	bandUpper = [4]int{31, 63, 95, 125}
	bandQuota = [4]int{6, 6, 6, 5}
)

// genChannelTable derives the hop sequence from the low 32 bits of the
// link id.  Both ends of a link run this independently and must get
// the identical table, so the constants here are part of the wire
// protocol.
func genChannelTable(seed uint32) [NumChannels]uint8 {
	var channels [NumChannels]uint8
	prn := seed
	count := 0
	for count < NumChannels {
		prn = prn*0x0019660D + 0x3C6EF35F
		candidate := uint8(prn % 125)
		if !usableChannel(candidate, channels[:count]) {
			continue
		}
		channels[count] = candidate
		count++
	}
	return channels
}

// HopSequence returns the hop sequence a link with the given id uses.
func HopSequence(id uint64) []uint8 {
	table := genChannelTable(uint32(id))
	return table[:]
}

func usableChannel(candidate uint8, chosen []uint8) bool {
	for _, c := range chosen {
		if c == candidate {
			return false
		}
	}
	var bandCount [4]int
	for _, c := range chosen {
		bandCount[channelBand(c)]++
	}
	b := channelBand(candidate)
	return bandCount[b] < bandQuota[b]
}

func channelBand(channel uint8) int {
	for band, upper := range bandUpper {
		if int(channel) <= upper {
			return band
		}
	}
	return 0
}
