package main

import (
	"flag"
	"fmt"

	"github.com/ecc1/nrf24l01"
)

func main() {
	id := flag.Uint64("id", 0x30251023, "link identifier")
	flag.Parse()

	fmt.Printf("id %08X hop sequence:\n", *id)
	for i, channel := range nrf24l01.HopSequence(*id) {
		fmt.Printf("%3d", channel)
		if (i+1)%8 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}
